package db

import "errors"

var ErrEmptyList = errors.New("list is empty")

// Linkage selects how nodes are chained. It only changes the cost of
// operations on the back of the list.
type Linkage = byte

const (
	Doubly Linkage = iota
	Singly
)

type lNode[T any] struct {
	value T
	next  *lNode[T]
	prev  *lNode[T] // nil in singly linked lists
}

// List is an ordered sequence of values with O(1) access to the front. A doubly
// linked List keeps a tail reference and back links, making back operations
// O(1); a singly linked one walks the chain for them. List is not safe for
// concurrent use.
type List[T any] struct {
	linkage Linkage
	length  int
	head    *lNode[T]
	tail    *lNode[T] // only maintained for Doubly
}

func NewList[T any](linkage Linkage) *List[T] {
	return &List[T]{linkage: linkage}
}

func (l *List[T]) Len() int {
	return l.length
}

func (l *List[T]) Linkage() Linkage {
	return l.linkage
}

func (l *List[T]) IsEmpty() bool {
	return l.head == nil
}

func (l *List[T]) InsertAtBeginning(item T) {
	node := &lNode[T]{value: item, next: l.head}
	l.length++
	if l.linkage == Doubly {
		if l.head == nil {
			l.tail = node
		} else {
			l.head.prev = node
		}
	}
	l.head = node
}

func (l *List[T]) InsertAtEnd(item T) {
	if l.head == nil {
		l.InsertAtBeginning(item)
		return
	}

	node := &lNode[T]{value: item}
	l.length++
	if l.linkage == Doubly {
		node.prev = l.tail
		l.tail.next = node
		l.tail = node
		return
	}

	last := l.head
	for last.next != nil {
		last = last.next
	}
	last.next = node
}

func (l *List[T]) RemoveFromBeginning() (T, error) {
	var zero T
	if l.head == nil {
		return zero, ErrEmptyList
	}

	head := l.head
	l.head = head.next
	if l.head == nil {
		l.tail = nil
	} else {
		l.head.prev = nil
	}
	head.next = nil
	l.length--
	return head.value, nil
}

func (l *List[T]) RemoveFromEnd() (T, error) {
	var zero T
	if l.head == nil {
		return zero, ErrEmptyList
	}

	// Sole node
	if l.head.next == nil {
		return l.RemoveFromBeginning()
	}

	var last *lNode[T]
	if l.linkage == Doubly {
		last = l.tail
		l.tail = last.prev
		l.tail.next = nil
		last.prev = nil
	} else {
		prev := l.head
		for prev.next.next != nil {
			prev = prev.next
		}
		last = prev.next
		prev.next = nil
	}
	l.length--
	return last.value, nil
}

// Traverse returns the values from head to tail in a new slice.
func (l *List[T]) Traverse() []T {
	out := make([]T, 0, l.length)
	for node := l.head; node != nil; node = node.next {
		out = append(out, node.value)
	}
	return out
}

func (l *List[T]) Clear() {
	for l.head != nil {
		node := l.head
		l.head = node.next
		node.next, node.prev = nil, nil
	}
	l.tail = nil
	l.length = 0
}
