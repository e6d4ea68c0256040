package db

// Queue is a FIFO view over a doubly linked List.
type Queue struct {
	list *List[string]
}

func NewQueue() *Queue {
	return &Queue{list: NewList[string](Doubly)}
}

func (q *Queue) Len() int {
	return q.list.Len()
}

func (q *Queue) Enqueue(item string) {
	q.list.InsertAtEnd(item)
}

// Dequeue returns false when the queue is empty.
func (q *Queue) Dequeue() (string, bool) {
	item, err := q.list.RemoveFromBeginning()
	return item, err == nil
}

func (q *Queue) Peek() (string, bool) {
	if q.list.IsEmpty() {
		return "", false
	}
	return q.list.head.value, true
}
