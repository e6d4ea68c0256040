package db

import "sort"

type Set struct {
	Size  int
	items map[string]struct{}
}

func NewSet() *Set {
	return &Set{items: map[string]struct{}{}}
}

// Members returns the items of the set in lexical order.
func (s *Set) Members() []string {
	members := make([]string, 0, len(s.items))
	for k := range s.items {
		members = append(members, k)
	}

	sort.Strings(members)
	return members
}

// Add reports whether item was not already in the set.
func (s *Set) Add(item string) bool {
	if _, found := s.items[item]; found {
		return false
	}

	s.items[item] = struct{}{}
	s.Size++
	return true
}

func (s *Set) Has(item string) bool {
	_, found := s.items[item]
	return found
}

func (s *Set) Delete(item string) bool {
	if _, found := s.items[item]; !found {
		return false
	}

	s.Size--
	delete(s.items, item)
	return true
}
