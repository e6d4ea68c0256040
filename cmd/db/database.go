package db

import (
	"errors"
	"path"
	"sort"
	"sync"
)

var ErrWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

// Database is the keyspace shared by every connection. The data structures it
// holds are not synchronized themselves, so every access goes through mu.
type Database struct {
	mu      sync.RWMutex
	linkage Linkage // linkage of newly created diaries
	stores  map[string]*MemoObj
}

func NewDatabase(linkage Linkage) *Database {
	return &Database{linkage: linkage, stores: make(map[string]*MemoObj)}
}

func (d *Database) FlushAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stores = make(map[string]*MemoObj)
}

// Keys returns the keys matching a glob pattern in lexical order.
func (d *Database) Keys(pattern string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	keys := make([]string, 0, len(d.stores))
	for k := range d.stores {
		matched, err := path.Match(pattern, k)
		if err != nil {
			return nil, err
		}
		if matched {
			keys = append(keys, k)
		}
	}

	sort.Strings(keys)
	return keys, nil
}

func (d *Database) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.stores)
}

// Type returns the type name of the object stored at key, or "none".
func (d *Database) Type(key string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	obj, found := d.stores[key]
	if !found {
		return "none"
	}
	return obj.TypeName()
}

// Del removes the given keys and returns how many existed.
func (d *Database) Del(keys ...string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	deleted := 0
	for _, k := range keys {
		if _, found := d.stores[k]; found {
			delete(d.stores, k)
			deleted++
		}
	}
	return deleted
}

// getOrCreate must be called with mu held for writing.
func (d *Database) getOrCreate(key string, kind MemoObjType, create func() *MemoObj) (*MemoObj, error) {
	obj, found := d.stores[key]
	if !found {
		obj = create()
		d.stores[key] = obj
		return obj, nil
	}

	if obj.Kind != kind {
		return nil, ErrWrongType
	}
	return obj, nil
}

// lookup must be called with mu held.
func (d *Database) lookup(key string, kind MemoObjType) (*MemoObj, bool, error) {
	obj, found := d.stores[key]
	if !found {
		return nil, false, nil
	}

	if obj.Kind != kind {
		return nil, true, ErrWrongType
	}
	return obj, true, nil
}

// Diaries

func (d *Database) DiaryPushFront(key string, entry Entry) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	obj, err := d.getOrCreate(key, ObjDiary, d.newDiaryObj)
	if err != nil {
		return 0, err
	}

	obj.Diary.InsertAtBeginning(entry)
	return obj.Diary.Len(), nil
}

func (d *Database) DiaryPushBack(key string, entry Entry) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	obj, err := d.getOrCreate(key, ObjDiary, d.newDiaryObj)
	if err != nil {
		return 0, err
	}

	obj.Diary.InsertAtEnd(entry)
	return obj.Diary.Len(), nil
}

// DiaryPopFront removes the most recent entry. A missing diary is treated as
// an empty one and yields ErrEmptyList.
func (d *Database) DiaryPopFront(key string) (Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	obj, found, err := d.lookup(key, ObjDiary)
	if err != nil {
		return Entry{}, err
	}
	if !found {
		return Entry{}, ErrEmptyList
	}

	return obj.Diary.RemoveFromBeginning()
}

func (d *Database) DiaryPopBack(key string) (Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	obj, found, err := d.lookup(key, ObjDiary)
	if err != nil {
		return Entry{}, err
	}
	if !found {
		return Entry{}, ErrEmptyList
	}

	return obj.Diary.RemoveFromEnd()
}

func (d *Database) DiaryEntries(key string) ([]Entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	obj, found, err := d.lookup(key, ObjDiary)
	if err != nil {
		return nil, err
	}
	if !found {
		return []Entry{}, nil
	}

	return obj.Diary.Traverse(), nil
}

func (d *Database) DiaryLen(key string) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	obj, found, err := d.lookup(key, ObjDiary)
	if err != nil || !found {
		return 0, err
	}

	return obj.Diary.Len(), nil
}

func (d *Database) DiaryIsEmpty(key string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	obj, found, err := d.lookup(key, ObjDiary)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}

	return obj.Diary.IsEmpty(), nil
}

// DiarySeed loads the sample entries, mixing front and back inserts, and
// returns the resulting length.
func (d *Database) DiarySeed(key string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	obj, err := d.getOrCreate(key, ObjDiary, d.newDiaryObj)
	if err != nil {
		return 0, err
	}

	samples := SampleEntries()
	obj.Diary.InsertAtEnd(samples[0])
	obj.Diary.InsertAtBeginning(samples[1])
	obj.Diary.InsertAtEnd(samples[2])
	return obj.Diary.Len(), nil
}

// DiaryReset drops every entry but keeps the diary itself.
func (d *Database) DiaryReset(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	obj, found, err := d.lookup(key, ObjDiary)
	if err != nil || !found {
		return err
	}

	obj.Diary.Clear()
	return nil
}

// DiaryTags returns the distinct tags used across a diary, sorted.
func (d *Database) DiaryTags(key string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	obj, found, err := d.lookup(key, ObjDiary)
	if err != nil {
		return nil, err
	}
	if !found {
		return []string{}, nil
	}

	tags := NewSet()
	for _, entry := range obj.Diary.Traverse() {
		for _, tag := range entry.Tags {
			tags.Add(tag)
		}
	}
	return tags.Members(), nil
}

// Lists

func (d *Database) LPush(key string, values ...string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	obj, err := d.getOrCreate(key, ObjList, d.newListObj)
	if err != nil {
		return 0, err
	}

	for _, v := range values {
		obj.List.InsertAtBeginning(v)
	}
	return obj.List.Len(), nil
}

func (d *Database) RPush(key string, values ...string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	obj, err := d.getOrCreate(key, ObjList, d.newListObj)
	if err != nil {
		return 0, err
	}

	for _, v := range values {
		obj.List.InsertAtEnd(v)
	}
	return obj.List.Len(), nil
}

func (d *Database) LPop(key string) (string, bool, error) {
	return d.listPop(key, (*List[string]).RemoveFromBeginning)
}

func (d *Database) RPop(key string) (string, bool, error) {
	return d.listPop(key, (*List[string]).RemoveFromEnd)
}

// listPop deletes the key once its list is drained.
func (d *Database) listPop(key string, remove func(*List[string]) (string, error)) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	obj, found, err := d.lookup(key, ObjList)
	if err != nil || !found {
		return "", false, err
	}

	value, err := remove(obj.List)
	if err != nil {
		return "", false, nil
	}
	if obj.List.IsEmpty() {
		delete(d.stores, key)
	}
	return value, true, nil
}

func (d *Database) LLen(key string) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	obj, found, err := d.lookup(key, ObjList)
	if err != nil || !found {
		return 0, err
	}

	return obj.List.Len(), nil
}

// LRange returns the values between start and stop inclusive. Negative indexes
// count from the end of the list.
func (d *Database) LRange(key string, start int, stop int) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	obj, found, err := d.lookup(key, ObjList)
	if err != nil {
		return nil, err
	}
	if !found {
		return []string{}, nil
	}

	values := obj.List.Traverse()
	n := len(values)
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return []string{}, nil
	}

	return values[start : stop+1], nil
}

// Queues

func (d *Database) QAdd(key string, values ...string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	obj, err := d.getOrCreate(key, ObjQueue, d.newQueueObj)
	if err != nil {
		return 0, err
	}

	for _, v := range values {
		obj.Queue.Enqueue(v)
	}
	return obj.Queue.Len(), nil
}

func (d *Database) QPop(key string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	obj, found, err := d.lookup(key, ObjQueue)
	if err != nil || !found {
		return "", false, err
	}

	value, ok := obj.Queue.Dequeue()
	if obj.Queue.Len() == 0 {
		delete(d.stores, key)
	}
	return value, ok, nil
}

// QPeek returns the oldest value of a queue without removing it.
func (d *Database) QPeek(key string) (string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	obj, found, err := d.lookup(key, ObjQueue)
	if err != nil || !found {
		return "", false, err
	}

	value, ok := obj.Queue.Peek()
	return value, ok, nil
}

func (d *Database) QLen(key string) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	obj, found, err := d.lookup(key, ObjQueue)
	if err != nil || !found {
		return 0, err
	}

	return obj.Queue.Len(), nil
}

// Sets

func (d *Database) SAdd(key string, members ...string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	obj, err := d.getOrCreate(key, ObjSet, d.newSetObj)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, m := range members {
		if obj.Set.Add(m) {
			added++
		}
	}
	return added, nil
}

func (d *Database) SRem(key string, members ...string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	obj, found, err := d.lookup(key, ObjSet)
	if err != nil || !found {
		return 0, err
	}

	removed := 0
	for _, m := range members {
		if obj.Set.Delete(m) {
			removed++
		}
	}
	if obj.Set.Size == 0 {
		delete(d.stores, key)
	}
	return removed, nil
}

func (d *Database) SMembers(key string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	obj, found, err := d.lookup(key, ObjSet)
	if err != nil {
		return nil, err
	}
	if !found {
		return []string{}, nil
	}

	return obj.Set.Members(), nil
}

func (d *Database) SIsMember(key string, member string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	obj, found, err := d.lookup(key, ObjSet)
	if err != nil || !found {
		return false, err
	}

	return obj.Set.Has(member), nil
}

func (d *Database) SCard(key string) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	obj, found, err := d.lookup(key, ObjSet)
	if err != nil || !found {
		return 0, err
	}

	return obj.Set.Size, nil
}
