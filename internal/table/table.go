// Package table implements an open-addressing hash table keyed by interned
// strings. Deleted entries leave tombstones behind so that probe sequences
// running through them stay intact.
package table

import (
	"lox/internal/object"
)

const maxLoad = 0.75

type entry struct {
	key   *object.String
	value object.Object
}

// A nil key with a nil value is empty; a nil key with a non-nil value is a
// tombstone.
func (e *entry) isTombstone() bool {
	return e.key == nil && e.value != nil
}

type Table struct {
	// count includes tombstones.
	count   int
	entries []entry
}

func New() *Table {
	return &Table{}
}

// Len returns the number of occupied slots, tombstones included.
func (t *Table) Len() int { return t.count }

func (t *Table) Cap() int { return len(t.entries) }

// Live returns the number of entries holding a key.
func (t *Table) Live() int {
	n := 0
	for i := range t.entries {
		if t.entries[i].key != nil {
			n++
		}
	}
	return n
}

func (t *Table) Get(key *object.String) (object.Object, bool) {
	if len(t.entries) == 0 {
		return nil, false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key and reports whether key was not present before.
func (t *Table) Set(key *object.String, value object.Object) bool {
	if value == nil {
		value = object.Null
	}
	if float64(t.count+1) > float64(len(t.entries))*maxLoad {
		t.adjustCapacity(growCapacity(len(t.entries)))
	}

	e := findEntry(t.entries, key)
	isNew := e.key == nil
	// Reusing a tombstone does not change count; it was counted when the
	// slot was first filled.
	if isNew && e.value == nil {
		t.count++
	}

	e.key = key
	e.value = value
	return isNew
}

func (t *Table) Delete(key *object.String) bool {
	if t.count == 0 {
		return false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = object.True
	return true
}

// AddAll copies every live entry of from into t.
func (t *Table) AddAll(from *Table) {
	for i := range from.entries {
		e := &from.entries[i]
		if e.key != nil {
			t.Set(e.key, e.value)
		}
	}
}

// FindString looks a key up by content rather than identity. It is the only
// lookup that compares bytes; everything else relies on interning.
func (t *Table) FindString(chars string, hash uint32) *object.String {
	if len(t.entries) == 0 {
		return nil
	}

	capacity := uint32(len(t.entries))
	index := hash % capacity
	for {
		e := &t.entries[index]
		if e.key == nil {
			if !e.isTombstone() {
				return nil
			}
		} else if len(e.key.Chars) == len(chars) && e.key.Hash == hash && e.key.Chars == chars {
			return e.key
		}
		index = (index + 1) % capacity
	}
}

// Free drops every entry.
func (t *Table) Free() {
	t.entries = nil
	t.count = 0
}

func growCapacity(capacity int) int {
	if capacity < 8 {
		return 8
	}
	return capacity * 2
}

func findEntry(entries []entry, key *object.String) *entry {
	capacity := uint32(len(entries))
	index := key.Hash % capacity
	var tombstone *entry
	for {
		e := &entries[index]
		if e.key == nil {
			if !e.isTombstone() {
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			if tombstone == nil {
				tombstone = e
			}
		} else if e.key == key {
			return e
		}
		index = (index + 1) % capacity
	}
}

// adjustCapacity rehashes live entries into a fresh slice; tombstones are
// not carried over.
func (t *Table) adjustCapacity(capacity int) {
	entries := make([]entry, capacity)

	t.count = 0
	for i := range t.entries {
		e := &t.entries[i]
		if e.key == nil {
			continue
		}
		dest := findEntry(entries, e.key)
		dest.key = e.key
		dest.value = e.value
		t.count++
	}

	t.entries = entries
}
