// Package heap owns every heap-allocated object of a VM. Objects are kept in
// allocation order and released together by Free; nothing is collected while
// a program runs.
package heap

import (
	"strings"
	"unsafe"

	"lox/internal/limits"
	"lox/internal/object"
	"lox/internal/table"
)

type Heap struct {
	objects []object.HeapObject
	strings *table.Table
	budget  *limits.Budget
}

type Stats struct {
	Objects  int
	Interned int
	Bytes    int64
}

// New creates an empty heap. A nil budget means allocations are unlimited
// and uncounted.
func New(budget *limits.Budget) *Heap {
	return &Heap{
		strings: table.New(),
		budget:  budget,
	}
}

// CopyString returns the canonical string for s. The caller keeps s; a new
// object holds its own copy, so s may be a slice of a larger buffer.
func (h *Heap) CopyString(s string) (*object.String, error) {
	hash := object.HashString(s)
	if interned := h.strings.FindString(s, hash); interned != nil {
		return interned, nil
	}
	return h.allocateString(strings.Clone(s), hash)
}

// TakeString returns the canonical string for buf, taking ownership of it.
// buf must not be used by the caller afterwards. When an equal string is
// already interned buf is dropped.
func (h *Heap) TakeString(buf []byte) (*object.String, error) {
	chars := unsafe.String(unsafe.SliceData(buf), len(buf))
	hash := object.HashString(chars)
	if interned := h.strings.FindString(chars, hash); interned != nil {
		return interned, nil
	}
	return h.allocateString(chars, hash)
}

func (h *Heap) allocateString(chars string, hash uint32) (*object.String, error) {
	s := &object.String{Chars: chars, Hash: hash}
	if err := h.budget.Charge(s.Cost()); err != nil {
		return nil, err
	}
	h.objects = append(h.objects, s)
	h.strings.Set(s, object.Null)
	return s, nil
}

// Objects returns the live objects in allocation order.
func (h *Heap) Objects() []object.HeapObject {
	out := make([]object.HeapObject, len(h.objects))
	copy(out, h.objects)
	return out
}

func (h *Heap) Len() int { return len(h.objects) }

// Strings exposes the intern table.
func (h *Heap) Strings() *table.Table { return h.strings }

func (h *Heap) Stats() Stats {
	var bytes int64
	for _, o := range h.objects {
		bytes += o.Cost()
	}
	return Stats{
		Objects:  len(h.objects),
		Interned: h.strings.Live(),
		Bytes:    bytes,
	}
}

// Free releases the intern table and every object, returning how many
// objects were dropped. The heap is empty and reusable afterwards.
func (h *Heap) Free() int {
	n := len(h.objects)
	for i := range h.objects {
		h.objects[i] = nil
	}
	h.objects = nil
	h.strings.Free()
	h.budget.Reset()
	return n
}
