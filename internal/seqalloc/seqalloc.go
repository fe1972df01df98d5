// Package seqalloc allocates SMPP sequence_number values, producing a
// strictly increasing, reconnect-surviving cursor.
package seqalloc

import (
	"fmt"
)

const maxSeq = 0x7FFFFFFF

// Allocator hands out sequence numbers starting at offset and advancing
// by increment, wrapping back to offset once it would exceed the SMPP
// maximum of 2^31-1.
type Allocator struct {
	cursor    *uint32
	offset    uint32
	increment uint32
}

// New validates the construction rules from spec.md §4.2 (increment >= 1,
// offset >= 1, increment >= offset) and returns an Allocator starting its
// own cursor at offset.
func New(offset, increment uint32) (*Allocator, error) {
	if increment < 1 {
		return nil, fmt.Errorf("smpp/seqalloc: increment must be >= 1, got %d", increment)
	}
	if offset < 1 {
		return nil, fmt.Errorf("smpp/seqalloc: offset must be >= 1, got %d", offset)
	}
	if increment < offset {
		return nil, fmt.Errorf("smpp/seqalloc: increment (%d) must be >= offset (%d)", increment, offset)
	}
	cursor := offset
	return &Allocator{cursor: &cursor, offset: offset, increment: increment}, nil
}

// NewFromCursor builds an Allocator sharing an existing cursor cell, used
// by the reconnect supervisor to hand the same cursor to a freshly built
// engine after a reconnect.
func NewFromCursor(cursor *uint32, offset, increment uint32) (*Allocator, error) {
	if increment < 1 {
		return nil, fmt.Errorf("smpp/seqalloc: increment must be >= 1, got %d", increment)
	}
	if offset < 1 {
		return nil, fmt.Errorf("smpp/seqalloc: offset must be >= 1, got %d", offset)
	}
	if increment < offset {
		return nil, fmt.Errorf("smpp/seqalloc: increment (%d) must be >= offset (%d)", increment, offset)
	}
	return &Allocator{cursor: cursor, offset: offset, increment: increment}, nil
}

// Cursor exposes the shared cursor cell so a supervisor can lend it to
// the next engine instance across a reconnect.
func (a *Allocator) Cursor() *uint32 {
	return a.cursor
}

// Next returns the current cursor value, then advances it by increment,
// wrapping to offset once the next value would exceed 2^31-1.
func (a *Allocator) Next() uint32 {
	n := *a.cursor
	next := n + a.increment
	if next > maxSeq || next < n {
		next = a.offset
	}
	*a.cursor = next
	return n
}
