// Package dictionary holds the previous-value state used by the copy, default, increment, delta
// and tail field operators.
//
// The Indexer runs once while a template registry is finalized and maps every stateful field to
// a slot in its scope (global, template, type or a user-named dictionary). A Dictionary is the
// per-session store of those slots. Dictionaries are mutable and must not be shared by
// concurrently running decode or encode streams.
package dictionary

import "github.com/arloliu/fastcodec/field"

// State is the FAST state of a dictionary entry.
type State uint8

const (
	// Undefined means the entry was never written since the last reset.
	Undefined State = iota
	// Empty means the entry holds an explicit absence (an optional field was null).
	Empty
	// Assigned means the entry holds a value.
	Assigned
)

func (s State) String() string {
	switch s {
	case Undefined:
		return "undefined"
	case Empty:
		return "empty"
	case Assigned:
		return "assigned"
	default:
		return "unknown"
	}
}

type entry struct {
	state State
	value field.Value
}

// Dictionary stores previous values by slot.
type Dictionary struct {
	entries []entry
}

// New creates a dictionary with size undefined entries.
func New(size int) *Dictionary {
	return &Dictionary{entries: make([]entry, size)}
}

// Size returns the number of slots.
func (d *Dictionary) Size() int {
	return len(d.entries)
}

// Get returns the value and state of slot. Slots beyond the allocated size are undefined.
func (d *Dictionary) Get(slot int) (field.Value, State) {
	if slot < 0 || slot >= len(d.entries) {
		return nil, Undefined
	}
	e := d.entries[slot]

	return e.value, e.state
}

// Set assigns v to slot.
func (d *Dictionary) Set(slot int, v field.Value) {
	d.ensure(slot)
	d.entries[slot] = entry{state: Assigned, value: v}
}

// SetEmpty marks slot as explicitly empty.
func (d *Dictionary) SetEmpty(slot int) {
	d.ensure(slot)
	d.entries[slot] = entry{state: Empty}
}

// Reset returns every slot to the undefined state.
func (d *Dictionary) Reset() {
	clear(d.entries)
}

func (d *Dictionary) ensure(slot int) {
	if slot < len(d.entries) {
		return
	}
	grown := make([]entry, slot+1)
	copy(grown, d.entries)
	d.entries = grown
}
