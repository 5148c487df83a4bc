// Package dat implements a frozen double-array trie (DAT) over a byte
// alphabet, used as the matching engine's trie cursor.
//
// - Nodes/states are indices into Base/Check (0 is a valid state, typically
//   the root).
// - Transition: t := Base[s] + int32(b) + 1; valid if Check[t] == s+1. The
//   +1 bias keeps 0 free to mean "slot unused" in Check, so a lookup never
//   needs a separate "visited" bitmap.
// - The alphabet is the 256 possible byte values; no external code-unit
//   mapping step is needed, since WordPiece matches raw UTF-8 bytes rather
//   than code units.
//
// Payloads: a node may carry a raw uint32 payload (the encoded token value
// for a vocabulary entry terminating at that node). Payload interpretation
// belongs to the caller; this package only stores and returns it.
package dat

import "math"

// NullNode marks "no such node" for failure-link references.
const NullNode uint32 = math.MaxUint32

// DAT is an immutable double-array trie keyed on bytes.
type DAT struct {
	// RootID is the root state index (0 unless a builder chooses otherwise).
	RootID uint32

	// Base and Check are the classic double-array transition table.
	Base  []int32 // len == NStates
	Check []int32 // len == NStates

	// Data holds the raw per-node payload. HasData reports whether Data[i]
	// is meaningful; a node with HasData[i]==false is non-terminal.
	Data    []uint32
	HasData []bool
}

// NStates returns the number of allocated state slots.
func (d *DAT) NStates() int { return len(d.Base) }

// Transition returns (nextState, ok) for taking byte b from state.
func (d *DAT) Transition(state uint32, b byte) (uint32, bool) {
	if int(state) >= len(d.Base) {
		return 0, false
	}
	t := d.Base[state] + int32(b) + 1
	if t <= 0 || int(t) >= len(d.Check) {
		return 0, false
	}
	if d.Check[t] != int32(state)+1 {
		return 0, false
	}
	return uint32(t), true
}

// GetData returns the payload stored at state, if any.
func (d *DAT) GetData(state uint32) (uint32, bool) {
	if int(state) >= len(d.Data) || !d.HasData[state] {
		return 0, false
	}
	return d.Data[state], true
}

// Cursor is a stateless, non-allocating handle into a DAT. Its only state is
// the current node id; it never holds a pointer into trie storage, so it is
// safe to copy and to reset via Set. The cursor's observable behavior is
// identical whether node ids are thought of as indices or opaque values.
type Cursor struct {
	node uint32
}

// Root returns a cursor positioned at the trie root.
func (d *DAT) Root() Cursor {
	return Cursor{node: d.RootID}
}

// NodeID returns the cursor's current node id.
func (c Cursor) NodeID() uint32 { return c.node }

// Set repositions the cursor at an arbitrary node (used for failure
// transitions, which jump to a node reached by a different path).
func (c *Cursor) Set(node uint32) { c.node = node }

// TryStepOneByte advances the cursor by one byte in place. On failure the
// cursor is left unchanged.
func (d *DAT) TryStepOneByte(c *Cursor, b byte) bool {
	next, ok := d.Transition(c.node, b)
	if !ok {
		return false
	}
	c.node = next
	return true
}

// TryStepBytes advances the cursor atomically over every byte in bs: either
// all bytes are consumed and the cursor moves, or none are and the cursor is
// left unchanged. This is used to consume one whole UTF-8-encoded codepoint
// at a time without leaving the cursor mid-codepoint on partial failure.
func (d *DAT) TryStepBytes(c *Cursor, bs []byte) bool {
	state := c.node
	for _, b := range bs {
		next, ok := d.Transition(state, b)
		if !ok {
			return false
		}
		state = next
	}
	c.node = state
	return true
}

// TryGetData returns the payload terminating at the cursor's node, if any.
func (d *DAT) TryGetData(c Cursor) (uint32, bool) {
	return d.GetData(c.node)
}
