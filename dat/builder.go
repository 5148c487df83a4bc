package dat

import "sort"

// Builder constructs a frozen DAT from a set of byte-string keys, each
// carrying an opaque uint32 payload. It is purely a trie-construction
// utility: it has no notion of WordPiece failure links or failure pops,
// which live one layer up and are supplied by an external model builder.
type Builder struct {
	root       *buildNode
	nextNodeID int
}

type buildNode struct {
	state    uint32
	children map[byte]*buildNode
	data     uint32
	hasData  bool
}

// NewBuilder creates an empty trie builder.
func NewBuilder() *Builder {
	return &Builder{
		root:       &buildNode{children: make(map[byte]*buildNode)},
		nextNodeID: 1,
	}
}

// Insert adds key -> data to the trie being built. Inserting the same key
// twice overwrites its payload.
func (b *Builder) Insert(key []byte, data uint32) {
	n := b.root
	for _, c := range key {
		child := n.children[c]
		if child == nil {
			child = &buildNode{children: make(map[byte]*buildNode)}
			n.children[c] = child
		}
		n = child
	}
	n.data = data
	n.hasData = true
}

// Build freezes the trie into a double-array representation. Node ids are
// assigned breadth-first starting at the root (id 0); callers that need to
// know a particular key's final node id should track it themselves by
// replaying Transition after Build returns.
func (b *Builder) Build() *DAT {
	d := &DAT{RootID: 0}
	d.Base = make([]int32, 1)
	d.Check = make([]int32, 1)
	b.root.state = 0
	queue := []*buildNode{b.root}
	for i := 0; i < len(queue); i++ {
		n := queue[i]
		if len(n.children) == 0 {
			continue
		}
		labels := sortedLabels(n.children)
		base := findBase(d.Check, labels)
		ensureSize(d, base+int(labels[len(labels)-1])+1)
		d.Base[n.state] = int32(base)
		for _, label := range labels {
			t := base + int(label) + 1
			ensureSize(d, t+1)
			child := n.children[label]
			child.state = uint32(t)
			d.Check[t] = int32(n.state) + 1
			queue = append(queue, child)
		}
	}
	d.Data = make([]uint32, len(d.Base))
	d.HasData = make([]bool, len(d.Base))
	fillData(d, b.root)
	return d
}

// NodeID replays key from the root and returns the node id it resolves to
// after Build. It is meant for test fixtures that need to hand-edit
// failure-link metadata after constructing the base trie.
func (d *DAT) NodeID(key []byte) (uint32, bool) {
	state := d.RootID
	for _, b := range key {
		next, ok := d.Transition(state, b)
		if !ok {
			return 0, false
		}
		state = next
	}
	return state, true
}

func fillData(d *DAT, n *buildNode) {
	if n.hasData {
		d.Data[n.state] = n.data
		d.HasData[n.state] = true
	}
	for _, c := range n.children {
		fillData(d, c)
	}
}

func sortedLabels(children map[byte]*buildNode) []byte {
	labels := make([]byte, 0, len(children))
	for label := range children {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

func findBase(check []int32, labels []byte) int {
	for base := 0; ; base++ {
		ok := true
		for _, label := range labels {
			t := base + int(label) + 1
			if t < len(check) && check[t] != 0 {
				ok = false
				break
			}
		}
		if ok {
			return base
		}
	}
}

func ensureSize(d *DAT, size int) {
	if size <= len(d.Base) {
		return
	}
	grow := size - len(d.Base)
	d.Base = append(d.Base, make([]int32, grow)...)
	d.Check = append(d.Check, make([]int32, grow)...)
}
