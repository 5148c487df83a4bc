package wordpiece

import (
	"testing"

	"github.com/fastwp/wordpiece/dat"
)

// buildExampleModel hand-constructs the Model for the worked example used
// throughout the original algorithm's own documentation: vocabulary
// {a, abcd, ##b, ##bc, ##z}, suffix indicator "##", unk_token "[UNK]". The
// trie and its failure links/pops are exactly the ones given there:
//
//	v     |    0     1     2     3     4     5       6      7       8      9
//	str(v)|   ""     #    ##     a    ab   abc    abcd    ##b    ##bc    ##z
//	F(v)  |   []    []    []   [a]   [a]   [a]  [abcd]  [##b]  [##bc]  [##z]
//	f(v)  | null  null  null     2     7     8       2      2      2    null
//
// Node 0 is root, node 2 is trie_suffix_root. Vocab entries are stored bare
// (without the suffix indicator prefix): a detokenizing reader reattaches
// "##" itself, exactly as DetokenizeToTokens does.
//
// Note on f(9): the table above lists it as null, but node 9 ("##z") is a
// data-bearing node, so the runtime never consults its "conceptual" failure
// function -- it reads the stored failure_link used by the data shortcut
// (§9), which the worked trace in the same reference ("final | f(9) -> 2")
// shows to be trie_suffix_root. This fixture uses the trace's value.
func buildExampleModel(t testing.TB) *Model {
	t.Helper()

	vocab := []string{"a", "abcd", "b", "bc", "z", "[UNK]"}
	isSuffix := []bool{false, false, true, true, true, false}
	unkTokenID := uint32(5)

	idA, idAbcd, idSuffixB, idSuffixBc, idSuffixZ := uint32(0), uint32(1), uint32(2), uint32(3), uint32(4)

	b := dat.NewBuilder()
	b.Insert([]byte("#"), 0)
	b.Insert([]byte("##"), 0)
	b.Insert([]byte("a"), packToken(idA, 1, false))
	b.Insert([]byte("ab"), 0)
	b.Insert([]byte("abc"), 0)
	b.Insert([]byte("abcd"), packToken(idAbcd, 4, false))
	b.Insert([]byte("##b"), packToken(idSuffixB, 1, true))
	b.Insert([]byte("##bc"), packToken(idSuffixBc, 2, true))
	b.Insert([]byte("##z"), packToken(idSuffixZ, 1, true))
	d := b.Build()

	// The builder marks every inserted key as data-bearing, including "#",
	// "##", "ab", and "abc" above (inserted with a placeholder payload of 0
	// purely to force their nodes to exist). None of those four is really a
	// vocab entry, so clear their data bit.
	for _, key := range []string{"#", "##", "ab", "abc"} {
		node, _ := d.NodeID([]byte(key))
		d.HasData[node] = false
		d.Data[node] = 0
	}

	n := func(key string) uint32 {
		id, ok := d.NodeID([]byte(key))
		if !ok {
			t.Fatalf("test fixture: key %q did not resolve to a node", key)
		}
		return id
	}

	nStates := d.NStates()
	failureLink := make([]uint32, nStates)
	failurePopsOL := make([]uint32, nStates)
	for i := range failureLink {
		failureLink[i] = dat.NullNode
	}

	trieSuffixRoot := n("##")

	// F(v) for "ab" and "abc" is [a]: both rely on the failure-pops pool
	// since neither node carries its own vocab data.
	failurePopsPool := []uint32{packToken(idA, 1, false)}
	failurePopsOL[n("ab")] = packOffsetLength(0, 1)
	failurePopsOL[n("abc")] = packOffsetLength(0, 1)

	// f(v), exactly per the table (see the note above on f(9)).
	failureLink[n("a")] = trieSuffixRoot
	failureLink[n("ab")] = n("##b")
	failureLink[n("abc")] = n("##bc")
	failureLink[n("abcd")] = trieSuffixRoot
	failureLink[n("##b")] = trieSuffixRoot
	failureLink[n("##bc")] = trieSuffixRoot
	failureLink[n("##z")] = trieSuffixRoot

	return &Model{
		Vocab:                   vocab,
		IsSuffix:                isSuffix,
		SuffixIndicator:         "##",
		UnkToken:                "[UNK]",
		UnkTokenID:              unkTokenID,
		MaxBytesPerToken:        100,
		EndToEnd:                false,
		SupportDetokenization:   true,
		Trie:                    d,
		FailureLink:             failureLink,
		FailurePopsOffsetLength: failurePopsOL,
		FailurePopsPool:         failurePopsPool,
		// The literal string "##" is not itself in the vocabulary, so
		// tokenizing it alone fails and must map to unk_token (§4.7's
		// special case 1).
		PrecomputedSuffixIndicatorResult: []uint32{packToken(unkTokenID, 0, false)},
		TrieSuffixRoot:                   trieSuffixRoot,
		TriePunctFailureLinkNode:         dat.NullNode,
	}
}
