/*
Package wordpiece implements the linear-time WordPiece subword tokenizer
core: a matching engine driven by a precomputed double-array trie (DAT)
augmented with failure links and failure pops, in the style of the fast
WordPiece algorithm.

Given a precomputed, immutable model and a UTF-8 input, the core produces a
sequence of subword token ids (optionally with surface strings and byte
offsets) in a single left-to-right pass with no backtracking, or performs
the inverse mapping from ids back to text.

The package does not train vocabularies or compute failure links/pops --
both are the job of an external, offline model builder. It consumes a
finished model blob and exposes pure tokenize/detokenize functions.
*/
package wordpiece

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'wordpiece'.
func tracer() tracing.Trace {
	return tracing.Select("wordpiece")
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
