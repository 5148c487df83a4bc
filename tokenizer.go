package wordpiece

// TokenizeWordToPiecesAndIDsAndOffsets tokenizes a single, already
// whitespace/punctuation-delimited word, filling pieces, token ids, and
// byte start/end offsets. wordOffset is added to every start/end so the
// caller can place the word within a larger original text.
//
// It panics if the model was built with end_to_end set: a single-word
// tokenizer requires a model whose vocabulary and failure structure was
// built for pre-split input (§4.4's precondition).
func (t *Tokenizer) TokenizeWordToPiecesAndIDsAndOffsets(word string, wordOffset int) (pieces []string, ids []uint32, starts, ends []int) {
	assert(!t.model.EndToEnd, "TokenizeWord* requires a model built for single-word input")
	out := &outputSink{pieces: &pieces, ids: &ids, starts: &starts, ends: &ends}
	tokenizeSingleWord(t.model, []byte(word), wordOffset, out)
	return
}

// TokenizeWordToIDsAndOffsets is TokenizeWordToPiecesAndIDsAndOffsets without
// materializing piece strings.
func (t *Tokenizer) TokenizeWordToIDsAndOffsets(word string, wordOffset int) (ids []uint32, starts, ends []int) {
	assert(!t.model.EndToEnd, "TokenizeWord* requires a model built for single-word input")
	out := &outputSink{ids: &ids, starts: &starts, ends: &ends}
	tokenizeSingleWord(t.model, []byte(word), wordOffset, out)
	return
}

// TokenizeWordToIDs is TokenizeWordToPiecesAndIDsAndOffsets without offsets
// or piece strings, the cheapest of the three single-word entry points.
func (t *Tokenizer) TokenizeWordToIDs(word string, wordOffset int) []uint32 {
	assert(!t.model.EndToEnd, "TokenizeWord* requires a model built for single-word input")
	var ids []uint32
	out := &outputSink{ids: &ids}
	tokenizeSingleWord(t.model, []byte(word), wordOffset, out)
	return ids
}

// TokenizeToPiecesAndIDsAndOffsets runs the end-to-end tokenizer over an
// arbitrary text, detecting its own word boundaries. Offsets are relative to
// the start of text (see engine.go's note on tokenizeText).
//
// It panics if the model was not built with end_to_end set.
func (t *Tokenizer) TokenizeToPiecesAndIDsAndOffsets(text string) (pieces []string, ids []uint32, starts, ends []int) {
	assert(t.model.EndToEnd, "Tokenize* requires a model built for end-to-end input")
	out := &outputSink{pieces: &pieces, ids: &ids, starts: &starts, ends: &ends}
	tokenizeText(t.model, []byte(text), out)
	return
}

// TokenizeToIDsAndOffsets is TokenizeToPiecesAndIDsAndOffsets without
// materializing piece strings.
func (t *Tokenizer) TokenizeToIDsAndOffsets(text string) (ids []uint32, starts, ends []int) {
	assert(t.model.EndToEnd, "Tokenize* requires a model built for end-to-end input")
	out := &outputSink{ids: &ids, starts: &starts, ends: &ends}
	tokenizeText(t.model, []byte(text), out)
	return
}

// TokenizeToIDs is TokenizeToPiecesAndIDsAndOffsets without offsets or piece
// strings.
func (t *Tokenizer) TokenizeToIDs(text string) []uint32 {
	assert(t.model.EndToEnd, "Tokenize* requires a model built for end-to-end input")
	var ids []uint32
	out := &outputSink{ids: &ids}
	tokenizeText(t.model, []byte(text), out)
	return ids
}

// Model returns the immutable model this tokenizer was created from, for
// callers that want to inspect Stats or DebugJSON directly.
func (t *Tokenizer) Model() *Model { return t.model }
