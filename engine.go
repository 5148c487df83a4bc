package wordpiece

import (
	"unicode/utf8"

	"github.com/fastwp/wordpiece/charclass"
	"github.com/fastwp/wordpiece/dat"
)

// nextRune decodes one codepoint starting at buf[i] and returns it together
// with the offset of the byte right after it (§4.1, the UTF-8 scanner).
// utf8.DecodeRune already gives us exactly the contract we need on
// malformed input: it returns (RuneError, 1) rather than (RuneError, 0), so
// the caller always advances by at least one byte and tokenization can
// never spin on bad bytes. The precondition i < len(buf) guarantees buf[i:]
// is never empty, the only case DecodeRune reports a zero-width result for.
func nextRune(buf []byte, i int) (rune, int) {
	r, size := utf8.DecodeRune(buf[i:])
	return r, i + size
}

// outputSink bundles the (optional) output containers a tokenize call was
// asked to fill. A nil field means that output wasn't requested; every
// append site checks the field directly, so the cost of an unrequested
// output is one nil check, not a separate code path per combination.
type outputSink struct {
	pieces *[]string
	ids    *[]uint32
	starts *[]int
	ends   *[]int
}

func (o *outputSink) length() int {
	switch {
	case o.pieces != nil:
		return len(*o.pieces)
	case o.ids != nil:
		return len(*o.ids)
	case o.starts != nil:
		return len(*o.starts)
	case o.ends != nil:
		return len(*o.ends)
	default:
		return 0
	}
}

func (o *outputSink) truncate(n int) {
	if o.pieces != nil {
		*o.pieces = (*o.pieces)[:n]
	}
	if o.ids != nil {
		*o.ids = (*o.ids)[:n]
	}
	if o.starts != nil {
		*o.starts = (*o.starts)[:n]
	}
	if o.ends != nil {
		*o.ends = (*o.ends)[:n]
	}
}

// hopBudget bounds the total number of failure-link transitions a single
// tokenize-word call may make. The algorithm's linear-time guarantee proves
// this is never exceeded for a well-formed model (§9: at most one failure
// hop per input byte); the budget exists only to keep a degenerate or
// corrupted model (a failure-link cycle) from hanging instead of failing.
type hopBudget struct {
	remaining int
}

func newHopBudget(inputLen int) *hopBudget {
	return &hopBudget{remaining: inputLen*2 + 16}
}

func (b *hopBudget) take() bool {
	if b.remaining <= 0 {
		return false
	}
	b.remaining--
	return true
}

// appendToken implements §4.8: it appends the encoded token to every
// requested output and advances curOffsetInWord past its surface length.
func appendToken(m *Model, encodedValue uint32, word []byte, wordOffsetInText int, curOffsetInWord *int, out *outputSink) {
	tok := unpackToken(encodedValue)
	if out.ids != nil {
		*out.ids = append(*out.ids, tok.id)
	}
	if out.pieces == nil && out.starts == nil && out.ends == nil {
		return
	}

	length := tok.byteLen
	if *curOffsetInWord == 0 && tok.isSuffix {
		// The very first token of the word is itself a suffix token: the
		// word's literal bytes begin with the suffix indicator, so the
		// surface span must include those bytes too.
		length += uint32(len(m.SuffixIndicator))
	}

	if out.pieces != nil {
		var piece string
		if tok.id == m.UnkTokenID {
			piece = m.UnkToken
		} else {
			surface := string(word[*curOffsetInWord : *curOffsetInWord+int(length)])
			if *curOffsetInWord != 0 {
				piece = m.SuffixIndicator + surface
			} else {
				piece = surface
			}
		}
		*out.pieces = append(*out.pieces, piece)
	}
	if out.starts != nil {
		*out.starts = append(*out.starts, wordOffsetInText+*curOffsetInWord)
	}
	if out.ends != nil {
		*out.ends = append(*out.ends, wordOffsetInText+*curOffsetInWord+int(length))
	}
	*curOffsetInWord += int(length)
}

// followFailureAndEmit implements §4.6. It returns false when the current
// node has no failure link to follow (the word cannot be segmented further).
func followFailureAndEmit(m *Model, c *dat.Cursor, word []byte, wordOffsetInText int, curOffsetInWord *int, out *outputSink, budget *hopBudget) bool {
	if !budget.take() {
		return false
	}
	node := c.NodeID()
	if v, ok := m.Trie.TryGetData(*c); ok {
		// Shortcut (§9): the vocab entry at this node is the sole failure
		// pop, so we emit it directly instead of reading a one-element pool
		// slice.
		appendToken(m, v, word, wordOffsetInText, curOffsetInWord, out)
		c.Set(m.FailureLink[node])
		return true
	}
	link := m.FailureLink[node]
	if link == dat.NullNode {
		return false
	}
	offset, length := unpackOffsetLength(m.FailurePopsOffsetLength[node])
	for i := offset; i < offset+length; i++ {
		appendToken(m, m.FailurePopsPool[i], word, wordOffsetInText, curOffsetInWord, out)
	}
	c.Set(link)
	return true
}

// resetAndEmitUnknown implements §4.9: truncate every requested output back
// to originalLen and append exactly one unknown token spanning the word.
func resetAndEmitUnknown(m *Model, wordOffsetInText, wordSize int, originalLen *int, out *outputSink) {
	out.truncate(*originalLen)
	if out.ids != nil {
		*out.ids = append(*out.ids, m.UnkTokenID)
	}
	if out.pieces != nil {
		*out.pieces = append(*out.pieces, m.UnkToken)
	}
	if out.starts != nil {
		*out.starts = append(*out.starts, wordOffsetInText)
	}
	if out.ends != nil {
		*out.ends = append(*out.ends, wordOffsetInText+wordSize)
	}
	*originalLen = out.length()
}

// handleTrailingTriePath implements §4.7: after all of a word's bytes have
// been consumed by the trie, drain whatever failure pops remain on the
// current path until the path represents the empty suffix (trie_suffix_root)
// or the punctuation sentinel, or fail the whole word as unknown.
func handleTrailingTriePath(m *Model, c *dat.Cursor, word []byte, wordOffsetInText int, originalLen *int, curOffsetInWord *int, out *outputSink, budget *hopBudget) {
	if c.NodeID() == m.Trie.RootID {
		return
	}
	if c.NodeID() == m.TrieSuffixRoot && out.length() == *originalLen {
		// The word consisted solely of the suffix indicator itself.
		if len(m.PrecomputedSuffixIndicatorResult) == 1 {
			only := unpackToken(m.PrecomputedSuffixIndicatorResult[0])
			if only.id == m.UnkTokenID {
				resetAndEmitUnknown(m, wordOffsetInText, len(word), originalLen, out)
				return
			}
		}
		for _, v := range m.PrecomputedSuffixIndicatorResult {
			appendToken(m, v, word, wordOffsetInText, curOffsetInWord, out)
		}
		*originalLen = out.length()
		return
	}
	for c.NodeID() != m.TrieSuffixRoot && c.NodeID() != m.TriePunctFailureLinkNode {
		if !followFailureAndEmit(m, c, word, wordOffsetInText, curOffsetInWord, out, budget) {
			resetAndEmitUnknown(m, wordOffsetInText, len(word), originalLen, out)
			return
		}
	}
	*originalLen = out.length()
}

// tokenizeSingleWord implements §4.4: word is a single, already
// boundary-free word; wordOffsetInText lets the caller place its offsets
// within a larger original text.
func tokenizeSingleWord(m *Model, word []byte, wordOffsetInText int, out *outputSink) {
	if len(word) == 0 {
		return
	}
	originalLen := out.length()
	if uint32(len(word)) > m.MaxBytesPerToken {
		resetAndEmitUnknown(m, wordOffsetInText, len(word), &originalLen, out)
		return
	}

	cursor := m.Trie.Root()
	curOffsetInWord := 0
	budget := newHopBudget(len(word))

	for _, b := range word {
		for !m.Trie.TryStepOneByte(&cursor, b) {
			if !followFailureAndEmit(m, &cursor, word, wordOffsetInText, &curOffsetInWord, out, budget) {
				resetAndEmitUnknown(m, wordOffsetInText, len(word), &originalLen, out)
				return
			}
		}
	}
	handleTrailingTriePath(m, &cursor, word, wordOffsetInText, &originalLen, &curOffsetInWord, out, budget)
}

// skipRemainingWordAndTrailingWhitespace advances *curPos past the rest of
// an unmatchable word and at most one trailing whitespace codepoint (any
// further whitespace is skipped by the caller's outer loop), stopping
// at (but not past) a following punctuation/CJK character. It returns the
// exclusive end of the non-boundary content scanned, which is the unknown
// token's span end.
func skipRemainingWordAndTrailingWhitespace(text []byte, curPos *int) int {
	n := len(text)
	endOfWord := *curPos
	for *curPos < n {
		r, next := nextRune(text, *curPos)
		if charclass.IsWhitespace(r) {
			*curPos = next
			break
		}
		if charclass.IsPunctOrCJK(r) {
			break
		}
		endOfWord = next
		*curPos = next
	}
	return endOfWord
}

// tokenizeText implements §4.5, the end-to-end tokenizer. It detects its own
// word boundaries (whitespace, punctuation, CJK) rather than requiring
// pre-split input.
//
// Offsets are always relative to the start of text: unlike the single-word
// path, the end-to-end path has no notion of "this text is itself a
// fragment living at some offset in a larger document", so a caller-supplied
// word offset is not threaded through here (see DESIGN.md's note on this).
func tokenizeText(m *Model, text []byte, out *outputSink) {
	n := len(text)
	if n == 0 {
		return
	}
	curPos := 0
	var prevChar, curChar rune

	for curPos < n {
		wordStart := curPos
		cursor := m.Trie.Root()
		curOffsetInWord := 0
		wordByteLen := 0
		originalLen := out.length()
		budget := newHopBudget(n - curPos)

		// This loop tokenizes the word starting at wordStart until it either
		// steps over the input boundary, exceeds max_bytes_per_token, or
		// meets a character the trie (and its failure links) cannot consume.
		// All three outcomes fall through to the same boundary check below.
		// A punctuation/CJK character that ends a word is left at curPos and
		// is decoded again as the start of the next word.
		var nextPos int
		for curPos < n {
			prevChar = curChar
			curChar, nextPos = nextRune(text, curPos)

			if wordByteLen+(nextPos-curPos) > int(m.MaxBytesPerToken) {
				break
			}

			matched := m.Trie.TryStepBytes(&cursor, text[curPos:nextPos])
			for !matched {
				if !followFailureAndEmit(m, &cursor, text[wordStart:], wordStart, &curOffsetInWord, out, budget) {
					goto boundaryCheck
				}
				matched = m.Trie.TryStepBytes(&cursor, text[curPos:nextPos])
			}

			wordByteLen += nextPos - curPos
			curPos = nextPos
		}

	boundaryCheck:
		if curPos >= n {
			handleTrailingTriePath(m, &cursor, text[wordStart:curPos], wordStart, &originalLen, &curOffsetInWord, out, budget)
			break
		}

		isWhite := charclass.IsWhitespace(curChar)
		isBoundary := isWhite || charclass.IsPunctOrCJK(curChar) ||
			(curPos != 0 && charclass.IsPunctOrCJK(prevChar))
		if isBoundary {
			if !isWhite && curPos == wordStart && cursor.NodeID() == m.Trie.RootID {
				// The boundary character itself has no trie edge from the
				// root (e.g. a punctuation byte absent from the vocabulary),
				// so handleTrailingTriePath would be a no-op on an
				// already-empty path and curPos would never advance. Treat
				// the character as its own single-byte-to-multi-byte unknown
				// word instead of retrying the same position forever.
				resetAndEmitUnknown(m, wordStart, nextPos-wordStart, &originalLen, out)
				curPos = nextPos
				continue
			}
			handleTrailingTriePath(m, &cursor, text[wordStart:curPos], wordStart, &originalLen, &curOffsetInWord, out, budget)
			if isWhite {
				curPos = nextPos
			}
			continue
		}

		// The current character is not a boundary: either the trie failed
		// mid-match on it, or the word exceeded max_bytes_per_token reaching
		// it. Either way the whole word (from wordStart onward) collapses to
		// a single unknown token.
		curPos = nextPos
		endOfWord := skipRemainingWordAndTrailingWhitespace(text, &curPos)
		resetAndEmitUnknown(m, wordStart, endOfWord-wordStart, &originalLen, out)
	}
}
