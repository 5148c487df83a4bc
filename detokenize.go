package wordpiece

import "strings"

// DetokenizeToTokens reassembles token ids into the words that produced them:
// a non-suffix token starts a new word, and every following suffix token
// attaches directly to it with no separator. It implements §4.10 and
// requires a model built with support_detokenization set.
//
// It is the inverse of word splitting, not of subword splitting: the
// returned strings are whole words, one per word, not one per input id.
func (t *Tokenizer) DetokenizeToTokens(ids []uint32) ([]string, error) {
	m := t.model
	if !m.SupportDetokenization {
		return nil, ErrDetokenizationUnsupported
	}
	var words []string
	var subwords []string
	for _, id := range ids {
		if int(id) >= len(m.Vocab) {
			return nil, ErrMalformedBlob
		}
		isSuffix := m.IsSuffix[id]
		if len(subwords) > 0 && !isSuffix {
			words = append(words, strings.Join(subwords, ""))
			subwords = subwords[:0]
		}
		if len(subwords) == 0 && isSuffix {
			// A suffix token with nothing before it (only the first id can
			// reach here, since a flush above happens only on a non-suffix
			// id): preserve the suffix indicator instead of silently
			// dropping it.
			subwords = append(subwords, m.SuffixIndicator)
		}
		subwords = append(subwords, m.Vocab[id])
	}
	if len(subwords) > 0 {
		words = append(words, strings.Join(subwords, ""))
	}
	return words, nil
}

// Detokenize joins DetokenizeToTokens' words with single spaces. It cannot
// recover the original whitespace exactly (§4.10's documented limitation).
func (t *Tokenizer) Detokenize(ids []uint32) (string, error) {
	words, err := t.DetokenizeToTokens(ids)
	if err != nil {
		return "", err
	}
	return strings.Join(words, " "), nil
}
