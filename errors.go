package wordpiece

import "errors"

// Sentinel errors returned by Create and Detokenize. Wrap with fmt.Errorf
// and %w when adding context; callers can still match with errors.Is.
var (
	// ErrMalformedBlob is returned by Create when the model blob is
	// truncated, has a bad magic/version, or has internally inconsistent
	// lengths.
	ErrMalformedBlob = errors.New("wordpiece: malformed model blob")

	// ErrTrieValidation is returned by Create when the parsed trie fails
	// the structural checks in §3's invariants (out-of-range failure
	// links, failure-pops slices running past the pool, etc).
	ErrTrieValidation = errors.New("wordpiece: trie validation failed")

	// ErrDetokenizationUnsupported is returned by DetokenizeToTokens and
	// Detokenize when the model was built with support_detokenization
	// set to false.
	ErrDetokenizationUnsupported = errors.New("wordpiece: model does not support detokenization")
)
