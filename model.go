package wordpiece

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fastwp/wordpiece/dat"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	blobMagic   = "WPJS"
	blobVersion = uint32(1)

	flagEndToEnd              = uint32(1) << 0
	flagSupportDetokenization = uint32(1) << 1
)

// Model is the immutable, flat, read-only container described by §3 of the
// model blob contract. It is constructed once by Create and shared by every
// *Tokenizer that loads it; no exported method mutates it.
type Model struct {
	Vocab           []string
	IsSuffix        []bool
	SuffixIndicator string
	UnkToken        string
	UnkTokenID      uint32

	MaxBytesPerToken      uint32
	EndToEnd              bool
	SupportDetokenization bool

	Trie *dat.DAT

	// FailureLink and FailurePopsOffsetLength are indexed by trie node id.
	// FailureLink[v] is dat.NullNode when v has no failure link.
	FailureLink             []uint32
	FailurePopsOffsetLength []uint32
	FailurePopsPool         []uint32

	PrecomputedSuffixIndicatorResult []uint32

	TrieSuffixRoot           uint32
	TriePunctFailureLinkNode uint32
}

// ModelStats summarizes a loaded model for logging and diagnostics. It is
// JSON-marshalable so callers can fold it into a structured log line.
type ModelStats struct {
	VocabSize         int     `json:"vocab_size"`
	TrieStates        int     `json:"trie_states"`
	TrieUsedStates    int     `json:"trie_used_states"`
	TrieFillRatio     float64 `json:"trie_fill_ratio"`
	FailurePopsPool   int     `json:"failure_pops_pool_len"`
	MaxBytesPerToken  uint32  `json:"max_bytes_per_token"`
	EndToEnd          bool    `json:"end_to_end"`
	SupportDetok      bool    `json:"support_detokenization"`
}

// Stats computes a ModelStats snapshot. It walks the trie's Check array once;
// callers that need it repeatedly (e.g. for a log line on every load) should
// cache the result.
func (m *Model) Stats() ModelStats {
	s := ModelStats{
		VocabSize:        len(m.Vocab),
		TrieStates:       m.Trie.NStates(),
		FailurePopsPool:  len(m.FailurePopsPool),
		MaxBytesPerToken: m.MaxBytesPerToken,
		EndToEnd:         m.EndToEnd,
		SupportDetok:     m.SupportDetokenization,
	}
	used := 0
	for _, c := range m.Trie.Check {
		if c != 0 {
			used++
		}
	}
	s.TrieUsedStates = used
	if s.TrieStates > 0 {
		s.TrieFillRatio = float64(used) / float64(s.TrieStates)
	}
	return s
}

// DebugJSON renders Stats as a JSON object, using goccy/go-json for
// allocation-light marshaling of the small diagnostics struct.
func (m *Model) DebugJSON() (string, error) {
	b, err := json.Marshal(m.Stats())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Tokenizer binds an immutable Model to a correlation id used only in trace
// log lines. Any number of goroutines may share one *Tokenizer.
type Tokenizer struct {
	model *Model
	id    uuid.UUID
}

// Create parses and validates a flat model blob, returning a ready-to-use
// Tokenizer. Errors are ErrMalformedBlob (truncated/inconsistent blob) or
// ErrTrieValidation (structurally invalid trie), both wrapped with context.
func Create(blob []byte) (*Tokenizer, error) {
	m, err := parseModel(blob)
	if err != nil {
		return nil, err
	}
	if err := validateModel(m); err != nil {
		return nil, err
	}
	id := uuid.New()
	stats := m.Stats()
	tracer().Infof("model loaded id=%s vocab=%d states=%d fill=%.3f end_to_end=%v detok=%v",
		id, stats.VocabSize, stats.TrieStates, stats.TrieFillRatio, stats.EndToEnd, stats.SupportDetok)
	return &Tokenizer{model: m, id: id}, nil
}

type blobReader struct {
	buf []byte
	pos int
}

func (r *blobReader) u32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *blobReader) i32() (int32, error) {
	v, err := r.u32()
	return int32(v), err
}

func (r *blobReader) bytes(n uint32) ([]byte, error) {
	if r.pos+int(n) > len(r.buf) {
		return nil, io.ErrUnexpectedEOF
	}
	b := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return b, nil
}

func (r *blobReader) byte1() (byte, error) {
	b, err := r.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// parseModel decodes the blob layout documented in SPEC_FULL.md §3.
func parseModel(blob []byte) (*Model, error) {
	r := &blobReader{buf: blob}

	magic, err := r.bytes(4)
	if err != nil || string(magic) != blobMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrMalformedBlob)
	}
	version, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	if version != blobVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedBlob, version)
	}

	vocabCount, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	suffixLen, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	unkTokenID, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	maxBytesPerToken, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	flags, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	trieStates, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	failPopsLen, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	precompLen, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	trieSuffixRoot, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	triePunctFailNode, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}

	vocab := make([]string, vocabCount)
	isSuffix := make([]bool, vocabCount)
	for i := uint32(0); i < vocabCount; i++ {
		l, err := r.u32()
		if err != nil {
			return nil, fmt.Errorf("%w: vocab[%d] length: %v", ErrMalformedBlob, i, err)
		}
		b, err := r.bytes(l)
		if err != nil {
			return nil, fmt.Errorf("%w: vocab[%d] bytes: %v", ErrMalformedBlob, i, err)
		}
		vocab[i] = string(b)
		flag, err := r.byte1()
		if err != nil {
			return nil, fmt.Errorf("%w: vocab[%d] is_suffix: %v", ErrMalformedBlob, i, err)
		}
		isSuffix[i] = flag != 0
	}

	suffixBytes, err := r.bytes(suffixLen)
	if err != nil {
		return nil, fmt.Errorf("%w: suffix indicator: %v", ErrMalformedBlob, err)
	}

	if unkTokenID >= vocabCount {
		return nil, fmt.Errorf("%w: unk_token_id %d out of range", ErrMalformedBlob, unkTokenID)
	}
	unkToken := vocab[unkTokenID]

	base := make([]int32, trieStates)
	check := make([]int32, trieStates)
	for i := uint32(0); i < trieStates; i++ {
		v, err := r.i32()
		if err != nil {
			return nil, fmt.Errorf("%w: trie base[%d]: %v", ErrMalformedBlob, i, err)
		}
		base[i] = v
	}
	for i := uint32(0); i < trieStates; i++ {
		v, err := r.i32()
		if err != nil {
			return nil, fmt.Errorf("%w: trie check[%d]: %v", ErrMalformedBlob, i, err)
		}
		check[i] = v
	}

	data := make([]uint32, trieStates)
	hasData := make([]bool, trieStates)
	for i := uint32(0); i < trieStates; i++ {
		v, err := r.u32()
		if err != nil {
			return nil, fmt.Errorf("%w: trie data[%d]: %v", ErrMalformedBlob, i, err)
		}
		if v != 0 {
			data[i] = v - 1
			hasData[i] = true
		}
	}

	failureLink := make([]uint32, trieStates)
	failurePopsOL := make([]uint32, trieStates)
	for i := uint32(0); i < trieStates; i++ {
		link, err := r.u32()
		if err != nil {
			return nil, fmt.Errorf("%w: failure_link[%d]: %v", ErrMalformedBlob, i, err)
		}
		ol, err := r.u32()
		if err != nil {
			return nil, fmt.Errorf("%w: failure_pops_offset_length[%d]: %v", ErrMalformedBlob, i, err)
		}
		failureLink[i] = link
		failurePopsOL[i] = ol
	}

	failurePopsPool := make([]uint32, failPopsLen)
	for i := uint32(0); i < failPopsLen; i++ {
		v, err := r.u32()
		if err != nil {
			return nil, fmt.Errorf("%w: failure_pops_pool[%d]: %v", ErrMalformedBlob, i, err)
		}
		failurePopsPool[i] = v
	}

	precomputed := make([]uint32, precompLen)
	for i := uint32(0); i < precompLen; i++ {
		v, err := r.u32()
		if err != nil {
			return nil, fmt.Errorf("%w: precomputed_result[%d]: %v", ErrMalformedBlob, i, err)
		}
		precomputed[i] = v
	}

	return &Model{
		Vocab:                   vocab,
		IsSuffix:                isSuffix,
		SuffixIndicator:         string(suffixBytes),
		UnkToken:                unkToken,
		UnkTokenID:              unkTokenID,
		MaxBytesPerToken:        maxBytesPerToken,
		EndToEnd:                flags&flagEndToEnd != 0,
		SupportDetokenization:   flags&flagSupportDetokenization != 0,
		Trie: &dat.DAT{
			RootID:  0,
			Base:    base,
			Check:   check,
			Data:    data,
			HasData: hasData,
		},
		FailureLink:                      failureLink,
		FailurePopsOffsetLength:          failurePopsOL,
		FailurePopsPool:                  failurePopsPool,
		PrecomputedSuffixIndicatorResult: precomputed,
		TrieSuffixRoot:                   trieSuffixRoot,
		TriePunctFailureLinkNode:         triePunctFailNode,
	}, nil
}

// validateModel checks the structural invariants from §3: vocab/is_suffix
// lengths agree, the unk token's vocab entry matches unk_token, every
// failure-pops slice fits in the pool, and every non-null failure link names
// a real node.
func validateModel(m *Model) error {
	if len(m.Vocab) != len(m.IsSuffix) {
		return fmt.Errorf("%w: vocab/is_suffix length mismatch", ErrTrieValidation)
	}
	if m.MaxBytesPerToken == 0 {
		return fmt.Errorf("%w: max_bytes_per_token must be positive", ErrTrieValidation)
	}
	if int(m.UnkTokenID) >= len(m.Vocab) || m.Vocab[m.UnkTokenID] != m.UnkToken {
		return fmt.Errorf("%w: unk_token_id does not name unk_token in vocab", ErrTrieValidation)
	}
	n := m.Trie.NStates()
	if len(m.FailureLink) != n || len(m.FailurePopsOffsetLength) != n {
		return fmt.Errorf("%w: failure struct length does not match trie state count", ErrTrieValidation)
	}
	poolLen := uint32(len(m.FailurePopsPool))
	for v := 0; v < n; v++ {
		link := m.FailureLink[v]
		if link == dat.NullNode {
			continue
		}
		if int(link) >= n {
			return fmt.Errorf("%w: failure_link[%d]=%d out of range", ErrTrieValidation, v, link)
		}
		offset, length := unpackOffsetLength(m.FailurePopsOffsetLength[v])
		if offset+length > poolLen {
			return fmt.Errorf("%w: failure_pops_offset_length[%d] runs past pool", ErrTrieValidation, v)
		}
	}
	if m.TrieSuffixRoot != dat.NullNode && int(m.TrieSuffixRoot) >= n {
		return fmt.Errorf("%w: trie_suffix_root out of range", ErrTrieValidation)
	}
	if m.TriePunctFailureLinkNode != dat.NullNode && int(m.TriePunctFailureLinkNode) >= n {
		return fmt.Errorf("%w: trie_punct_failure_link_node out of range", ErrTrieValidation)
	}
	return nil
}
