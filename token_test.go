package wordpiece

import "testing"

func TestPackUnpackTokenRoundTrips(t *testing.T) {
	cases := []encodedToken{
		{id: 0, byteLen: 0, isSuffix: false},
		{id: 42, byteLen: 4, isSuffix: true},
		{id: maxTokenID, byteLen: maxTokenByteLen, isSuffix: true},
	}
	for _, c := range cases {
		v := packToken(c.id, c.byteLen, c.isSuffix)
		got := unpackToken(v)
		if got != c {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, c)
		}
	}
}

func TestPackUnpackOffsetLengthRoundTrips(t *testing.T) {
	cases := []struct {
		offset, length uint32
	}{
		{0, 0},
		{7, 3},
		{maxPopsOffset, maxPopsLen},
	}
	for _, c := range cases {
		v := packOffsetLength(c.offset, c.length)
		offset, length := unpackOffsetLength(v)
		if offset != c.offset || length != c.length {
			t.Fatalf("round trip mismatch: got (%d,%d), want (%d,%d)", offset, length, c.offset, c.length)
		}
	}
}

func TestPackTokenPanicsOnOverflow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on id overflow")
		}
	}()
	packToken(maxTokenID+1, 0, false)
}
