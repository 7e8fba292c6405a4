package token

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chukul/split-token-publisher/internal/apperr"
)

func TestSplitToken(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		wantOK    bool
		wantParts int
		want      Split
	}{
		{name: "three parts", value: "aaa.bbb.ccc", wantOK: true, wantParts: 3, want: Split{HeadAndBody: "aaa.bbb", Signature: "ccc"}},
		{name: "empty body", value: "aaa..ccc", wantOK: true, wantParts: 3, want: Split{HeadAndBody: "aaa.", Signature: "ccc"}},
		{name: "two parts", value: "onlytwo.parts", wantParts: 2},
		{name: "unsigned", value: "aaa.bbb.", wantParts: 2},
		{name: "four parts", value: "a.b.c.d", wantParts: 4},
		{name: "opaque", value: "_0XBPWQQ_abcdef", wantParts: 1},
		{name: "empty", value: "", wantParts: 1},
		{name: "jwe", value: "h.k.iv.ct.tag", wantParts: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split, parts, ok := SplitToken(tt.value)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantParts, parts)
			assert.Equal(t, tt.want, split)
		})
	}
}

func TestHashSignatureMatchesReference(t *testing.T) {
	sum := sha256.Sum256([]byte("ccc"))
	want := base64.StdEncoding.EncodeToString(sum[:])

	got, err := HashSignature("ccc", SHA256)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	again, err := HashSignature("ccc", SHA256)
	require.NoError(t, err)
	assert.Equal(t, got, again)

	sum512 := sha512.Sum512([]byte("ccc"))
	got512, err := HashSignature("ccc", SHA512)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(sum512[:]), got512)
}

func TestHashSignatureDigestLengths(t *testing.T) {
	want := map[Algorithm]int{SHA256: 32, SHA384: 48, SHA512: 64}

	for _, a := range Algorithms() {
		t.Run(string(a), func(t *testing.T) {
			encoded, err := HashSignature("signature", a)
			require.NoError(t, err)

			raw, err := base64.StdEncoding.DecodeString(encoded)
			require.NoError(t, err)
			assert.Len(t, raw, want[a])
			assert.Equal(t, want[a], a.Size())
		})
	}
}

func TestHashSignatureUnknownAlgorithm(t *testing.T) {
	_, err := HashSignature("ccc", Algorithm("MD5"))
	require.Error(t, err)
	assert.True(t, apperr.IsGeneric(err))
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in      string
		want    Algorithm
		wantErr bool
	}{
		{in: "", want: SHA256},
		{in: "SHA-256", want: SHA256},
		{in: "sha_384", want: SHA384},
		{in: "sha-512", want: SHA512},
		{in: "SHA-1", wantErr: true},
		{in: "blake3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperr.IsGeneric(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
