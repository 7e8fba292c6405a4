package token

import (
	"crypto"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"encoding/base64"
	"strings"

	"github.com/chukul/split-token-publisher/internal/apperr"
)

// Algorithm names a supported signature digest.
type Algorithm string

const (
	SHA256 Algorithm = "SHA-256"
	SHA384 Algorithm = "SHA-384"
	SHA512 Algorithm = "SHA-512"
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = SHA256

var algorithms = map[Algorithm]crypto.Hash{
	SHA256: crypto.SHA256,
	SHA384: crypto.SHA384,
	SHA512: crypto.SHA512,
}

// Algorithms lists the supported algorithms in ascending digest size.
func Algorithms() []Algorithm {
	return []Algorithm{SHA256, SHA384, SHA512}
}

// ParseAlgorithm accepts the canonical names as well as the sha_256 style
// used by older configuration files. An empty name yields the default.
func ParseAlgorithm(name string) (Algorithm, error) {
	if name == "" {
		return DefaultAlgorithm, nil
	}

	normalized := strings.ToUpper(strings.ReplaceAll(name, "_", "-"))
	a := Algorithm(normalized)
	if _, ok := algorithms[a]; !ok {
		return "", apperr.Genericf("unsupported hashing algorithm %q", name)
	}
	return a, nil
}

// Size returns the raw digest length in bytes, or 0 for an unknown algorithm.
func (a Algorithm) Size() int {
	h, ok := algorithms[a]
	if !ok {
		return 0
	}
	return h.Size()
}

// Available reports whether the digest is linked into the binary.
func (a Algorithm) Available() bool {
	h, ok := algorithms[a]
	return ok && h.Available()
}

// HashSignature returns the standard base64 encoding of the digest of signature.
// An unknown or unavailable algorithm is a GENERIC_ERROR.
func HashSignature(signature string, a Algorithm) (string, error) {
	if !a.Available() {
		return "", apperr.Genericf("%s must be available in order to publish split tokens", a)
	}

	h := algorithms[a].New()
	h.Write([]byte(signature))
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}
