// Package token splits compact tokens and derives the lookup key for their signature.
package token

import "strings"

// PartCount is the number of dot-delimited segments a compact token must have.
const PartCount = 3

// Split is a compact token separated into what gets stored and what the client keeps.
type Split struct {
	HeadAndBody string
	Signature   string
}

// SplitToken separates value into its head+body and signature.
// ok is false when value does not have exactly three segments; callers must skip such tokens.
// parts is the segment count that was found.
//
// Trailing empty segments are not counted, so "a.b." has two parts and an
// unsigned token never produces an empty signature.
func SplitToken(value string) (split Split, parts int, ok bool) {
	segments := strings.Split(value, ".")
	for len(segments) > 1 && segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}

	if len(segments) != PartCount {
		return Split{}, len(segments), false
	}

	return Split{
		HeadAndBody: segments[0] + "." + segments[1],
		Signature:   segments[2],
	}, PartCount, true
}
