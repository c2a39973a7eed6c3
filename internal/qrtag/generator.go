// Package qrtag produces human-readable tag codes and the obfuscated
// payload embedded in printed QR stickers.
package qrtag

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// CodePrefix marks every tag code. Public resolution uses it to decide
// whether an identifier is code-shaped before falling back to an id lookup.
const CodePrefix = "TAG-"

// codeSuffixLen is the number of random characters after the prefix.
const codeSuffixLen = 8

// codeAlphabet excludes ambiguous glyphs (0/O, 1/I) so codes stay
// legible when printed next to the QR image.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateCode draws a fresh tag code such as TAG-AB12CD34 from
// crypto/rand. Uniqueness is not guaranteed here: batch issuance tracks
// codes generated in the same run and the database uniqueness
// constraint on tags.code is the final authority. Callers retry on
// collision.
func GenerateCode() (string, error) {
	buf := make([]byte, codeSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	var b strings.Builder
	b.WriteString(CodePrefix)
	for _, c := range buf {
		b.WriteByte(codeAlphabet[int(c)%len(codeAlphabet)])
	}
	return b.String(), nil
}

// IsCodeShaped reports whether an identifier looks like a tag code.
func IsCodeShaped(identifier string) bool {
	return strings.HasPrefix(identifier, CodePrefix)
}
