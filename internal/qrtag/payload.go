package qrtag

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// The QR sticker does not carry the bare tag code. It carries the code
// XORed against a shared-secret keystream, base64-encoded and wrapped
// in a format/version marker: CC::1:<base64>. Only a party holding the
// secret (the companion app and this service) can reverse it. This is
// scan-deterrent obfuscation, not encryption: a static repeating XOR
// key is trivially breakable and must never be treated as access
// control. The version marker exists so the scheme can be upgraded to
// authenticated encryption without changing the printed format.
const (
	payloadMarker  = "CC"
	payloadVersion = "1"
)

// ErrBadPayload is returned when an identifier is not a well-formed
// obfuscated payload. Resolution treats it as "not a payload" and moves
// on to the other identifier shapes.
var ErrBadPayload = errors.New("malformed scan payload")

// EncodePayload obfuscates a tag code for embedding in a QR image.
func EncodePayload(code, secret string) string {
	mixed := xorWithKey([]byte(code), []byte(secret))
	return fmt.Sprintf("%s::%s:%s", payloadMarker, payloadVersion,
		base64.StdEncoding.EncodeToString(mixed))
}

// DecodePayload is the mirror of EncodePayload. It strips the marker
// and version, base64-decodes the body and XORs it back with the same
// secret. ErrBadPayload is returned for anything that does not match
// the expected shape.
func DecodePayload(payload, secret string) (string, error) {
	head := payloadMarker + "::"
	if !strings.HasPrefix(payload, head) {
		return "", ErrBadPayload
	}
	rest := strings.TrimPrefix(payload, head)
	version, body, ok := strings.Cut(rest, ":")
	if !ok || version != payloadVersion || body == "" {
		return "", ErrBadPayload
	}
	mixed, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return "", ErrBadPayload
	}
	return string(xorWithKey(mixed, []byte(secret))), nil
}

// xorWithKey XORs data against a repeating keystream. Applying it twice
// with the same key restores the input.
func xorWithKey(data, key []byte) []byte {
	if len(key) == 0 {
		out := make([]byte, len(data))
		copy(out, data)
		return out
	}
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return out
}
