package pact

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Base64URLEncode encodes bytes as url-safe base64 without padding, the
// encoding Chainweb uses for hashes, query data and submitted values.
func Base64URLEncode(input []byte) string {
	return base64.RawURLEncoding.EncodeToString(input)
}

// Base64URLEncodeString encodes a string as url-safe base64 without padding.
func Base64URLEncodeString(input string) string {
	return Base64URLEncode([]byte(input))
}

// Base64URLDecodeString decodes a url-safe base64 string, with or without
// padding, back to its original form.
func Base64URLDecodeString(input string) (string, error) {
	if rem := len(input) % 4; rem > 0 {
		input += "===="[:4-rem]
	}
	decoded, err := base64.URLEncoding.DecodeString(input)
	if err != nil {
		return "", fmt.Errorf("error decoding base64url string: %w", err)
	}
	return string(decoded), nil
}

// HashBin returns the Blake2b-256 digest of a string.
func HashBin(s string) []byte {
	digest := blake2b.Sum256([]byte(s))
	return digest[:]
}

// Hash returns the url-safe base64 encoded Blake2b-256 digest of a string.
func Hash(s string) string {
	return Base64URLEncode(HashBin(s))
}
