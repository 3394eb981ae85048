package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HTTPKey builds the key under which an API response is cached.
// The namespace identifies the API (e.g. "ibge-agregados:"), key the request.
func HTTPKey(namespace, key string) string {
	return "http:" + namespace + key
}

// Namespace returns the namespace part of a key built by [HTTPKey], used
// as a low-cardinality label for cache metrics.
func Namespace(key string) string {
	key = strings.TrimPrefix(key, "http:")
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}
