package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainQuery = "asksql/query/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// QueryHash computes a content-addressed ID for a resolved query.
// Identical function, arguments and query text always hash the same, so the
// history store can group repeated questions.
func QueryHash(function string, args *Args, query string) (string, error) {
	obj := map[string]any{
		"function":  function,
		"arguments": args.Map(),
		"query":     query,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("QueryHash: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainQuery, canonical), nil
}
