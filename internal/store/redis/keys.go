package redis

import "fmt"

// KeyPrefixReports is the prefix for per-URL report partitions.
const KeyPrefixReports = "lh:reports:"

// ReportsKey returns the Redis key holding the report history for an
// encoded URL identifier.
func ReportsKey(id string) string {
	return KeyPrefixReports + id
}

// ExtractID extracts the encoded URL identifier from a reports key.
func ExtractID(key string) (string, error) {
	if len(key) <= len(KeyPrefixReports) {
		return "", fmt.Errorf("invalid reports key: %s", key)
	}
	return key[len(KeyPrefixReports):], nil
}
