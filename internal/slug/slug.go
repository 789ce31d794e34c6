package slug

import "strings"

// separator is the escape sequence substituted for "/" so that a full URL
// can be used as a flat storage partition name.
const separator = "__"

// Encode turns a URL into a storage-safe partition identifier.
func Encode(url string) string {
	return strings.ReplaceAll(url, "/", separator)
}

// Decode is the inverse of Encode. URLs that already contained the escape
// sequence are not round-trippable; callers own that constraint.
func Decode(id string) string {
	return strings.ReplaceAll(id, separator, "/")
}
