package records

import (
	"iter"
	"strings"
)

// Normalize is the key comparison form: lower case, nothing trimmed.
func Normalize(key string) string {
	return strings.ToLower(key)
}

// KeySet is a set of normalised reference keys.
type KeySet map[string]struct{}

// NewKeySet builds a KeySet from raw keys.
func NewKeySet(keys ...string) KeySet {
	ks := make(KeySet, len(keys))
	for _, k := range keys {
		ks.Add(k)
	}
	return ks
}

// Add inserts the normalised form of key.
func (ks KeySet) Add(key string) {
	ks[Normalize(key)] = struct{}{}
}

// Contains reports whether the normalised form of key is present.
func (ks KeySet) Contains(key string) bool {
	_, ok := ks[Normalize(key)]
	return ok
}

// Len returns the number of distinct keys.
func (ks KeySet) Len() int {
	return len(ks)
}

// BuildKeySet collects field from every record. Records without the field
// contribute nothing.
func BuildKeySet(seq iter.Seq[RawRecord], field string) KeySet {
	ks := make(KeySet)
	for r := range seq {
		if v, ok := r[field]; ok {
			ks.Add(v)
		}
	}
	return ks
}

// Filter keeps the candidates whose field value is a member of keys.
func Filter(candidates iter.Seq[RawRecord], field string, keys KeySet) iter.Seq[RawRecord] {
	return func(yield func(RawRecord) bool) {
		for r := range candidates {
			v, ok := r[field]
			if !ok || !keys.Contains(v) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}
