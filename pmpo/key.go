package pmpo

import "strings"

// Key is a descriptor name as stored in a Model. Case-insensitive models
// upper-case names on registration and lookup.
type Key string

// NewKey normalises name for a model with the given case sensitivity.
func NewKey(name string, caseInsensitive bool) Key {
	if caseInsensitive {
		return Key(strings.ToUpper(name))
	}
	return Key(name)
}

func (k Key) String() string { return string(k) }
