package refs

import (
	"regexp"
	"strconv"
)

var footnoteNamePattern = regexp.MustCompile(`^#([a-zA-Z0-9]*)$`)

// IsAnonymousFootnote reports whether key is the auto-numbered marker "#".
func IsAnonymousFootnote(key string) bool {
	return key == "#"
}

// FootnoteName returns the label of an auto-numbered named footnote such as
// "#note". The bare "#" matches with an empty name.
func FootnoteName(key string) (string, bool) {
	m := footnoteNamePattern.FindStringSubmatch(key)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// FootnoteNumber returns the number of a manually numbered footnote. Only
// keys made of digits with a value of at least 1 qualify.
func FootnoteNumber(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// IsFootnoteKey reports whether key is any kind of footnote key. Anything
// else inside brackets is a citation label.
func IsFootnoteKey(key string) bool {
	if IsAnonymousFootnote(key) {
		return true
	}
	if _, ok := FootnoteName(key); ok {
		return true
	}
	_, ok := FootnoteNumber(key)
	return ok
}
