package procgroup

import (
	"path"
	"strings"
	"unicode/utf8"
)

const deletedSuffix = " (deleted)"

// Name is an executable basename. It is kept as raw bytes because executable
// paths are not guaranteed to be valid UTF-8.
type Name string

// NameFromPath returns the final component of an executable path.
func NameFromPath(exe string) Name {
	exe = strings.TrimSuffix(exe, deletedSuffix)
	if exe == "" {
		return ""
	}
	base := path.Base(exe)
	if base == "/" || base == "." {
		return ""
	}
	return Name(base)
}

// Display converts the name to printable text, replacing invalid UTF-8
// sequences with U+FFFD.
func (n Name) Display() string {
	s := string(n)
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, string(utf8.RuneError))
}
