// Package semver parses and orders mod versions.
//
// Versions follow semantic versioning with an optional leading "v". The minor
// and patch components may be omitted ("1", "1.5"), in which case they are
// treated as zero. Ordering is delegated to golang.org/x/mod/semver so
// prerelease tags sort before the release they precede.
package semver

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a parsed semantic version. The zero value means "no version".
type Version struct {
	raw       string
	canonical string
}

// Parse validates s and returns the corresponding Version.
func Parse(s string) (Version, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Version{}, fmt.Errorf("semver: version is empty")
	}
	tagged := raw
	if tagged[0] == 'v' || tagged[0] == 'V' {
		tagged = tagged[1:]
	}
	tagged = "v" + padCore(tagged)
	if !semver.IsValid(tagged) {
		return Version{}, fmt.Errorf("semver: invalid version %q", raw)
	}
	return Version{raw: raw, canonical: semver.Canonical(tagged)}, nil
}

// padCore fills in a missing minor or patch component ahead of any
// prerelease or build suffix, so "1.0-beta" reads as "1.0.0-beta".
func padCore(s string) string {
	core, suffix := s, ""
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		core, suffix = s[:i], s[i:]
	}
	switch strings.Count(core, ".") {
	case 0:
		core += ".0.0"
	case 1:
		core += ".0"
	}
	return core + suffix
}

// MustParse is like Parse but panics on invalid input. Intended for tests and
// package-level constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether v holds no version.
func (v Version) IsZero() bool {
	return v.canonical == ""
}

// String returns the version exactly as it was written (trimmed).
func (v Version) String() string {
	return v.raw
}

// Canonical returns the normalized "MAJOR.MINOR.PATCH[-PRERELEASE]" form.
// Build metadata is dropped.
func (v Version) Canonical() string {
	return strings.TrimPrefix(v.canonical, "v")
}

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to
// or after other. The zero Version sorts before every parsed version.
func (v Version) Compare(other Version) int {
	switch {
	case v.IsZero() && other.IsZero():
		return 0
	case v.IsZero():
		return -1
	case other.IsZero():
		return 1
	}
	return semver.Compare(v.canonical, other.canonical)
}

// IsOlderThan reports whether v sorts strictly before other.
func (v Version) IsOlderThan(other Version) bool {
	return v.Compare(other) < 0
}

// IsNewerThan reports whether v sorts strictly after other.
func (v Version) IsNewerThan(other Version) bool {
	return v.Compare(other) > 0
}

// IsPrerelease reports whether v carries a prerelease tag.
func (v Version) IsPrerelease() bool {
	return semver.Prerelease(v.canonical) != ""
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.raw), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text leaves the
// zero Version so optional fields decode cleanly.
func (v *Version) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*v = Version{}
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
