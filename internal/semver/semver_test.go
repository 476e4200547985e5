package semver

import "testing"

func TestParseAcceptsShorthandAndPrefix(t *testing.T) {
	tests := []struct {
		in        string
		canonical string
	}{
		{in: "1.5", canonical: "1.5.0"},
		{in: "v2", canonical: "2.0.0"},
		{in: " 1.2.3 ", canonical: "1.2.3"},
		{in: "V1.0.0-beta.2", canonical: "1.0.0-beta.2"},
		{in: "3.1.4+build.7", canonical: "3.1.4"},
		{in: "1.0-beta", canonical: "1.0.0-beta"},
		{in: "2-rc.1", canonical: "2.0.0-rc.1"},
		{in: "1.2+meta", canonical: "1.2.0"},
	}
	for _, tt := range tests {
		v, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", tt.in, err)
		}
		if v.Canonical() != tt.canonical {
			t.Fatalf("Parse(%q).Canonical() = %q, want %q", tt.in, v.Canonical(), tt.canonical)
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "1.2.3.4", "1..2", "1.0-", "-beta", "1.x-beta"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("Parse(%q) expected error", in)
		}
	}
}

func TestStringPreservesOriginalText(t *testing.T) {
	v := MustParse("1.5")
	if v.String() != "1.5" {
		t.Fatalf("String() = %q, want 1.5", v.String())
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0.0", 0},
		{"1.5", "2.0", -1},
		{"2.1", "2.0", 1},
		{"1.0.0-beta", "1.0.0", -1},
		{"1.0.0-alpha", "1.0.0-beta", -1},
		{"1.0-beta", "1.0.0-beta", 0},
		{"1.0-beta", "1.0", -1},
		{"10.0", "9.9.9", 1},
	}
	for _, tt := range tests {
		got := MustParse(tt.a).Compare(MustParse(tt.b))
		if got != tt.want {
			t.Fatalf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
	if !MustParse("1.4").IsOlderThan(MustParse("1.5")) {
		t.Fatalf("expected 1.4 to be older than 1.5")
	}
	if !MustParse("2.1").IsNewerThan(MustParse("2.0")) {
		t.Fatalf("expected 2.1 to be newer than 2.0")
	}
}

func TestZeroVersionSortsFirst(t *testing.T) {
	var zero Version
	if !zero.IsZero() {
		t.Fatalf("zero value must report IsZero")
	}
	if zero.Compare(MustParse("0.0.1")) != -1 {
		t.Fatalf("zero version should sort before any parsed version")
	}
}

func TestUnmarshalText(t *testing.T) {
	var v Version
	if err := v.UnmarshalText([]byte("1.2-rc.1")); err == nil {
		t.Fatalf("expected shorthand with prerelease to be rejected")
	}
	if err := v.UnmarshalText([]byte("1.2.0-rc.1")); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !v.IsPrerelease() {
		t.Fatalf("expected prerelease version, got %s", v.Canonical())
	}
	if err := v.UnmarshalText([]byte("")); err != nil {
		t.Fatalf("empty text should decode to zero: %v", err)
	}
	if !v.IsZero() {
		t.Fatalf("expected zero version after empty unmarshal")
	}
}
