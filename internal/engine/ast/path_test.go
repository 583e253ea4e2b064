package ast

import (
	"reflect"
	"testing"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		raw      string
		expected Path
	}{
		{"Name", Path{Root: RootSelf, Name: "Name"}},
		{"a::Name", Path{Root: RootUnit, Segments: []string{"a"}, Name: "Name"}},
		{"a::b::Name", Path{Root: RootUnit, Segments: []string{"a", "b"}, Name: "Name"}},
		{"unit::a::Name", Path{Root: RootUnit, Explicit: true, Segments: []string{"a"}, Name: "Name"}},
		{"self::Name", Path{Root: RootSelf, Explicit: true, Name: "Name"}},
		{"self::a::Name", Path{Root: RootSelf, Explicit: true, Segments: []string{"a"}, Name: "Name"}},
		{"super::Name", Path{Root: RootSuper, Explicit: true, Super: 1, Name: "Name"}},
		{"super::super::a::Name", Path{Root: RootSuper, Explicit: true, Super: 2, Segments: []string{"a"}, Name: "Name"}},
	}

	for _, tt := range tests {
		got, err := ParsePath(tt.raw)
		if err != nil {
			t.Errorf("ParsePath(%q) returned error: %v", tt.raw, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("ParsePath(%q) = %+v, expected %+v", tt.raw, got, tt.expected)
		}
	}
}

func TestParsePath_Bare(t *testing.T) {
	bare, err := ParsePath("VeryCommonNameStruct")
	if err != nil {
		t.Fatal(err)
	}
	if !bare.Bare() {
		t.Error("single identifier should be bare")
	}

	qualified, err := ParsePath("contract_a_types::VeryCommonNameStruct")
	if err != nil {
		t.Fatal(err)
	}
	if qualified.Bare() {
		t.Error("qualified path should not be bare")
	}

	explicitSelf, err := ParsePath("self::VeryCommonNameStruct")
	if err != nil {
		t.Fatal(err)
	}
	if explicitSelf.Bare() {
		t.Error("explicit self path should not be bare")
	}
}

func TestParsePath_Errors(t *testing.T) {
	invalid := []string{
		"",
		"   ",
		"a::::b",
		"::Name",
		"a::Name::",
		"super",
		"self",
		"a::self::Name",
		"a::super::Name",
		"a::unit::Name",
	}

	for _, raw := range invalid {
		if _, err := ParsePath(raw); err == nil {
			t.Errorf("ParsePath(%q) should fail", raw)
		}
	}
}

func TestPathString_RoundTrip(t *testing.T) {
	paths := []string{
		"Name",
		"a::Name",
		"a::b::Name",
		"unit::a::Name",
		"self::Name",
		"super::super::a::Name",
	}

	for _, raw := range paths {
		p, err := ParsePath(raw)
		if err != nil {
			t.Fatalf("ParsePath(%q): %v", raw, err)
		}
		if got := p.String(); got != raw {
			t.Errorf("ParsePath(%q).String() = %q", raw, got)
		}
	}
}
