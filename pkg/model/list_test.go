package model

import (
	"errors"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var ignoreBindings = cmpopts.IgnoreFields(Field{}, "Bindings")

func lookupStub(variant string) (Defaults, bool) {
	if variant == "Input" {
		return Defaults{Label: "Username", Description: "This is your public display name.", Placeholder: "shadcn"}, true
	}
	return Defaults{}, false
}

func sampleList() FieldList {
	return FieldList{
		Single(Field{Variant: "Input", Name: "username", Label: "Username", Checked: true}),
		Group(
			Field{Variant: "Input", Name: "first", Label: "First", Checked: true, RowIndex: 1},
			Field{Variant: "Input", Name: "last", Label: "Last", Checked: true, RowIndex: 1},
		),
		Single(Field{Variant: "Switch", Name: "marketing", Label: "Marketing", Checked: true, RowIndex: 2}),
	}
}

func TestAddFieldUsesVariantDefaults(t *testing.T) {
	list, field := AddField(nil, "Input", 0, lookupStub)
	if len(list) != 1 {
		t.Fatalf("expected one entry, got %d", len(list))
	}
	if !strings.HasPrefix(field.Name, NamePrefix) || len(field.Name) != len(NamePrefix)+16 {
		t.Fatalf("unexpected generated name %q", field.Name)
	}
	if field.Label != "Username" || field.Placeholder != "shadcn" {
		t.Fatalf("defaults not applied: %+v", field)
	}
	if !field.Required || !field.Checked || field.Value.Kind != KindString || field.Value.Str != "" {
		t.Fatalf("unexpected baseline attributes: %+v", field)
	}
	if !field.Bindings.Attached() {
		t.Fatalf("expected bindings to be attached")
	}
}

func TestAddFieldUnknownVariantGetsEmptyStrings(t *testing.T) {
	_, field := AddField(nil, "Hologram", 0, lookupStub)
	if field.Label != "" || field.Description != "" || field.Placeholder != "" {
		t.Fatalf("expected empty display strings, got %+v", field)
	}
	if field.Variant != "Hologram" {
		t.Fatalf("variant not preserved: %q", field.Variant)
	}
}

func TestAddFieldInsertionIndex(t *testing.T) {
	list := sampleList()
	out, field := AddField(list, "Input", 1, lookupStub)
	if len(out) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(out))
	}
	got, ok := out[1].Field()
	if !ok || got.Name != field.Name {
		t.Fatalf("expected new field at index 1, got %+v", out[1])
	}

	appended, _ := AddField(list, "Input", 99, lookupStub)
	if _, ok := appended[3].Field(); !ok {
		t.Fatalf("expected out-of-range index to append")
	}
	if len(list) != 3 {
		t.Fatalf("input list mutated: %d entries", len(list))
	}
}

func TestFindPath(t *testing.T) {
	list := sampleList()
	tests := []struct {
		name string
		want Path
		ok   bool
	}{
		{name: "username", want: Path{0}, ok: true},
		{name: "last", want: Path{1, 1}, ok: true},
		{name: "marketing", want: Path{2}, ok: true},
		{name: "missing", ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FindPath(list, tc.name)
			if ok != tc.ok {
				t.Fatalf("found=%v, want %v", ok, tc.ok)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("path mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUpdateFieldLeavesSnapshotIntact(t *testing.T) {
	list := sampleList()
	before := Clone(list)

	label := "Family name"
	out, err := UpdateField(list, Path{1, 1}, Patch{Label: &label, Min: Float(2)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if diff := cmp.Diff(before, list, ignoreBindings); diff != "" {
		t.Fatalf("previous snapshot mutated (-want +got):\n%s", diff)
	}
	got, _ := Get(out, Path{1, 1})
	if got.Label != label || got.Min == nil || *got.Min != 2 {
		t.Fatalf("patch not applied: %+v", got)
	}
	if got.Name != "last" || got.Variant != "Input" {
		t.Fatalf("unpatched attributes changed: %+v", got)
	}
	if diff := cmp.Diff(list[0], out[0], ignoreBindings); diff != "" {
		t.Fatalf("unrelated entry changed (-want +got):\n%s", diff)
	}
}

func TestUpdateFieldRejectsDuplicateName(t *testing.T) {
	list := sampleList()
	name := "first"
	_, err := UpdateField(list, Path{0}, Patch{Name: &name})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestUpdateFieldRejectsInvalidName(t *testing.T) {
	list := sampleList()
	for _, name := range []string{"", " ", "first name", "owner.email", "1st", "a-b", `a"b`} {
		name := name
		if _, err := UpdateField(list, Path{0}, Patch{Name: &name}); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("name %q: expected ErrInvalidName, got %v", name, err)
		}
	}

	for _, name := range []string{"email", "_private", "$ref", "name_2"} {
		name := name
		if _, err := UpdateField(list, Path{0}, Patch{Name: &name}); err != nil {
			t.Fatalf("name %q: unexpected error %v", name, err)
		}
	}
}

func TestUpdateFieldUnknownPath(t *testing.T) {
	list := sampleList()
	for _, path := range []Path{{7}, {1}, {0, 0}, {1, 5}, {}} {
		if _, err := UpdateField(list, path, Patch{}); !errors.Is(err, ErrPathNotFound) {
			t.Fatalf("path %v: expected ErrPathNotFound, got %v", path, err)
		}
	}
}

func TestPatchUnsetAndExtensions(t *testing.T) {
	field := Field{Name: "a", Min: Float(1), Max: Float(9), Extensions: map[string]json.RawMessage{"x-team": json.RawMessage(`"core"`)}}
	out := Patch{
		Unset:      []string{AttrMin},
		Extensions: map[string]json.RawMessage{"x-team": json.RawMessage("null"), "x-owner": json.RawMessage(`"ops"`)},
	}.Apply(field)

	if out.Min != nil || out.Max == nil {
		t.Fatalf("unexpected bounds after unset: min=%v max=%v", out.Min, out.Max)
	}
	if _, ok := out.Extensions["x-team"]; ok {
		t.Fatalf("expected x-team removed")
	}
	if string(out.Extensions["x-owner"]) != `"ops"` {
		t.Fatalf("expected x-owner set, got %s", out.Extensions["x-owner"])
	}
	if _, ok := field.Extensions["x-team"]; !ok {
		t.Fatalf("original extensions mutated")
	}
}

func TestRemoveField(t *testing.T) {
	list := sampleList()

	out, err := RemoveField(list, Path{1, 0})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if diff := cmp.Diff([]string{"username", "last", "marketing"}, Names(out)); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if !out[1].IsGroup() {
		t.Fatalf("expected remaining member to stay grouped")
	}

	out, err = RemoveField(out, Path{1, 0})
	if err != nil {
		t.Fatalf("remove last member: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected empty group dropped, got %d entries", len(out))
	}
	if len(Names(list)) != 4 {
		t.Fatalf("input list mutated")
	}
}

func TestResetAll(t *testing.T) {
	if got := ResetAll(); len(got) != 0 {
		t.Fatalf("expected empty list, got %d", len(got))
	}
}

func TestDuplicateNames(t *testing.T) {
	list := append(sampleList(), Single(Field{Name: "first"}), Single(Field{Name: "first"}))
	if diff := cmp.Diff([]string{"first"}, DuplicateNames(list)); diff != "" {
		t.Fatalf("duplicates mismatch (-want +got):\n%s", diff)
	}
}

func TestNewNameIsUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		name := NewName()
		if _, dup := seen[name]; dup {
			t.Fatalf("duplicate generated name %q", name)
		}
		seen[name] = struct{}{}
	}
}
