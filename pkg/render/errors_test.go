package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

func errorList() model.FieldList {
	return model.FieldList{
		model.Single(model.Field{Variant: "Input", Name: "name_1"}),
		model.Group(
			model.Field{Variant: "Input", Name: "owner_email"},
			model.Field{Variant: "Phone", Name: "phone"},
		),
		model.Single(model.Field{Variant: "Tags Input", Name: "tags"}),
	}
}

func TestMapErrorPayload_NamesAndPointers(t *testing.T) {
	payload := map[string][]string{
		"/values/name_1":   {"Username is required"},
		"owner_email":      {"Email invalid"},
		"/data/tags/0":     {"Tags must be unique"},
		"#/phone":          {" Phone malformed ", "Phone malformed"},
		"non_field_errors": {"Form level error"},
		"/values/unknown":  {"Should fall back to form errors"},
		"":                 {"Unscoped form error"},
	}

	mapped := render.MapErrorPayload(errorList(), payload)

	wantFields := map[string][]string{
		"name_1":      {"Username is required"},
		"owner_email": {"Email invalid"},
		"tags":        {"Tags must be unique"},
		"phone":       {"Phone malformed"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMapIssues(t *testing.T) {
	issues := []schema.Issue{
		{Field: "name_1", Code: schema.CodeRequired, Message: "Username is required."},
		{Field: "phone", Code: schema.CodePattern, Message: "Enter a valid phone number."},
		{Field: "ghost", Code: schema.CodeRequired, Message: "Ghost is required."},
	}

	mapped := render.MapIssues(errorList(), issues)

	want := map[string][]string{
		"name_1": {"Username is required."},
		"phone":  {"Enter a valid phone number."},
	}
	if diff := cmp.Diff(want, mapped.Fields); diff != "" {
		t.Fatalf("issue mapping mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Ghost is required."}, mapped.Form); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorMappingMerge(t *testing.T) {
	left := render.ErrorMapping{
		Fields: map[string][]string{"name_1": {"a"}},
		Form:   []string{"x"},
	}
	right := render.ErrorMapping{
		Fields: map[string][]string{"name_1": {"a", "b"}, "phone": {"c"}},
		Form:   []string{"x", "y"},
	}

	merged := left.Merge(right)

	if diff := cmp.Diff(map[string][]string{"name_1": {"a", "b"}, "phone": {"c"}}, merged.Fields); diff != "" {
		t.Fatalf("merged fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x", "y"}, merged.Form); diff != "" {
		t.Fatalf("merged form mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
