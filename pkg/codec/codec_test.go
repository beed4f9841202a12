package codec

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

var ignoreBindings = cmpopts.IgnoreFields(model.Field{}, "Bindings")

func TestSerialize_KeyOrder(t *testing.T) {
	list := model.FieldList{model.Single(model.Field{
		Variant:  "Input",
		Name:     "name_1",
		Label:    "Username",
		Value:    model.StringValue(""),
		Checked:  true,
		Required: true,
		Bindings: model.NoopBindings(),
	})}

	got, err := SerializeString(list)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	want := `[
  {
    "variant": "Input",
    "name": "name_1",
    "label": "Username",
    "disabled": false,
    "value": "",
    "checked": true,
    "rowIndex": 0,
    "required": true
  }
]`
	if diff := cmp.Diff(want, strings.TrimSpace(got)); diff != "" {
		t.Fatalf("serialized output mismatch (-want +got):\n%s", diff)
	}
}

func TestSerialize_ExtensionsAfterKnownKeys(t *testing.T) {
	list := model.FieldList{model.Single(model.Field{
		Type:    "email",
		Variant: "Input",
		Name:    "email",
		Label:   "Email <work>",
		Min:     model.Float(1),
		Extensions: map[string]json.RawMessage{
			"zeta":     json.RawMessage(`{"b": 1}`),
			"alpha":    json.RawMessage(`true`),
			"label":    json.RawMessage(`"shadow"`),
			"onChange": json.RawMessage(`null`),
		},
	})}

	data, err := Serialize(list)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	text := string(data)
	if strings.Count(text, `"label"`) != 1 {
		t.Fatalf("expected label once, got:\n%s", text)
	}
	if strings.Contains(text, "onChange") {
		t.Fatalf("bindings must not be serialized:\n%s", text)
	}
	if !strings.Contains(text, "Email <work>") {
		t.Fatalf("expected unescaped label text, got:\n%s", text)
	}
	order := []string{`"type"`, `"variant"`, `"name"`, `"label"`, `"min"`, `"alpha"`, `"zeta"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(text, key)
		if idx <= last {
			t.Fatalf("key %s out of order in:\n%s", key, text)
		}
		last = idx
	}
}

func TestSerialize_RejectsMalformedEntry(t *testing.T) {
	list := model.FieldList{{Fields: []model.Field{{Variant: "Input", Name: "a"}, {Variant: "Input", Name: "b"}}}}
	if _, err := Serialize(list); err == nil {
		t.Fatalf("expected error for ungrouped entry with two fields")
	}
}

func TestHydrate_RequiredScenario(t *testing.T) {
	list, err := HydrateString(`[{"variant":"Input","name":"name_1","label":"Username","required":true}]`)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	want := model.FieldList{model.Single(model.Field{
		Variant:  "Input",
		Name:     "name_1",
		Label:    "Username",
		Value:    model.StringValue(""),
		Checked:  true,
		Required: true,
	})}
	if diff := cmp.Diff(want, list, ignoreBindings); diff != "" {
		t.Fatalf("hydrated list mismatch (-want +got):\n%s", diff)
	}
	if !list[0].Fields[0].Bindings.Attached() {
		t.Fatalf("expected no-op bindings to be attached")
	}
}

func TestHydrate_GroupScenario(t *testing.T) {
	list, err := HydrateString(`[[{"variant":"Input","name":"a","label":"A"},{"variant":"Input","name":"b","label":"B"}]]`)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if len(list) != 1 || !list[0].IsGroup() {
		t.Fatalf("expected a single group, got %#v", list)
	}
	if diff := cmp.Diff([]string{"a", "b"}, model.Names(list)); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{6, 6}, list[0].Spans()); diff != "" {
		t.Fatalf("spans mismatch (-want +got):\n%s", diff)
	}
	for _, field := range list[0].Fields {
		if field.RowIndex != 0 {
			t.Fatalf("expected rowIndex 0 for %s, got %d", field.Name, field.RowIndex)
		}
	}
}

func TestHydrate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		parse    bool
		path     string
		code     string
		contains string
	}{
		{name: "malformed", input: `{not valid`, parse: true},
		{name: "empty", input: ``, parse: true},
		{name: "top level object", input: `{"variant":"Input"}`, path: "", code: CodeInvalidType, contains: "array"},
		{name: "scalar element", input: `[1]`, path: "0", code: CodeInvalidType, contains: "got number"},
		{name: "missing name", input: `[{"variant":"Input","label":"A"}]`, path: "0.name", code: CodeRequired, contains: `"name" is required`},
		{name: "missing variant in group", input: `[{"variant":"Input","name":"a"},[{"name":"b"}]]`, path: "1.0.variant", code: CodeRequired},
		{name: "empty name", input: `[{"variant":"Input","name":""}]`, path: "0.name", code: CodeRequired},
		{name: "numeric name", input: `[{"variant":"Input","name":5}]`, path: "0.name", code: CodeInvalidType},
		{name: "dotted name", input: `[{"variant":"Input","name":"owner.email"}]`, path: "0.name", code: CodeInvalidType, contains: "JavaScript identifier"},
		{name: "hyphenated name in group", input: `[[{"variant":"Input","name":"ok"},{"variant":"Input","name":"first-name"}]]`, path: "0.1.name", code: CodeInvalidType, contains: `"first-name"`},
		{name: "quote in name", input: `[{"variant":"Input","name":"a\"b"}]`, path: "0.name", code: CodeInvalidType},
		{name: "label type", input: `[{"variant":"Input","name":"a","label":3}]`, path: "0.label", code: CodeInvalidType},
		{name: "checked type", input: `[{"variant":"Switch","name":"a","checked":"yes"}]`, path: "0.checked", code: CodeInvalidType},
		{name: "value object", input: `[{"variant":"Input","name":"a","value":{"x":1}}]`, path: "0.value", code: CodeInvalidType},
		{name: "value mixed array", input: `[{"variant":"Tags Input","name":"a","value":["x",1]}]`, path: "0.value", code: CodeInvalidType},
		{name: "fractional row", input: `[{"variant":"Input","name":"a","rowIndex":1.5}]`, path: "0.rowIndex", code: CodeInvalidType},
		{name: "group member scalar", input: `[["x"]]`, path: "0.0", code: CodeInvalidType},
		{name: "duplicate", input: `[{"variant":"Input","name":"a"},[{"variant":"Input","name":"b"},{"variant":"Input","name":"a"}]]`, path: "1.1.name", code: CodeDuplicateKey, contains: "already declared at 0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			list, err := HydrateString(tc.input)
			if err == nil {
				t.Fatalf("expected error, got list %#v", list)
			}
			if list != nil {
				t.Fatalf("expected no partial list, got %#v", list)
			}
			if tc.parse {
				if !IsParseError(err) {
					t.Fatalf("expected parse error, got %v", err)
				}
				if Message(err) != ParseMessage {
					t.Fatalf("unexpected message %q", Message(err))
				}
				return
			}
			var shapeErr *ShapeError
			if !errors.As(err, &shapeErr) {
				t.Fatalf("expected shape error, got %T: %v", err, err)
			}
			if shapeErr.Path != tc.path {
				t.Fatalf("path = %q, want %q", shapeErr.Path, tc.path)
			}
			if shapeErr.Code != tc.code {
				t.Fatalf("code = %q, want %q", shapeErr.Code, tc.code)
			}
			if tc.contains != "" && !strings.Contains(Message(err), tc.contains) {
				t.Fatalf("message %q does not contain %q", Message(err), tc.contains)
			}
		})
	}
}

func TestHydrate_NullMeansAbsent(t *testing.T) {
	list, err := HydrateString(`[{"variant":"Switch","name":"s","label":null,"checked":null,"value":null,"min":null}]`)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	field := list[0].Fields[0]
	if field.Label != "" || !field.Checked || field.Min != nil || !field.Value.Equal(model.StringValue("")) {
		t.Fatalf("expected defaults for null attributes, got %#v", field)
	}
}

func TestHydrate_PreservesExtensions(t *testing.T) {
	input := `[{"variant":"Select","name":"pick","label":"Pick","options":[ {"label":"A","value":"a"} ],"x-meta":{"k" : 1}}]`
	list, err := HydrateString(input)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	ext := list[0].Fields[0].Extensions
	if got := string(ext["options"]); got != `[{"label":"A","value":"a"}]` {
		t.Fatalf("options extension = %s", got)
	}
	if got := string(ext["x-meta"]); got != `{"k":1}` {
		t.Fatalf("x-meta extension = %s", got)
	}

	out, err := Serialize(list)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	again, err := Hydrate(out)
	if err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	if diff := cmp.Diff(list, again, ignoreBindings); diff != "" {
		t.Fatalf("extension round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestHydrate_ValueKinds(t *testing.T) {
	list, err := HydrateString(`[
		{"variant":"Slider","name":"n","value":42.5},
		{"variant":"Checkbox","name":"b","value":true},
		{"variant":"Tags Input","name":"t","value":["x","y"]},
		{"variant":"Input","name":"s","value":"text"}
	]`)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	want := []model.Value{
		model.NumberValue(42.5),
		model.BoolValue(true),
		model.StringsValue("x", "y"),
		model.StringValue("text"),
	}
	fields := model.Flatten(list)
	for i, field := range fields {
		if !field.Value.Equal(want[i]) {
			t.Fatalf("field %s value = %#v, want %#v", field.Name, field.Value, want[i])
		}
		if field.RowIndex != i {
			t.Fatalf("field %s rowIndex = %d, want %d", field.Name, field.RowIndex, i)
		}
	}
}

func TestProperty_RoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("hydrate is the left inverse of serialize", prop.ForAll(
		func(seed int64) bool {
			list := randomList(rand.New(rand.NewSource(seed)))
			data, err := Serialize(list)
			if err != nil {
				t.Logf("serialize: %v", err)
				return false
			}
			got, err := Hydrate(data)
			if err != nil {
				t.Logf("hydrate: %v\n%s", err, data)
				return false
			}
			if diff := cmp.Diff(list, got, ignoreBindings, cmpopts.EquateEmpty()); diff != "" {
				t.Logf("round trip mismatch (-want +got):\n%s", diff)
				return false
			}
			return true
		},
		gen.Int64Range(0, 1<<40),
	))

	properties.TestingRun(t)
}

var sampleText = []string{"", "Username", "Ünïcode ✓", `quote "q" & <tag>`, "line\nbreak", "tab\tstop"}

func randomList(r *rand.Rand) model.FieldList {
	entries := r.Intn(6)
	list := make(model.FieldList, 0, entries)
	counter := 0
	nextField := func(row int) model.Field {
		counter++
		field := model.Field{
			Variant:     []string{"Input", "Slider", "Checkbox", "Tags Input", "Mystery"}[r.Intn(5)],
			Name:        fmt.Sprintf("name_%d", counter),
			Label:       sampleText[r.Intn(len(sampleText))],
			Description: sampleText[r.Intn(len(sampleText))],
			Placeholder: sampleText[r.Intn(len(sampleText))],
			Checked:     r.Intn(2) == 0,
			Disabled:    r.Intn(2) == 0,
			Required:    r.Intn(2) == 0,
			RowIndex:    row,
			Bindings:    model.NoopBindings(),
		}
		switch r.Intn(4) {
		case 0:
			field.Value = model.StringValue(sampleText[r.Intn(len(sampleText))])
		case 1:
			field.Value = model.BoolValue(r.Intn(2) == 0)
		case 2:
			field.Value = model.NumberValue(float64(r.Intn(4000)-2000) / 8)
		default:
			field.Value = model.StringsValue(sampleText[:r.Intn(len(sampleText))]...)
		}
		if r.Intn(2) == 0 {
			field.Type = []string{"text", "email", "number"}[r.Intn(3)]
		}
		if r.Intn(3) == 0 {
			field.Min = model.Float(float64(r.Intn(10)))
			field.Max = model.Float(float64(10 + r.Intn(90)))
			field.Step = model.Float(0.5)
		}
		if r.Intn(4) == 0 {
			field.Locale = "en-US"
			field.Hour12 = model.Bool(r.Intn(2) == 0)
		}
		if r.Intn(4) == 0 {
			field.ClassName = "col-span-4"
		}
		if r.Intn(3) == 0 {
			field.Extensions = map[string]json.RawMessage{
				"x-meta":  json.RawMessage(`{"k":[1,2,"three"]}`),
				"options": json.RawMessage(`["a","b"]`),
			}
		}
		return field
	}

	for i := 0; i < entries; i++ {
		if r.Intn(3) == 0 {
			size := 1 + r.Intn(4)
			fields := make([]model.Field, size)
			for j := range fields {
				fields[j] = nextField(i)
			}
			list = append(list, model.Group(fields...))
			continue
		}
		list = append(list, model.Single(nextField(r.Intn(entries))))
	}
	return list
}
