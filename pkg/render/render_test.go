package render_test

import (
	"errors"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/variants"
)

func TestDefaultRegistryCoversBuiltinVariants(t *testing.T) {
	reg := render.NewDefaultRegistry()
	for _, name := range variants.Default().Names() {
		if !reg.Has(name) {
			t.Errorf("no control renderer for %q", name)
		}
	}
	if got, want := len(reg.Names()), len(variants.Default().Names()); got != want {
		t.Fatalf("expected %d renderers, got %d", want, got)
	}
	if !reg.Has("  date picker ") {
		t.Fatalf("lookup should ignore case and surrounding space")
	}
}

func TestRegistry_RegisterAndClone(t *testing.T) {
	reg := render.NewRegistry()
	stub := func(model.Field, render.Binding) (render.Node, error) { return "<p>stub</p>", nil }

	if err := reg.Register("Holo Deck", stub); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("holo deck", stub); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := reg.Register(" ", stub); err == nil {
		t.Fatalf("expected empty variant to fail")
	}
	if err := reg.Register("Other", nil); err == nil {
		t.Fatalf("expected nil renderer to fail")
	}

	clone := reg.Clone()
	clone.MustRegister("Other", stub)
	if reg.Has("Other") {
		t.Fatalf("clone registration leaked into the original")
	}
	if !clone.Has("Holo Deck") {
		t.Fatalf("clone lost existing renderers")
	}
}

func TestRenderControl_UnsupportedVariant(t *testing.T) {
	field := model.Field{Variant: "Holo Deck", Name: "mystery", Label: "Mystery"}

	result := render.RenderControl(nil, field, render.Binding{})

	if !result.Unsupported {
		t.Fatalf("expected unsupported marker")
	}
	if result.Err != nil {
		t.Fatalf("missing renderer is not an error: %v", result.Err)
	}
	for _, want := range []string{
		`data-unsupported="Holo Deck"`,
		`Unsupported field type: &#34;Holo Deck&#34;`,
		render.UnsupportedDetail,
	} {
		if !strings.Contains(result.HTML, want) {
			t.Fatalf("expected %q in %s", want, result.HTML)
		}
	}
}

func TestRenderControl_FailingRendererDegrades(t *testing.T) {
	reg := render.NewRegistry()
	reg.MustRegister("Broken", func(model.Field, render.Binding) (render.Node, error) {
		return "", errors.New("boom")
	})
	reg.MustRegister("Panicky", func(model.Field, render.Binding) (render.Node, error) {
		panic("kaboom")
	})

	for _, variant := range []string{"Broken", "Panicky"} {
		t.Run(variant, func(t *testing.T) {
			result := render.RenderControl(reg, model.Field{Variant: variant, Name: "x"}, render.Binding{})
			if !result.Unsupported || result.Err == nil {
				t.Fatalf("expected degraded result with error, got %+v", result)
			}
			if !strings.Contains(result.HTML, "fb-unsupported") {
				t.Fatalf("expected unsupported marker, got %s", result.HTML)
			}
		})
	}
}

func TestRenderControl_ShowsLiveValue(t *testing.T) {
	field := model.Field{
		Variant: variants.Input,
		Name:    "name_1",
		Label:   "Username",
		Value:   model.StringValue("static"),
	}

	live := render.RenderControl(nil, field, render.Binding{Value: "live"})
	if !strings.Contains(live.HTML, `value="live"`) || strings.Contains(live.HTML, "static") {
		t.Fatalf("expected live value only, got %s", live.HTML)
	}

	fallback := render.RenderControl(nil, field, render.Binding{})
	if !strings.Contains(fallback.HTML, `value="static"`) {
		t.Fatalf("expected descriptor value without a live one, got %s", fallback.HTML)
	}
}

func TestRenderControl_Controls(t *testing.T) {
	cases := []struct {
		name    string
		field   model.Field
		binding render.Binding
		want    []string
		absent  []string
	}{
		{
			name:    "checkbox checked",
			field:   model.Field{Variant: variants.Checkbox, Name: "terms", Label: "Accept"},
			binding: render.Binding{Value: true},
			want:    []string{`type="checkbox"`, " checked", "fb-item-inline"},
		},
		{
			name:    "checkbox unchecked",
			field:   model.Field{Variant: variants.Checkbox, Name: "terms", Label: "Accept"},
			binding: render.Binding{Value: false},
			absent:  []string{" checked"},
		},
		{
			name:    "switch",
			field:   model.Field{Variant: variants.Switch, Name: "notify"},
			binding: render.Binding{Value: true},
			want:    []string{`role="switch"`, `aria-checked="true"`},
		},
		{
			name:    "select marks the live option",
			field:   model.Field{Variant: variants.Select, Name: "email", Placeholder: "Pick one"},
			binding: render.Binding{Value: "m@google.com"},
			want:    []string{`<option value="m@google.com" selected>`, "Pick one"},
		},
		{
			name:    "number input bounds",
			field:   model.Field{Variant: variants.Input, Type: "number", Name: "age", Min: model.Float(18), Max: model.Float(99), Step: model.Float(1)},
			binding: render.Binding{Value: 21.0},
			want:    []string{`type="number"`, `min="18"`, `max="99"`, `step="1"`, `value="21"`},
		},
		{
			name:    "slider default bounds",
			field:   model.Field{Variant: variants.Slider, Name: "budget"},
			binding: render.Binding{Value: 40.0},
			want:    []string{`type="range"`, `min="0"`, `max="100"`, `value="40"`},
		},
		{
			name:    "otp slots",
			field:   model.Field{Variant: variants.InputOTP, Name: "otp"},
			binding: render.Binding{Value: "12"},
			want:    []string{`data-length="6"`, `aria-label="Digit 6"`, `value="1"`, `value="2"`},
		},
		{
			name:    "rating stars",
			field:   model.Field{Variant: variants.Rating, Name: "stars"},
			binding: render.Binding{Value: 3.0},
			want:    []string{`aria-label="5 of 5"`, `data-value="3" data-filled="true" aria-checked="true"`},
		},
		{
			name:    "multi select",
			field:   model.Field{Variant: variants.MultiSelect, Name: "fw"},
			binding: render.Binding{Value: []string{"vue", "svelte"}},
			want:    []string{" multiple", `<option value="vue" selected>`, `<option value="svelte" selected>`, `<option value="react">`},
		},
		{
			name:    "radio group",
			field:   model.Field{Variant: variants.RadioGroup, Name: "gender"},
			binding: render.Binding{Value: "other"},
			want:    []string{`role="radiogroup"`, `value="other" class="fb-radio" checked`},
		},
		{
			name:    "tags input",
			field:   model.Field{Variant: variants.TagsInput, Name: "stack"},
			binding: render.Binding{Value: []string{"go", "react"}},
			want:    []string{`<span class="fb-tag">go</span>`, `name="stack" value="react"`},
		},
		{
			name:    "date picker normalises timestamps",
			field:   model.Field{Variant: variants.DatePicker, Name: "dob"},
			binding: render.Binding{Value: "2024-03-05T10:00:00Z"},
			want:    []string{`type="date"`, `value="2024-03-05"`},
		},
		{
			name:    "datetime locale passthrough",
			field:   model.Field{Variant: variants.DatetimePicker, Name: "when", Locale: "en-GB", Hour12: model.Bool(false)},
			binding: render.Binding{Value: "2024-03-05"},
			want:    []string{`type="datetime-local"`, `value="2024-03-05T00:00"`, `data-locale="en-GB"`, `data-hour12="false"`},
		},
		{
			name:    "location input reveals states",
			field:   model.Field{Variant: variants.LocationInput, Name: "where"},
			binding: render.Binding{Value: []string{"Canada", "Quebec"}},
			want:    []string{`<option value="Canada" selected>`, `<option value="Quebec" selected>`, `data-part="state"`},
		},
		{
			name:    "disabled and required",
			field:   model.Field{Variant: variants.Textarea, Name: "bio", Label: "Bio", Disabled: true, Required: true},
			binding: render.Binding{Value: "hello"},
			want:    []string{" disabled", " required", `class="fb-required"`, ">hello</textarea>"},
		},
		{
			name:    "errors",
			field:   model.Field{Variant: variants.Password, Name: "secret", Description: "Keep it safe"},
			binding: render.Binding{Errors: []string{"Password is required", " Password is required "}},
			want:    []string{`aria-invalid="true"`, `aria-describedby="fb-secret-description fb-secret-message"`, `role="alert"`, "Password is required"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			binding := render.BindingFor(tc.field, tc.binding.Value, tc.binding.Errors)
			result := render.RenderControl(nil, tc.field, binding)
			if result.Unsupported {
				t.Fatalf("unexpected unsupported marker: %v", result.Err)
			}
			for _, want := range tc.want {
				if !strings.Contains(result.HTML, want) {
					t.Errorf("expected %q in\n%s", want, result.HTML)
				}
			}
			for _, absent := range tc.absent {
				if strings.Contains(result.HTML, absent) {
					t.Errorf("did not expect %q in\n%s", absent, result.HTML)
				}
			}
		})
	}
}

func TestRenderControl_EscapesUserText(t *testing.T) {
	field := model.Field{
		Variant:     variants.Input,
		Name:        "name_1",
		Label:       `<script>alert(1)</script>Tom & Jerry`,
		Description: `<b>bold</b> "quoted"`,
		Placeholder: `"><img src=x onerror=alert(1)>`,
	}

	result := render.RenderControl(nil, field, render.Binding{})

	for _, bad := range []string{"<script", "<b>", "<img", "onerror"} {
		if strings.Contains(result.HTML, bad) {
			t.Fatalf("user text leaked %q into %s", bad, result.HTML)
		}
	}
	if !strings.Contains(result.HTML, "Tom &amp; Jerry") {
		t.Fatalf("expected escaped label, got %s", result.HTML)
	}
}

func TestBindingForCarriesCallbacks(t *testing.T) {
	var changed any
	field := model.Field{Variant: variants.Input, Name: "x", Bindings: model.Bindings{
		OnChange: func(v any) { changed = v },
		OnSelect: func(any) {},
		SetValue: func(any) {},
	}}

	binding := render.BindingFor(field, "v", []string{" ", "bad"})
	binding.OnChange("typed")

	if changed != "typed" {
		t.Fatalf("expected OnChange to reach the field binding")
	}
	if binding.SetValue == nil || binding.OnSelect == nil {
		t.Fatalf("expected callbacks to be carried")
	}
	if len(binding.Errors) != 1 || !binding.Invalid() {
		t.Fatalf("expected blank messages dropped, got %v", binding.Errors)
	}
}

func previewList() model.FieldList {
	return model.FieldList{
		model.Single(model.Field{Variant: variants.Input, Name: "username", Label: "Username", Required: true}),
		model.Group(
			model.Field{Variant: variants.Select, Name: "plan", Label: "Plan"},
			model.Field{Variant: variants.Combobox, Name: "language", Label: "Language"},
		),
		model.Group(
			model.Field{Variant: variants.DatePicker, Name: "start", Label: "Start"},
			model.Field{Variant: variants.Slider, Name: "budget", Label: "Budget"},
			model.Field{Variant: variants.Switch, Name: "notify", Label: "Notify"},
		),
		model.Single(model.Field{Variant: "Holo Deck", Name: "mystery"}),
	}
}

func TestPreview_LayoutAndChrome(t *testing.T) {
	out, err := render.Preview(previewList(), render.PreviewOptions{
		Values: map[string]any{"username": "ada"},
		Hidden: []render.HiddenField{render.Hidden("formLibrary", "tanstack-form")},
	})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	html := string(out)

	if got := strings.Count(html, `class="grid grid-cols-12 gap-4"`); got != 2 {
		t.Fatalf("expected 2 grid rows, got %d", got)
	}
	if got := strings.Count(html, `class="col-span-6"`); got != 2 {
		t.Fatalf("expected 2 half columns, got %d", got)
	}
	if got := strings.Count(html, `class="col-span-4"`); got != 3 {
		t.Fatalf("expected 3 third columns, got %d", got)
	}
	for _, want := range []string{
		`<div class="fb-preview">`,
		`<form class="fb-form" novalidate="">`,
		`<input type="hidden" name="formLibrary" value="tanstack-form">`,
		`value="ada"`,
		`data-unsupported="Holo Deck"`,
		`<button type="submit" class="fb-button fb-submit">Submit</button>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in preview", want)
		}
	}
	if strings.Index(html, `name="username"`) > strings.Index(html, `name="plan"`) {
		t.Fatalf("entries rendered out of order")
	}
}

func TestPreview_ValidationFeedback(t *testing.T) {
	list := previewList()
	result := schema.Validate(schema.DeriveValidation(list), map[string]any{"username": ""})
	if result.Valid {
		t.Fatalf("expected invalid values")
	}

	out, err := render.Preview(list, render.PreviewOptions{
		Issues: result.Issues,
		Errors: map[string][]string{"__all__": {"Server rejected the form"}},
	})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	html := string(out)

	for _, want := range []string{
		`class="fb-form-errors" role="alert"`,
		"Server rejected the form",
		"Username is required",
		`aria-invalid="true"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in preview", want)
		}
	}
}

func TestPreview_SanitizesUserText(t *testing.T) {
	list := model.FieldList{
		model.Single(model.Field{
			Variant:   variants.Input,
			Name:      "x",
			Label:     `<img src=x onerror=alert(1)>Name`,
			ClassName: `a" onclick="alert(1)`,
		}),
	}

	out, err := render.Preview(list, render.PreviewOptions{})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	html := string(out)
	for _, bad := range []string{"<img", "onerror", `onclick="`} {
		if strings.Contains(html, bad) {
			t.Fatalf("preview leaked %q: %s", bad, html)
		}
	}
}

func TestPreview_ThemeConfig(t *testing.T) {
	out, err := render.Preview(previewList(), render.PreviewOptions{
		Theme: &theme.RendererConfig{
			Theme:   "acme",
			Variant: "dark",
			CSSVars: map[string]string{
				"--brand":  "#123456",
				"--radius": "4px",
				"--bad":    "red; background: url(x)",
				"color":    "red",
			},
			AssetURL: func(key string) string {
				if key == render.StylesheetAsset {
					return "/themes/acme/preview.css"
				}
				return ""
			},
		},
	})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	html := string(out)

	for _, want := range []string{
		`data-theme="acme"`,
		`data-theme-variant="dark"`,
		`style="--brand: #123456; --radius: 4px"`,
		`<link rel="stylesheet" href="/themes/acme/preview.css">`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in preview", want)
		}
	}
	if strings.Contains(html, "--bad") {
		t.Fatalf("unsafe css var rendered")
	}
}

func TestPreview_ThemeSelector(t *testing.T) {
	selector := &stubThemeSelector{selection: &theme.Selection{
		Theme:   "acme",
		Variant: "dark",
		Manifest: &theme.Manifest{
			Name:    "acme",
			Version: "1.0.0",
			Tokens:  map[string]string{"brand": "#123456", "radius": "4px"},
			Assets: theme.Assets{
				Prefix: "/assets/themes/acme",
				Files:  map[string]string{render.StylesheetAsset: "preview.css"},
			},
			Variants: map[string]theme.Variant{
				"dark": {Tokens: map[string]string{"brand": "#654321"}},
			},
		},
	}}

	out, err := render.Preview(previewList(), render.PreviewOptions{
		ThemeSelector: selector,
		ThemeName:     "acme",
		ThemeVariant:  "dark",
	})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	html := string(out)

	if len(selector.calls) != 1 || selector.calls[0] != "acme/dark" {
		t.Fatalf("unexpected selector calls: %v", selector.calls)
	}
	if !strings.Contains(html, `style="--brand: #654321; --radius: 4px"`) {
		t.Fatalf("expected variant tokens to win, got %s", html)
	}
	if !strings.Contains(html, `href="/assets/themes/acme/preview.css"`) {
		t.Fatalf("expected stylesheet resolved against the prefix")
	}

	selector.err = errors.New("unknown theme")
	if _, err := render.Preview(previewList(), render.PreviewOptions{ThemeSelector: selector, ThemeName: "nope"}); err == nil {
		t.Fatalf("expected selector failure to surface")
	}
}

func TestPreview_TranslatesChrome(t *testing.T) {
	out, err := render.Preview(previewList(), render.PreviewOptions{
		Locale:     "es",
		Translator: stubTranslator{render.SubmitKey: "Enviar"},
	})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !strings.Contains(string(out), ">Enviar</button>") {
		t.Fatalf("expected translated submit label")
	}
}

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     []string
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, name+"/"+variant)
	if s.err != nil {
		return nil, s.err
	}
	return s.selection, nil
}
