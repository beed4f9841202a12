package render

import (
	"fmt"
	"html"
	"maps"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// Preview renders list as an HTML form: one item per field, group rows on a
// twelve column grid, form-level messages and a submit button. The form
// markup passes through Policy before it is wrapped in the themed
// container, so user text can never inject markup.
func Preview(list model.FieldList, opts PreviewOptions) ([]byte, error) {
	cfg, err := ResolveTheme(opts)
	if err != nil {
		return nil, err
	}

	table := opts.table()
	reg := opts.registry()
	list = LocalizeFieldList(list, opts.Locale, opts.Translator, opts.OnMissing)

	values := schema.DeriveDefaults(list, schema.WithTable(table))
	if values == nil {
		values = make(map[string]any, len(opts.Values))
	}
	maps.Copy(values, opts.Values)
	mapping := MapErrorPayload(list, opts.Errors).Merge(MapIssues(list, opts.Issues))

	var form strings.Builder
	form.WriteString(`<form class="fb-form" novalidate>`)
	if len(mapping.Form) > 0 {
		form.WriteString(`<div class="fb-form-errors" role="alert">`)
		for _, msg := range mapping.Form {
			form.WriteString(el("p", []attr{a("class", "fb-message")}, text(msg)))
		}
		form.WriteString(`</div>`)
	}
	for _, hidden := range SortedHiddenFields(MergeHiddenFields(nil, opts.Hidden...)) {
		form.WriteString(open("input", a("type", "hidden"), a("name", hidden.Name), a("value", hidden.Value)))
	}
	for _, entry := range list {
		form.WriteString(entryHTML(reg, entry, values, mapping.Fields))
	}

	submit := opts.SubmitLabel
	if submit == "" {
		submit = DefaultSubmitLabel
	}
	submit = translate(opts.Locale, SubmitKey, submit, opts.Translator, opts.OnMissing)
	form.WriteString(el("button", []attr{a("type", "submit"), a("class", "fb-button fb-submit")}, text(submit)))
	form.WriteString(`</form>`)

	var doc strings.Builder
	doc.WriteString(`<div class="fb-preview"`)
	if cfg != nil {
		writeThemeAttrs(&doc, cfg)
	}
	doc.WriteString(`>`)
	if href := stylesheet(cfg); href != "" {
		doc.WriteString(`<link rel="stylesheet" href="` + html.EscapeString(href) + `">`)
	}
	doc.WriteString(Policy().Sanitize(form.String()))
	doc.WriteString(`</div>`)
	return []byte(doc.String()), nil
}

func entryHTML(reg *Registry, entry model.Entry, values map[string]any, errs map[string][]string) string {
	if len(entry.Fields) == 0 {
		return ""
	}
	if !entry.Grouped {
		field := entry.Fields[0]
		return RenderControl(reg, field, BindingFor(field, values[field.Name], errs[field.Name])).HTML
	}

	spans := entry.Spans()
	var b strings.Builder
	b.WriteString(`<div class="grid grid-cols-` + strconv.Itoa(model.GridColumns) + ` gap-4">`)
	for i, field := range entry.Fields {
		result := RenderControl(reg, field, BindingFor(field, values[field.Name], errs[field.Name]))
		b.WriteString(`<div class="col-span-` + strconv.Itoa(spans[i]) + `">`)
		b.WriteString(result.HTML)
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// ResolveTheme returns the theme configuration for opts: the explicit
// Theme, else the selector's choice, else nil.
func ResolveTheme(opts PreviewOptions) (*theme.RendererConfig, error) {
	if opts.Theme != nil {
		return opts.Theme, nil
	}
	if opts.ThemeSelector == nil {
		return nil, nil
	}
	selection, err := opts.ThemeSelector.Select(opts.ThemeName, opts.ThemeVariant)
	if err != nil {
		return nil, fmt.Errorf("render: select theme %q: %w", opts.ThemeName, err)
	}
	return RendererConfig(selection), nil
}

// RendererConfig flattens a theme selection: variant tokens override the
// manifest's, every token becomes a "--token" CSS variable and asset keys
// resolve against the manifest prefix.
func RendererConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil {
		return nil
	}
	cfg := &theme.RendererConfig{
		Theme:   selection.Theme,
		Variant: selection.Variant,
	}
	manifest := selection.Manifest
	if manifest == nil {
		return cfg
	}

	tokens := maps.Clone(manifest.Tokens)
	files := maps.Clone(manifest.Assets.Files)
	prefix := manifest.Assets.Prefix
	if variant, ok := manifest.Variants[selection.Variant]; ok {
		if tokens == nil && len(variant.Tokens) > 0 {
			tokens = make(map[string]string, len(variant.Tokens))
		}
		maps.Copy(tokens, variant.Tokens)
		if files == nil && len(variant.Assets.Files) > 0 {
			files = make(map[string]string, len(variant.Assets.Files))
		}
		maps.Copy(files, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	cfg.Tokens = tokens
	if len(tokens) > 0 {
		cfg.CSSVars = make(map[string]string, len(tokens))
		for key, value := range tokens {
			cfg.CSSVars["--"+key] = value
		}
	}
	cfg.AssetURL = func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if prefix == "" || strings.Contains(file, "://") || strings.HasPrefix(file, "/") {
			return file
		}
		return strings.TrimRight(prefix, "/") + "/" + file
	}
	return cfg
}

func writeThemeAttrs(b *strings.Builder, cfg *theme.RendererConfig) {
	if cfg.Theme != "" {
		b.WriteString(` data-theme="` + html.EscapeString(cfg.Theme) + `"`)
	}
	if cfg.Variant != "" {
		b.WriteString(` data-theme-variant="` + html.EscapeString(cfg.Variant) + `"`)
	}
	if style := cssVarsStyle(cfg.CSSVars); style != "" {
		b.WriteString(` style="` + html.EscapeString(style) + `"`)
	}
}

func stylesheet(cfg *theme.RendererConfig) string {
	if cfg == nil || cfg.AssetURL == nil {
		return ""
	}
	href := strings.TrimSpace(cfg.AssetURL(StylesheetAsset))
	if strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}
	return href
}
