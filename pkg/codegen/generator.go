// Package codegen turns a field list into the source of a React form
// component for one of several form libraries. Targets share the schema
// derivation of pkg/schema, so the zod schema in generated code applies the
// same rules as the live preview. Unknown variants degrade to a marked
// placeholder and never fail the whole document.
package codegen

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render/template"
	"github.com/goliatone/go-formbuilder/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/variants"
)

// DefaultComponentName names the generated component when no option
// overrides it.
const DefaultComponentName = "MyForm"

// Option configures a Generator.
type Option func(*Generator)

// WithComponentName sets the exported component name. Invalid characters are
// replaced so the result is always an identifier.
func WithComponentName(name string) Option {
	return func(g *Generator) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			g.component = jsIdent(trimmed)
		}
	}
}

// WithFormatter replaces Format. A nil formatter leaves output untouched.
func WithFormatter(formatter Formatter) Option {
	return func(g *Generator) {
		g.format = formatter
	}
}

// WithTemplateRenderer renders skeletons with renderer instead of the
// embedded pongo2 templates. The renderer must know every target's
// templates.
func WithTemplateRenderer(renderer template.TemplateRenderer) Option {
	return func(g *Generator) {
		if renderer != nil {
			g.renderer = renderer
		}
	}
}

// WithTargets replaces the built-in target registry.
func WithTargets(targets *Registry) Option {
	return func(g *Generator) {
		if targets != nil {
			g.targets = targets
		}
	}
}

// WithVariantTable derives rules, defaults and options from table.
func WithVariantTable(table *variants.Table) Option {
	return func(g *Generator) {
		if table != nil {
			g.table = table
		}
	}
}

// WithSnippets replaces the built-in control snippets.
func WithSnippets(snippets *Snippets) Option {
	return func(g *Generator) {
		if snippets != nil {
			g.snippets = snippets
		}
	}
}

// WithLogger reports degraded fields to logger.
func WithLogger(logger *log.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Generator produces form source for registered targets. It is safe for
// concurrent use.
type Generator struct {
	targets   *Registry
	table     *variants.Table
	snippets  *Snippets
	renderer  template.TemplateRenderer
	format    Formatter
	component string
	logger    *log.Logger
}

// New builds a Generator. Without WithTemplateRenderer it loads the embedded
// templates into a pongo2 engine.
func New(opts ...Option) (*Generator, error) {
	g := &Generator{
		targets:   DefaultRegistry(),
		table:     variants.Default(),
		snippets:  DefaultSnippets(),
		format:    Format,
		component: DefaultComponentName,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	if g.renderer == nil {
		engine, err := NewTemplateEngine()
		if err != nil {
			return nil, err
		}
		g.renderer = engine
	} else if err := registerFilters(g.renderer); err != nil {
		return nil, err
	}
	return g, nil
}

// NewTemplateEngine returns a pongo2 engine over the embedded templates with
// the escaping filters the templates use.
func NewTemplateEngine() (*gotemplate.Engine, error) {
	engine, err := gotemplate.New(
		gotemplate.WithName("codegen"),
		gotemplate.WithFS(Templates()),
		gotemplate.WithBlockTrimming(),
		gotemplate.WithFilter("jsstring", stringFilter(jsString)),
		gotemplate.WithFilter("jsxtext", stringFilter(jsxText)),
		gotemplate.WithFilter("jsxattr", stringFilter(jsxAttr)),
	)
	if err != nil {
		return nil, fmt.Errorf("codegen: template engine: %w", err)
	}
	return engine, nil
}

func registerFilters(renderer template.TemplateRenderer) error {
	filters := map[string]func(string) string{
		"jsstring": jsString,
		"jsxtext":  jsxText,
		"jsxattr":  jsxAttr,
	}
	for name, fn := range filters {
		err := renderer.RegisterFilter(name, stringFilter(fn))
		if err != nil && !errors.Is(err, gotemplate.ErrFilterExists) {
			return fmt.Errorf("codegen: register filter %q: %w", name, err)
		}
	}
	return nil
}

func stringFilter(fn func(string) string) template.FilterFunc {
	return func(input any, _ any) (any, error) {
		if input == nil {
			return fn(""), nil
		}
		if s, ok := input.(string); ok {
			return fn(s), nil
		}
		return fn(fmt.Sprint(input)), nil
	}
}

var defaultGenerator = sync.OnceValues(func() (*Generator, error) {
	return New()
})

// Generate renders list for target with the default generator.
func Generate(list model.FieldList, target string) (string, error) {
	g, err := defaultGenerator()
	if err != nil {
		return "", err
	}
	return g.Generate(list, target)
}

// Targets returns the registry used by the generator.
func (g *Generator) Targets() *Registry {
	return g.targets
}

// Generate renders list for target. The only failure for a list that
// hydrated successfully is an unknown target.
func (g *Generator) Generate(list model.FieldList, target string) (string, error) {
	t, err := g.targets.Get(target)
	if err != nil {
		return "", err
	}

	spec := schema.DeriveValidation(list, schema.WithTable(g.table))
	defaults := schema.DeriveDefaults(list, schema.WithTable(g.table))

	doc := newDocument(t)
	for _, entry := range list {
		block, err := g.entryBlock(doc, t, entry)
		if err != nil {
			return "", err
		}
		if block != "" {
			doc.blocks = append(doc.blocks, block)
		}
	}

	data := map[string]any{
		"component":    g.component,
		"imports":      strings.Join(doc.imports.lines(), "\n"),
		"declarations": doc.declarations,
		"hooks":        doc.hooks,
		"schema":       zodEntries(spec),
		"defaults":     defaultEntries(spec, defaults),
		"blocks":       doc.blocks,
	}
	out, err := g.renderer.RenderTemplate(t.Skeleton, data)
	if err != nil {
		return "", fmt.Errorf("codegen: render %s: %w", t.ID, err)
	}
	if g.format != nil {
		out = g.format(out)
	}
	return out, nil
}

// GenerateTo writes the source generated for list and target to w.
func (g *Generator) GenerateTo(w io.Writer, list model.FieldList, target string) error {
	out, err := g.Generate(list, target)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

type document struct {
	imports      *importSet
	ids          *identifiers
	declarations []string
	hooks        []string
	blocks       []string
	seen         map[string]struct{}
}

func newDocument(t Target) *document {
	doc := &document{
		imports: newImportSet(),
		ids:     newIdentifiers("form", "formSchema", "values", "errors"),
		seen:    make(map[string]struct{}),
	}
	doc.imports.add(t.Imports...)
	return doc
}

func (d *document) addOnce(dst *[]string, items []string) {
	for _, item := range items {
		if _, ok := d.seen[item]; ok {
			continue
		}
		d.seen[item] = struct{}{}
		*dst = append(*dst, item)
	}
}

func (g *Generator) entryBlock(doc *document, t Target, entry model.Entry) (string, error) {
	if len(entry.Fields) == 0 {
		return "", nil
	}
	if !entry.Grouped {
		return g.fieldBlock(doc, t, entry.Fields[0])
	}

	spans := entry.Spans()
	var b strings.Builder
	fmt.Fprintf(&b, "<div className=\"grid grid-cols-%d gap-4\">\n", model.GridColumns)
	for i, field := range entry.Fields {
		block, err := g.fieldBlock(doc, t, field)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "  <div className=\"col-span-%d\">\n", spans[i])
		b.WriteString(gotemplate.Indent(block, 4))
		b.WriteString("\n  </div>\n")
	}
	b.WriteString("</div>")
	return b.String(), nil
}

func (g *Generator) fieldBlock(doc *document, t Target, field model.Field) (string, error) {
	snippet, ok := g.snippets.Lookup(field.Variant)
	if !ok {
		return placeholder(field.Variant), nil
	}

	ctx := SnippetContext{
		Field:      field,
		Ident:      doc.ids.next(field.Name, ""),
		Binding:    t.Bind(field.Name),
		Options:    g.table.OptionsFor(field),
		Constraint: g.table.Constraint(field),
	}
	control, ok := g.runSnippet(snippet, ctx)
	if !ok {
		return placeholder(field.Variant), nil
	}

	doc.imports.add(control.Imports...)
	doc.addOnce(&doc.declarations, control.Declarations)
	doc.addOnce(&doc.hooks, control.Hooks)

	block, err := g.renderer.RenderTemplate(t.Field, map[string]any{
		"name":        field.Name,
		"label":       field.Label,
		"description": field.Description,
		"markup":      control.Markup,
		"inline":      control.Inline,
	})
	if err != nil {
		return "", fmt.Errorf("codegen: render field %q: %w", field.Name, err)
	}
	return strings.TrimRight(block, "\n"), nil
}

// runSnippet shields the document from a misbehaving snippet: the field
// degrades to a placeholder instead.
func (g *Generator) runSnippet(snippet Snippet, ctx SnippetContext) (control Control, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Printf("codegen: snippet for %q failed on field %q: %v", ctx.Field.Variant, ctx.Field.Name, r)
			control, ok = Control{}, false
		}
	}()
	return snippet(ctx), true
}

// PlaceholderPrefix starts the comment emitted for unsupported variants.
const PlaceholderPrefix = "Unsupported field type: "

func placeholder(variant string) string {
	return "{/* " + jsComment(PlaceholderPrefix+jsString(variant)) + " */}"
}

func defaultEntries(spec schema.Spec, defaults map[string]any) []string {
	out := make([]string, 0, len(spec.Rules))
	seen := make(map[string]struct{}, len(spec.Rules))
	for _, rule := range spec.Rules {
		if _, ok := seen[rule.Name]; ok {
			continue
		}
		seen[rule.Name] = struct{}{}
		out = append(out, propertyKey(rule.Name)+": "+jsLiteral(defaults[rule.Name])+",")
	}
	return out
}
