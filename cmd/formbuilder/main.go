package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/internal/config"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/codegen"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/preference"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/variants"
)

const usage = `Usage: %s <command> [flags]

Commands:
  generate   print the form component for a form JSON document
  review     print the JSON, code and preview of a form JSON document
  schema     print the OpenAPI validation schema of a form JSON document
  defaults   print the initial values of a form JSON document
  variants   list the field palette
  import     convert an OpenAPI object schema into form JSON
  build      compose a form interactively
  fill       fill a form interactively and print the values

Run '%s <command> -h' for command flags.
`

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// cli holds the process streams so commands can run under test.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) (string, bool)
	// driver answers prompts; a survey driver on the terminal when nil.
	driver tui.PromptDriver
	logger *log.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := &cli{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		getenv: os.LookupEnv,
	}
	os.Exit(c.run(ctx, os.Args[1:]))
}

func (c *cli) run(ctx context.Context, args []string) int {
	if c.logger == nil {
		c.logger = log.New(c.stderr, "", 0)
	}
	name := filepath.Base(os.Args[0])
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprintf(c.stderr, usage, name, name)
		if len(args) == 0 {
			return exitUsage
		}
		return exitOK
	}

	commands := map[string]func(context.Context, *options) error{
		"generate": c.generate,
		"review":   c.review,
		"schema":   c.schema,
		"defaults": c.defaults,
		"variants": c.variants,
		"build":    c.build,
		"fill":     c.fill,
		"import":   c.importOpenAPI,
	}
	command, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(c.stderr, "unknown command %q\n\n", args[0])
		fmt.Fprintf(c.stderr, usage, name, name)
		return exitUsage
	}

	opts, err := c.parseFlags(args[0], args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		return exitUsage
	}

	if err := command(ctx, opts); err != nil {
		var invalid *tui.ValidationError
		switch {
		case errors.As(err, &invalid):
			for _, issue := range invalid.Issues {
				fmt.Fprintf(c.stderr, "%s: %s\n", issue.Field, issue.Message)
			}
		case errors.Is(err, tui.ErrAborted):
			fmt.Fprintln(c.stderr, "aborted")
		default:
			fmt.Fprintln(c.stderr, builder.Message(err))
		}
		return exitFailure
	}
	return exitOK
}

// options are the flags shared by every command.
type options struct {
	cfg    *config.Config
	in     string
	out    string
	target string
	view   string
	title  string
	format string
	// schema and operation select the object schema for import.
	schema    string
	operation string
}

func (c *cli) parseFlags(command string, args []string) (*options, error) {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(c.stderr)

	var (
		configFlag = fs.String("config", "", "Configuration file (.yaml, .yml or .json)")
		inFlag     = fs.String("in", "-", "Form JSON file, '-' for stdin")
		outFlag    = fs.String("out", "", "Output file (stdout when empty)")
		targetFlag = fs.String("target", "", "Form library: react-hook-form, tanstack-form or bring-your-own")
		viewFlag   = fs.String("view", "all", "review/build output: all, json, code, preview or schema")
		titleFlag  = fs.String("title", "", "Title of the OpenAPI document")
		formatFlag = fs.String("format", string(tui.OutputFormatJSON), "fill output: json, form or pretty")
		schemaFlag = fs.String("schema", "", "import: component schema name")
		opFlag     = fs.String("operation", "", "import: operationId whose request body to use")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return nil, err
	}
	if err := config.ApplyEnv(cfg, c.getenv); err != nil {
		fmt.Fprintln(c.stderr, err)
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(c.stderr, err)
		return nil, err
	}

	return &options{
		cfg:       cfg,
		in:        *inFlag,
		out:       *outFlag,
		target:    *targetFlag,
		view:      *viewFlag,
		title:     *titleFlag,
		format:    *formatFlag,
		schema:    *schemaFlag,
		operation: *opFlag,
	}, nil
}

func (o *options) resolvedTarget() string {
	if strings.TrimSpace(o.target) != "" {
		return o.target
	}
	return o.cfg.Codegen.Target
}

func (c *cli) readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(c.stdin)
	}
	return os.ReadFile(path)
}

func (c *cli) readList(path string) (model.FieldList, error) {
	data, err := c.readInput(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, builder.ErrEmptyReview
	}
	return codec.Hydrate(data)
}

func (c *cli) write(path string, data []byte) error {
	if path == "" {
		_, err := c.stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	c.logger.Printf("wrote %d bytes to %s", len(data), path)
	return nil
}

func (c *cli) writeJSON(path string, v any) error {
	data, err := json.MarshalIndentWithOption(v, "", "  ", json.DisableHTMLEscape())
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return c.write(path, append(data, '\n'))
}

func (c *cli) newGenerator(cfg *config.Config) (*codegen.Generator, error) {
	opts := []codegen.Option{
		codegen.WithComponentName(cfg.Codegen.Component),
		codegen.WithLogger(c.logger),
	}
	if !cfg.Codegen.FormatEnabled() {
		opts = append(opts, codegen.WithFormatter(nil))
	}
	return codegen.New(opts...)
}

func (c *cli) newSession(ctx context.Context, opts *options, store preference.Store) (*builder.Session, error) {
	generator, err := c.newGenerator(opts.cfg)
	if err != nil {
		return nil, err
	}
	return builder.New(ctx,
		builder.WithGenerator(generator),
		builder.WithPreferenceStore(store),
		builder.WithDefaultLibrary(opts.cfg.Codegen.Target),
		builder.WithPreviewOptions(opts.cfg.Preview.Options()),
		builder.WithCatalogURL(opts.cfg.Preview.CatalogURL),
		builder.WithNotifier(builder.NotifierFunc(func(_ context.Context, n builder.Notification) {
			fmt.Fprintf(c.stderr, "[%s] %s\n", n.Level, n.Message)
		})),
		builder.WithLogger(c.logger),
	)
}

func (c *cli) generate(_ context.Context, opts *options) error {
	list, err := c.readList(opts.in)
	if err != nil {
		return err
	}
	generator, err := c.newGenerator(opts.cfg)
	if err != nil {
		return err
	}
	target, err := generator.Targets().Parse(opts.resolvedTarget())
	if err != nil {
		return err
	}
	code, err := generator.Generate(list, target)
	if err != nil {
		return err
	}
	return c.write(opts.out, []byte(code))
}

func (c *cli) review(ctx context.Context, opts *options) error {
	data, err := c.readInput(opts.in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	session, err := c.newSession(ctx, opts, preference.NewMemory())
	if err != nil {
		return err
	}
	artifacts, err := session.Review(string(data), opts.resolvedTarget())
	if err != nil {
		return err
	}
	return c.writeView(opts, artifacts)
}

func (c *cli) writeView(opts *options, artifacts builder.Artifacts) error {
	switch opts.view {
	case "", "all":
		return c.writeJSON(opts.out, artifacts)
	case "json":
		return c.write(opts.out, []byte(artifacts.JSON+"\n"))
	case "code":
		return c.write(opts.out, []byte(artifacts.Code))
	case "preview":
		return c.write(opts.out, []byte(artifacts.Preview))
	case "schema":
		return c.write(opts.out, []byte(artifacts.Schema+"\n"))
	default:
		return fmt.Errorf("unknown view %q", opts.view)
	}
}

func (c *cli) schema(_ context.Context, opts *options) error {
	list, err := c.readList(opts.in)
	if err != nil {
		return err
	}
	spec := schema.DeriveValidation(list)
	doc, err := schema.MarshalOpenAPI(spec, opts.title)
	if err != nil {
		return err
	}
	return c.write(opts.out, append(doc, '\n'))
}

func (c *cli) defaults(_ context.Context, opts *options) error {
	list, err := c.readList(opts.in)
	if err != nil {
		return err
	}
	return c.writeJSON(opts.out, schema.DeriveDefaults(list))
}

func (c *cli) variants(_ context.Context, opts *options) error {
	var b strings.Builder
	for _, v := range variants.Default().Variants() {
		marker := ""
		if v.Special != "" {
			marker = " *"
		}
		fmt.Fprintf(&b, "%-22s %-7s %s%s\n", v.Name, v.Constraint.Kind, v.Defaults.Label, marker)
	}
	b.WriteString("\n* needs a component from " + variants.DefaultCatalogURL + "\n")
	return c.write(opts.out, []byte(b.String()))
}

func (c *cli) promptDriver() tui.PromptDriver {
	if c.driver != nil {
		return c.driver
	}
	return tui.NewSurveyDriver()
}

func (c *cli) build(ctx context.Context, opts *options) error {
	store, err := preference.Open(ctx, opts.cfg.Preferences)
	if err != nil {
		return err
	}
	defer store.Close()

	session, err := c.newSession(ctx, opts, store)
	if err != nil {
		return err
	}
	if opts.in != "-" {
		data, err := c.readInput(opts.in)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if err := session.Import(data); err != nil {
			return err
		}
	}
	if opts.target != "" {
		if _, err := session.SetLibrary(ctx, opts.target); err != nil {
			return err
		}
	}

	wizard := tui.NewBuilder(session, tui.WithPromptDriver(c.promptDriver()))
	if _, err := wizard.Run(ctx); err != nil {
		return err
	}
	artifacts, err := session.Artifacts()
	if err != nil {
		return err
	}
	return c.writeView(opts, artifacts)
}

func (c *cli) fill(ctx context.Context, opts *options) error {
	format, ok := tui.ParseOutputFormat(opts.format)
	if !ok {
		return fmt.Errorf("unknown output format %q", opts.format)
	}
	list, err := c.readList(opts.in)
	if err != nil {
		return err
	}
	filler := tui.NewFiller(
		tui.WithPromptDriver(c.promptDriver()),
		tui.WithOutputFormat(format),
	)
	out, err := filler.Render(ctx, list, nil)
	if err != nil {
		return err
	}
	if !bytes.HasSuffix(out, []byte("\n")) {
		out = append(out, '\n')
	}
	return c.write(opts.out, out)
}

// importTimeout bounds fetching a remote OpenAPI document.
const importTimeout = 30 * time.Second

func (c *cli) importOpenAPI(ctx context.Context, opts *options) error {
	var (
		doc openapi.Document
		err error
	)
	if opts.in == "" || opts.in == "-" {
		data, readErr := io.ReadAll(c.stdin)
		if readErr != nil {
			return fmt.Errorf("read input: %w", readErr)
		}
		doc, err = openapi.DocumentFromData(data)
	} else {
		var src openapi.Source
		src, err = openapi.ParseSource(opts.in)
		if err == nil {
			doc, err = openapi.NewLoader(openapi.WithHTTPFallback(importTimeout)).Load(ctx, src)
		}
	}
	if err != nil {
		return err
	}

	res, err := openapi.Fields(ctx, doc, openapi.Selection{Schema: opts.schema, Operation: opts.operation})
	if err != nil {
		return err
	}
	for _, skipped := range res.Skipped {
		fmt.Fprintf(c.stderr, "skipped %s: %s\n", skipped.Name, skipped.Reason)
	}
	data, err := codec.Serialize(res.Fields)
	if err != nil {
		return err
	}
	return c.write(opts.out, append(data, '\n'))
}
