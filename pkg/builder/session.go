// Package builder owns the field list of one editing session and derives
// the preview, JSON, schema and code artifacts from it.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/codegen"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/preference"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/variants"
)

var (
	// ErrEmptyReview is returned when the review input is blank.
	ErrEmptyReview = errors.New("builder: review input is empty")
	// ErrNoClipboard is returned by Copy when no clipboard is configured.
	ErrNoClipboard = errors.New("builder: clipboard not configured")
)

// Messages shown through the Notifier.
const (
	CopiedMessage      = "%s copied to clipboard"
	CopyFailedMessage  = "Failed to copy"
	LoadFailedMessage  = "Could not load the saved form library, using the default."
	SaveFailedMessage  = "Could not save the form library preference."
	SubmittedMessage   = "You submitted the following values:"
	EmptyReviewMessage = "Please paste form JSON."
)

const defaultCacheSize = 8

// Option configures a Session.
type Option func(*Session)

// WithPreferenceStore sets where the selected target is remembered.
func WithPreferenceStore(store PreferenceStore) Option {
	return func(s *Session) {
		if store != nil {
			s.prefs = store
		}
	}
}

// WithNotifier sets the notification sink.
func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithClipboard sets the clipboard used by Copy.
func WithClipboard(c Clipboard) Option {
	return func(s *Session) {
		if c != nil {
			s.clipboard = c
		}
	}
}

// WithGenerator overrides the code generator.
func WithGenerator(g *codegen.Generator) Option {
	return func(s *Session) {
		if g != nil {
			s.generator = g
		}
	}
}

// WithTable overrides the variant table used for defaults and rules.
func WithTable(t *variants.Table) Option {
	return func(s *Session) {
		if t != nil {
			s.table = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPreviewOptions sets the base options of the preview render, such as
// the theme and translator.
func WithPreviewOptions(opts render.PreviewOptions) Option {
	return func(s *Session) {
		s.preview = opts
	}
}

// WithCatalogURL sets the base URL of special component links.
func WithCatalogURL(url string) Option {
	return func(s *Session) {
		s.catalogURL = url
	}
}

// WithTitle sets the title of the generated OpenAPI document.
func WithTitle(title string) Option {
	return func(s *Session) {
		s.title = title
	}
}

// WithDefaultLibrary sets the target used when no preference is stored.
// An empty value keeps the first registered target.
func WithDefaultLibrary(target string) Option {
	return func(s *Session) {
		s.fallback = target
	}
}

// WithCacheSize bounds the number of cached artifact sets.
func WithCacheSize(n int) Option {
	return func(s *Session) {
		s.cacheSize = n
	}
}

// Session is the single writer of a field list. It is not safe for
// concurrent use; callers serialize access.
type Session struct {
	list    model.FieldList
	library string

	prefs      PreferenceStore
	notifier   Notifier
	clipboard  Clipboard
	generator  *codegen.Generator
	table      *variants.Table
	logger     *log.Logger
	preview    render.PreviewOptions
	catalogURL string
	title      string
	fallback   string

	cacheSize int
	cache     *artifactCache
	hits      int
}

// New creates a session with an empty field list and restores the selected
// target from the preference store. A stored value that cannot be loaded or
// is no longer a known target falls back to the default target.
func New(ctx context.Context, opts ...Option) (*Session, error) {
	s := &Session{
		list:      model.FieldList{},
		prefs:     preference.NewMemory(),
		notifier:  discard{},
		clipboard: noClipboard{},
		table:     variants.Default(),
		logger:    log.Default(),
		cacheSize: defaultCacheSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.generator == nil {
		generator, err := codegen.New(codegen.WithVariantTable(s.table), codegen.WithLogger(s.logger))
		if err != nil {
			return nil, fmt.Errorf("builder: create generator: %w", err)
		}
		s.generator = generator
	}
	s.cache = newArtifactCache(s.cacheSize)

	fallback, err := s.generator.Targets().Parse(s.fallback)
	if err != nil {
		return nil, fmt.Errorf("builder: %w", err)
	}
	s.library = fallback
	s.restoreLibrary(ctx)
	return s, nil
}

func (s *Session) restoreLibrary(ctx context.Context) {
	stored, err := s.prefs.Load(ctx, PreferenceKey)
	switch {
	case errors.Is(err, preference.ErrNotFound):
		return
	case err != nil:
		s.logger.Printf("builder: load %s preference: %v", PreferenceKey, err)
		s.notifier.Notify(ctx, Notification{Level: LevelError, Message: LoadFailedMessage})
		return
	}
	target, err := s.generator.Targets().Parse(stored)
	if err != nil || strings.TrimSpace(stored) == "" {
		s.logger.Printf("builder: ignoring stored %s %q", PreferenceKey, stored)
		return
	}
	s.library = target
}

// Fields returns a copy of the current field list.
func (s *Session) Fields() model.FieldList {
	return model.Clone(s.list)
}

// Library returns the selected code generation target.
func (s *Session) Library() string {
	return s.library
}

// Table returns the variant table of the session.
func (s *Session) Table() *variants.Table {
	return s.table
}

// Targets returns the registered code generation targets.
func (s *Session) Targets() *codegen.Registry {
	return s.generator.Targets()
}

// AddField inserts a new field of variant at index and returns it. Indices
// out of range append.
func (s *Session) AddField(variant string, index int) model.Field {
	list, field := model.AddField(s.list, variant, index, s.table.Defaults)
	s.list = list
	return field
}

// AppendField adds a field of variant at the end of the list.
func (s *Session) AppendField(variant string) model.Field {
	return s.AddField(variant, len(s.list))
}

// UpdateField applies patch to the field called name.
func (s *Session) UpdateField(name string, patch model.Patch) (model.Field, error) {
	path, ok := model.FindPath(s.list, name)
	if !ok {
		return model.Field{}, fmt.Errorf("builder: update %q: %w", name, model.ErrPathNotFound)
	}
	list, err := model.UpdateField(s.list, path, patch)
	if err != nil {
		return model.Field{}, fmt.Errorf("builder: update %q: %w", name, err)
	}
	s.list = list

	renamed := name
	if patch.Name != nil {
		renamed = *patch.Name
	}
	updated, ok := model.FindPath(s.list, renamed)
	if !ok {
		return model.Field{}, fmt.Errorf("builder: update %q: %w", name, model.ErrPathNotFound)
	}
	return model.Get(s.list, updated)
}

// RemoveField deletes the field called name. Removing the last member of a
// group removes the group.
func (s *Session) RemoveField(name string) error {
	path, ok := model.FindPath(s.list, name)
	if !ok {
		return fmt.Errorf("builder: remove %q: %w", name, model.ErrPathNotFound)
	}
	list, err := model.RemoveField(s.list, path)
	if err != nil {
		return fmt.Errorf("builder: remove %q: %w", name, err)
	}
	s.list = list
	return nil
}

// Reset clears the field list.
func (s *Session) Reset() {
	s.list = model.ResetAll()
}

// Import replaces the field list with the hydrated data. On failure the
// current list is kept and the error is a codec error suitable for
// codec.Message.
func (s *Session) Import(data []byte) error {
	list, err := codec.Hydrate(data)
	if err != nil {
		return err
	}
	s.list = list
	return nil
}

// SetLibrary selects the code generation target by identifier or label and
// remembers it. Failing to save is reported through the Notifier and never
// returned.
func (s *Session) SetLibrary(ctx context.Context, target string) (string, error) {
	id, err := s.generator.Targets().Parse(target)
	if err != nil {
		return "", err
	}
	s.library = id
	if err := s.prefs.Save(ctx, PreferenceKey, id); err != nil {
		s.logger.Printf("builder: save %s preference: %v", PreferenceKey, err)
		s.notifier.Notify(ctx, Notification{Level: LevelError, Message: SaveFailedMessage})
	}
	return id, nil
}

// Artifacts derives every view of the current list for the selected target.
func (s *Session) Artifacts() (Artifacts, error) {
	return s.build(s.list, s.library)
}

// Review hydrates text and derives its artifacts without touching the
// session's own list. An empty target uses the selected library.
func (s *Session) Review(text, target string) (Artifacts, error) {
	if strings.TrimSpace(text) == "" {
		return Artifacts{}, ErrEmptyReview
	}
	list, err := codec.HydrateString(text)
	if err != nil {
		return Artifacts{}, err
	}
	id := s.library
	if strings.TrimSpace(target) != "" {
		if id, err = s.generator.Targets().Parse(target); err != nil {
			return Artifacts{}, err
		}
	}
	return s.build(list, id)
}

// Copy writes text to the clipboard and notifies the outcome.
func (s *Session) Copy(ctx context.Context, label, text string) error {
	if err := s.clipboard.WriteText(ctx, text); err != nil {
		s.logger.Printf("builder: copy %s: %v", label, err)
		s.notifier.Notify(ctx, Notification{Level: LevelError, Message: CopyFailedMessage})
		return err
	}
	s.notifier.Notify(ctx, Notification{Level: LevelSuccess, Message: fmt.Sprintf(CopiedMessage, label)})
	return nil
}

// Message returns the user-facing text for err: the review prompt for
// ErrEmptyReview and the codec message otherwise.
func Message(err error) string {
	if errors.Is(err, ErrEmptyReview) {
		return EmptyReviewMessage
	}
	return codec.Message(err)
}

// Submission is the outcome of submitting the preview form.
type Submission struct {
	Valid  bool           `json:"valid"`
	Issues []schema.Issue `json:"issues,omitempty"`
	// Preview is the form re-rendered with the submitted values and the
	// issues shown next to their fields. Empty when the submission is valid.
	Preview string `json:"preview,omitempty"`
	// Values are the coerced values of a valid submission.
	Values map[string]any `json:"values,omitempty"`
	// Echo is Values as indented JSON.
	Echo string `json:"echo,omitempty"`
}

// Submit validates values against the rules derived from the current list.
// Nothing is sent anywhere: a valid submission is echoed back as JSON and
// announced through the Notifier.
func (s *Session) Submit(ctx context.Context, values map[string]any) (Submission, error) {
	spec := schema.DeriveValidation(s.list, schema.WithTable(s.table))
	result := schema.Validate(spec, values)
	if !result.Valid {
		opts := s.previewOptions(s.library)
		opts.Values = values
		opts.Issues = result.Issues
		preview, err := render.Preview(s.list, opts)
		if err != nil {
			return Submission{}, fmt.Errorf("builder: render submission: %w", err)
		}
		return Submission{Valid: false, Issues: result.Issues, Preview: string(preview)}, nil
	}
	echo, err := json.MarshalIndentWithOption(result.Values, "", "  ", json.DisableHTMLEscape())
	if err != nil {
		return Submission{}, fmt.Errorf("builder: encode submission: %w", err)
	}
	s.notifier.Notify(ctx, Notification{Level: LevelSuccess, Message: SubmittedMessage, Detail: string(echo)})
	return Submission{Valid: true, Values: result.Values, Echo: string(echo)}, nil
}
