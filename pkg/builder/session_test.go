package builder_test

import (
	"context"
	"errors"
	"io"
	"log"
	"maps"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/codegen"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/preference"
	"github.com/goliatone/go-formbuilder/pkg/variants"
)

type failingStore struct {
	loadErr error
	saveErr error
	saved   map[string]string
}

func (s *failingStore) Load(context.Context, string) (string, error) {
	return "", s.loadErr
}

func (s *failingStore) Save(_ context.Context, key, value string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.saved == nil {
		s.saved = map[string]string{}
	}
	s.saved[key] = value
	return nil
}

func newSession(t *testing.T, opts ...builder.Option) (*builder.Session, *builder.Recorder) {
	t.Helper()
	rec := &builder.Recorder{}
	opts = append([]builder.Option{
		builder.WithNotifier(rec),
		builder.WithLogger(log.New(io.Discard, "", 0)),
	}, opts...)
	s, err := builder.New(context.Background(), opts...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s, rec
}

func TestNewSession_DefaultsToFirstTarget(t *testing.T) {
	s, rec := newSession(t)
	if got := s.Library(); got != codegen.ReactHookForm {
		t.Fatalf("expected %q, got %q", codegen.ReactHookForm, got)
	}
	if len(s.Fields()) != 0 {
		t.Fatalf("expected empty list")
	}
	if notes := rec.Drain(); len(notes) != 0 {
		t.Fatalf("missing preference should not notify, got %+v", notes)
	}
}

func TestNewSession_RestoresStoredLibrary(t *testing.T) {
	store := preference.NewMemory()
	if err := store.Save(context.Background(), builder.PreferenceKey, codegen.TanStackForm); err != nil {
		t.Fatalf("save: %v", err)
	}
	s, _ := newSession(t, builder.WithPreferenceStore(store))
	if got := s.Library(); got != codegen.TanStackForm {
		t.Fatalf("expected stored target, got %q", got)
	}
}

func TestNewSession_UnknownStoredLibraryFallsBack(t *testing.T) {
	store := preference.NewMemory()
	_ = store.Save(context.Background(), builder.PreferenceKey, "jquery-forms")
	s, rec := newSession(t, builder.WithPreferenceStore(store))
	if got := s.Library(); got != codegen.DefaultTarget {
		t.Fatalf("expected default target, got %q", got)
	}
	if notes := rec.Drain(); len(notes) != 0 {
		t.Fatalf("unexpected notifications %+v", notes)
	}
}

func TestNewSession_LoadFailureNotifies(t *testing.T) {
	store := &failingStore{loadErr: errors.New("disk on fire")}
	s, rec := newSession(t, builder.WithPreferenceStore(store))
	if got := s.Library(); got != codegen.DefaultTarget {
		t.Fatalf("expected default target, got %q", got)
	}
	notes := rec.Drain()
	if len(notes) != 1 || notes[0].Level != builder.LevelError || notes[0].Message != builder.LoadFailedMessage {
		t.Fatalf("expected one load failure notification, got %+v", notes)
	}
}

func TestSetLibrary(t *testing.T) {
	store := &failingStore{loadErr: preference.ErrNotFound}
	s, rec := newSession(t, builder.WithPreferenceStore(store))

	id, err := s.SetLibrary(context.Background(), "TanStack Form")
	if err != nil {
		t.Fatalf("set library: %v", err)
	}
	if id != codegen.TanStackForm || s.Library() != codegen.TanStackForm {
		t.Fatalf("expected label to resolve to %q, got %q", codegen.TanStackForm, id)
	}
	if store.saved[builder.PreferenceKey] != codegen.TanStackForm {
		t.Fatalf("preference not saved: %+v", store.saved)
	}

	if _, err := s.SetLibrary(context.Background(), "nope"); !errors.Is(err, codegen.ErrUnknownTarget) {
		t.Fatalf("expected ErrUnknownTarget, got %v", err)
	}
	if s.Library() != codegen.TanStackForm {
		t.Fatalf("failed selection must keep the previous target")
	}
	if notes := rec.Drain(); len(notes) != 0 {
		t.Fatalf("unexpected notifications %+v", notes)
	}
}

func TestSetLibrary_SaveFailureIsOnlyNotified(t *testing.T) {
	store := &failingStore{loadErr: preference.ErrNotFound, saveErr: errors.New("read-only")}
	s, rec := newSession(t, builder.WithPreferenceStore(store))

	id, err := s.SetLibrary(context.Background(), codegen.BringYourOwn)
	if err != nil {
		t.Fatalf("save failure must not be returned: %v", err)
	}
	if id != codegen.BringYourOwn || s.Library() != codegen.BringYourOwn {
		t.Fatalf("selection should apply despite the failed save")
	}
	notes := rec.Drain()
	if len(notes) != 1 || notes[0].Message != builder.SaveFailedMessage {
		t.Fatalf("expected save failure notification, got %+v", notes)
	}
}

func TestFieldLifecycle(t *testing.T) {
	s, _ := newSession(t)

	first := s.AppendField(variants.Input)
	if first.Label != "Username" || !first.Required {
		t.Fatalf("expected variant defaults, got %+v", first)
	}
	second := s.AddField(variants.Phone, 0)
	if names := model.Names(s.Fields()); len(names) != 2 || names[0] != second.Name || names[1] != first.Name {
		t.Fatalf("unexpected order %v", names)
	}

	label := "Handle"
	updated, err := s.UpdateField(first.Name, model.Patch{Label: &label})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Label != "Handle" || updated.Name != first.Name {
		t.Fatalf("unexpected update result %+v", updated)
	}

	rename := "handle"
	updated, err = s.UpdateField(first.Name, model.Patch{Name: &rename})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if updated.Name != "handle" {
		t.Fatalf("expected renamed field, got %q", updated.Name)
	}

	if _, err := s.UpdateField("ghost", model.Patch{Label: &label}); !errors.Is(err, model.ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound, got %v", err)
	}
	if err := s.RemoveField("ghost"); !errors.Is(err, model.ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound, got %v", err)
	}

	if err := s.RemoveField(second.Name); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if names := model.Names(s.Fields()); len(names) != 1 || names[0] != "handle" {
		t.Fatalf("unexpected names after remove %v", names)
	}

	s.Reset()
	if len(s.Fields()) != 0 {
		t.Fatalf("reset should clear the list")
	}
}

func TestFieldsReturnsCopy(t *testing.T) {
	s, _ := newSession(t)
	s.AppendField(variants.Input)

	fields := s.Fields()
	fields[0].Fields[0].Label = "mutated"
	if s.Fields()[0].Fields[0].Label == "mutated" {
		t.Fatalf("Fields must not expose the session list")
	}
}

const importJSON = `[
  {"variant": "Input", "name": "username", "label": "Username", "required": true, "type": "text"},
  [
    {"variant": "Input", "name": "first", "label": "First"},
    {"variant": "Phone", "name": "phone", "label": "Phone"}
  ]
]`

func TestImport(t *testing.T) {
	s, _ := newSession(t)
	if err := s.Import([]byte(importJSON)); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := model.Names(s.Fields()); strings.Join(got, ",") != "username,first,phone" {
		t.Fatalf("unexpected names %v", got)
	}

	err := s.Import([]byte(`{"variant": "Input"`))
	if !codec.IsParseError(err) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if len(s.Fields()) != 2 {
		t.Fatalf("failed import must keep the previous list")
	}
}

func TestArtifacts(t *testing.T) {
	s, _ := newSession(t)
	if err := s.Import([]byte(importJSON)); err != nil {
		t.Fatalf("import: %v", err)
	}

	art, err := s.Artifacts()
	if err != nil {
		t.Fatalf("artifacts: %v", err)
	}
	if art.Target != codegen.ReactHookForm {
		t.Fatalf("unexpected target %q", art.Target)
	}
	if !strings.Contains(art.JSON, `"name": "username"`) {
		t.Fatalf("json artifact missing field:\n%s", art.JSON)
	}
	if !strings.Contains(art.Code, "useForm") {
		t.Fatalf("code artifact missing form hook:\n%s", art.Code)
	}
	if !strings.Contains(art.Schema, `"openapi"`) || !strings.Contains(art.Schema, "username") {
		t.Fatalf("schema artifact missing content:\n%s", art.Schema)
	}
	if _, ok := art.Defaults["username"]; !ok {
		t.Fatalf("defaults missing username: %+v", art.Defaults)
	}
	if !strings.Contains(art.Preview, `name="formLibrary" value="react-hook-form"`) {
		t.Fatalf("preview missing library hidden input:\n%s", art.Preview)
	}
	if art.Notice != nil {
		t.Fatalf("group members do not raise the notice, got %+v", art.Notice)
	}
	if len(art.Fingerprint) != 32 {
		t.Fatalf("expected 128-bit hex fingerprint, got %q", art.Fingerprint)
	}

	s.AppendField(variants.Phone)
	art, err = s.Artifacts()
	if err != nil {
		t.Fatalf("artifacts: %v", err)
	}
	if art.Notice == nil || len(art.Notice.Components) != 1 || art.Notice.Components[0].Variant != variants.Phone {
		t.Fatalf("expected phone special component notice, got %+v", art.Notice)
	}
	if art.Notice.Components[0].URL != variants.DefaultCatalogURL+"/phone-input" {
		t.Fatalf("unexpected component url %q", art.Notice.Components[0].URL)
	}
}

func TestArtifacts_CacheFollowsFingerprint(t *testing.T) {
	s, _ := newSession(t)
	field := s.AppendField(variants.Input)

	first, err := s.Artifacts()
	if err != nil {
		t.Fatalf("artifacts: %v", err)
	}
	again, err := s.Artifacts()
	if err != nil {
		t.Fatalf("artifacts: %v", err)
	}
	if s.CacheHits() != 1 || again.Fingerprint != first.Fingerprint {
		t.Fatalf("expected a cache hit, hits=%d", s.CacheHits())
	}

	label := "Changed"
	if _, err := s.UpdateField(field.Name, model.Patch{Label: &label}); err != nil {
		t.Fatalf("update: %v", err)
	}
	changed, err := s.Artifacts()
	if err != nil {
		t.Fatalf("artifacts: %v", err)
	}
	if changed.Fingerprint == first.Fingerprint || !strings.Contains(changed.Code, "Changed") {
		t.Fatalf("mutation must produce fresh artifacts")
	}

	if _, err := s.SetLibrary(context.Background(), codegen.TanStackForm); err != nil {
		t.Fatalf("set library: %v", err)
	}
	other, err := s.Artifacts()
	if err != nil {
		t.Fatalf("artifacts: %v", err)
	}
	if other.Fingerprint == changed.Fingerprint || other.Target != codegen.TanStackForm {
		t.Fatalf("target change must produce fresh artifacts")
	}
	if s.CacheHits() != 1 {
		t.Fatalf("unexpected cache hits %d", s.CacheHits())
	}
}

func TestArtifacts_CachedDefaultsAreCopied(t *testing.T) {
	s, _ := newSession(t)
	if err := s.Import([]byte(`[{"variant": "Input", "name": "username"}, {"variant": "Tags Input", "name": "tags"}]`)); err != nil {
		t.Fatalf("import: %v", err)
	}

	first, err := s.Artifacts()
	if err != nil {
		t.Fatalf("artifacts: %v", err)
	}
	want := maps.Clone(first.Defaults)

	first.Defaults["username"] = "mutated"
	first.Defaults["extra"] = true
	if tags, ok := first.Defaults["tags"].([]string); ok {
		first.Defaults["tags"] = append(tags, "leak")
	}

	again, err := s.Artifacts()
	if err != nil {
		t.Fatalf("artifacts: %v", err)
	}
	if s.CacheHits() != 1 {
		t.Fatalf("expected a cache hit, hits=%d", s.CacheHits())
	}
	if diff := cmp.Diff(want, again.Defaults); diff != "" {
		t.Fatalf("cached defaults changed (-want +got):\n%s", diff)
	}
}

func TestFingerprint(t *testing.T) {
	a := builder.Fingerprint([]byte("[]"), codegen.ReactHookForm)
	b := builder.Fingerprint([]byte("[]"), codegen.ReactHookForm)
	c := builder.Fingerprint([]byte("[]"), codegen.TanStackForm)
	if a != b {
		t.Fatalf("fingerprint must be deterministic")
	}
	if a == c {
		t.Fatalf("fingerprint must include the target")
	}
}

func TestReview(t *testing.T) {
	s, _ := newSession(t)
	s.AppendField(variants.Textarea)

	if _, err := s.Review("   ", ""); !errors.Is(err, builder.ErrEmptyReview) {
		t.Fatalf("expected ErrEmptyReview, got %v", err)
	}
	if got := builder.Message(builder.ErrEmptyReview); got != "Please paste form JSON." {
		t.Fatalf("unexpected message %q", got)
	}

	_, err := s.Review(`{"variant": "Input"}`, "")
	var shape *codec.ShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("expected shape error, got %v", err)
	}
	if !strings.HasPrefix(builder.Message(err), "Invalid form JSON") {
		t.Fatalf("unexpected message %q", builder.Message(err))
	}

	art, err := s.Review(importJSON, "tanstack-form")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if art.Target != codegen.TanStackForm || !strings.Contains(art.JSON, "username") {
		t.Fatalf("unexpected review artifacts %+v", art)
	}
	if len(s.Fields()) != 1 || s.Library() != codegen.ReactHookForm {
		t.Fatalf("review must not change the session")
	}
}

func TestCopy(t *testing.T) {
	var clipboard string
	ok := builder.ClipboardFunc(func(_ context.Context, text string) error {
		clipboard = text
		return nil
	})
	s, rec := newSession(t, builder.WithClipboard(ok))

	if err := s.Copy(context.Background(), "Code", "const x = 1"); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if clipboard != "const x = 1" {
		t.Fatalf("clipboard not written")
	}
	notes := rec.Drain()
	if len(notes) != 1 || notes[0].Level != builder.LevelSuccess || notes[0].Message != "Code copied to clipboard" {
		t.Fatalf("unexpected notifications %+v", notes)
	}

	failing, rec := newSession(t)
	if err := failing.Copy(context.Background(), "JSON", "[]"); !errors.Is(err, builder.ErrNoClipboard) {
		t.Fatalf("expected ErrNoClipboard, got %v", err)
	}
	notes = rec.Drain()
	if len(notes) != 1 || notes[0].Level != builder.LevelError || notes[0].Message != "Failed to copy" {
		t.Fatalf("unexpected notifications %+v", notes)
	}
}

func TestSubmit(t *testing.T) {
	s, rec := newSession(t)
	if err := s.Import([]byte(`[{"variant": "Input", "name": "username", "label": "Username", "required": true}]`)); err != nil {
		t.Fatalf("import: %v", err)
	}

	invalid, err := s.Submit(context.Background(), map[string]any{"username": ""})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if invalid.Valid || len(invalid.Issues) != 1 || invalid.Issues[0].Field != "username" {
		t.Fatalf("expected one issue, got %+v", invalid)
	}
	if notes := rec.Drain(); len(notes) != 0 {
		t.Fatalf("invalid submission should not notify: %+v", notes)
	}
	for _, want := range []string{`aria-invalid="true"`, "Username is required", `name="` + builder.PreferenceKey + `"`} {
		if !strings.Contains(invalid.Preview, want) {
			t.Fatalf("rejected preview missing %q:\n%s", want, invalid.Preview)
		}
	}

	valid, err := s.Submit(context.Background(), map[string]any{"username": "ada"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !valid.Valid || valid.Preview != "" || valid.Echo != "{\n  \"username\": \"ada\"\n}" {
		t.Fatalf("unexpected submission %+v", valid)
	}
	notes := rec.Drain()
	if len(notes) != 1 || notes[0].Message != builder.SubmittedMessage || notes[0].Detail != valid.Echo {
		t.Fatalf("unexpected notifications %+v", notes)
	}
}

func TestNewSession_DefaultLibraryOption(t *testing.T) {
	s, _ := newSession(t, builder.WithDefaultLibrary("TanStack Form"))
	if got := s.Library(); got != codegen.TanStackForm {
		t.Fatalf("expected configured default, got %q", got)
	}

	if _, err := builder.New(context.Background(), builder.WithDefaultLibrary("jquery")); !errors.Is(err, codegen.ErrUnknownTarget) {
		t.Fatalf("expected ErrUnknownTarget, got %v", err)
	}
}
