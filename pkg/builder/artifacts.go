package builder

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/spaolacci/murmur3"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/variants"
)

// Artifacts are the derived views of a field list for one target.
type Artifacts struct {
	// JSON is the serialized field list.
	JSON string `json:"json"`
	// Target is the code generation target the code was emitted for.
	Target string `json:"target"`
	// Code is the generated form component.
	Code string `json:"code"`
	// Schema is the OpenAPI document of the derived validation schema.
	Schema string `json:"schema"`
	// Defaults are the derived initial values.
	Defaults map[string]any `json:"defaults"`
	// Preview is the sanitized HTML preview.
	Preview string `json:"preview"`
	// Notice lists special components used by the form, nil when none are.
	Notice *Notice `json:"notice,omitempty"`
	// Fingerprint identifies the list and target the artifacts were built
	// from.
	Fingerprint string `json:"fingerprint"`
}

// Notice tells the user which components must be added by hand.
type Notice struct {
	Message    string                      `json:"message"`
	Components []variants.SpecialComponent `json:"components"`
}

// Fingerprint hashes a serialized list together with the target using
// 128-bit murmur3.
func Fingerprint(serialized []byte, target string) string {
	h := murmur3.New128()
	h.Write(serialized)
	h.Write([]byte{0})
	h.Write([]byte(target))
	h1, h2 := h.Sum128()

	var sum [16]byte
	binary.BigEndian.PutUint64(sum[:8], h1)
	binary.BigEndian.PutUint64(sum[8:], h2)
	return hex.EncodeToString(sum[:])
}

// artifactCache keeps the most recent artifacts by fingerprint. Editing
// back and forth between a few states reuses earlier work.
type artifactCache struct {
	limit   int
	entries map[string]Artifacts
	order   []string
}

func newArtifactCache(limit int) *artifactCache {
	if limit <= 0 {
		limit = 1
	}
	return &artifactCache{limit: limit, entries: make(map[string]Artifacts, limit)}
}

func (c *artifactCache) get(key string) (Artifacts, bool) {
	a, ok := c.entries[key]
	return a, ok
}

func (c *artifactCache) put(key string, a Artifacts) {
	if _, ok := c.entries[key]; ok {
		c.entries[key] = a
		return
	}
	if len(c.order) >= c.limit {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.order = append(c.order, key)
	c.entries[key] = a
}

func (c *artifactCache) len() int { return len(c.entries) }

// build derives every artifact of list for target.
func (s *Session) build(list model.FieldList, target string) (Artifacts, error) {
	serialized, err := codec.Serialize(list)
	if err != nil {
		return Artifacts{}, fmt.Errorf("builder: serialize: %w", err)
	}
	fingerprint := Fingerprint(serialized, target)
	if cached, ok := s.cache.get(fingerprint); ok {
		s.hits++
		return cached.clone(), nil
	}

	code, err := s.generator.Generate(list, target)
	if err != nil {
		return Artifacts{}, err
	}

	spec := schema.DeriveValidation(list, schema.WithTable(s.table))
	openapi, err := schema.MarshalOpenAPI(spec, s.title)
	if err != nil {
		return Artifacts{}, err
	}

	preview, err := render.Preview(list, s.previewOptions(target))
	if err != nil {
		return Artifacts{}, err
	}

	out := Artifacts{
		JSON:        string(serialized),
		Target:      target,
		Code:        code,
		Schema:      string(openapi),
		Defaults:    schema.DeriveDefaults(list, schema.WithTable(s.table)),
		Preview:     string(preview),
		Fingerprint: fingerprint,
	}
	if components := s.table.SpecialComponents(list, s.catalogURL); len(components) > 0 {
		out.Notice = &Notice{Message: variants.NoticeMessage, Components: components}
	}

	s.cache.put(fingerprint, out)
	return out.clone(), nil
}

// previewOptions are the session's base preview options for target, with
// the selected target carried as a hidden input.
func (s *Session) previewOptions(target string) render.PreviewOptions {
	opts := s.preview
	opts.Table = s.table
	opts.Hidden = append(append([]render.HiddenField(nil), s.preview.Hidden...), render.Hidden(PreferenceKey, target))
	return opts
}

// clone copies the parts of a that callers may mutate, so cached artifacts
// stay as they were built.
func (a Artifacts) clone() Artifacts {
	if a.Defaults != nil {
		defaults := make(map[string]any, len(a.Defaults))
		for name, value := range a.Defaults {
			switch v := value.(type) {
			case []string:
				defaults[name] = slices.Clone(v)
			case []any:
				defaults[name] = slices.Clone(v)
			default:
				defaults[name] = v
			}
		}
		a.Defaults = defaults
	}
	if a.Notice != nil {
		notice := *a.Notice
		notice.Components = slices.Clone(notice.Components)
		a.Notice = &notice
	}
	return a
}

// CacheHits reports how many Artifacts calls were served from the cache.
func (s *Session) CacheHits() int {
	return s.hits
}
