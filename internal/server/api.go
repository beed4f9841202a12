package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/variants"
)

// VariantInfo describes one palette entry.
type VariantInfo struct {
	Name        string        `json:"name"`
	Kind        variants.Kind `json:"kind"`
	Label       string        `json:"label"`
	Description string        `json:"description,omitempty"`
	Placeholder string        `json:"placeholder,omitempty"`
	Special     bool          `json:"special"`
}

// TargetInfo describes one code generation target.
type TargetInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// TargetsResponse lists the targets and the default one.
type TargetsResponse struct {
	Default string       `json:"default"`
	Targets []TargetInfo `json:"targets"`
}

// GenerateResponse carries generated code.
type GenerateResponse struct {
	Target string `json:"target"`
	Code   string `json:"code"`
}

// ImportResponse carries a field list imported from an OpenAPI document.
type ImportResponse struct {
	JSON    string            `json:"json"`
	Skipped []openapi.Skipped `json:"skipped"`
}

// ValidateRequest pairs a field list with submitted values.
type ValidateRequest struct {
	Fields json.RawMessage `json:"fields"`
	Values map[string]any  `json:"values"`
}

func (s *Server) handleVariants(w http.ResponseWriter, _ *http.Request) {
	list := s.table.Variants()
	out := make([]VariantInfo, 0, len(list))
	for _, v := range list {
		out = append(out, VariantInfo{
			Name:        v.Name,
			Kind:        v.Constraint.Kind,
			Label:       v.Defaults.Label,
			Description: v.Defaults.Description,
			Placeholder: v.Defaults.Placeholder,
			Special:     v.Special != "",
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTargets(w http.ResponseWriter, _ *http.Request) {
	targets := s.generator.Targets()
	resp := TargetsResponse{}
	resp.Default, _ = targets.Parse(s.cfg.DefaultTarget)
	resp.Targets = s.targetInfos()
	writeJSON(w, http.StatusOK, resp)
}

// handleReview renders the three views of posted form JSON.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, s.cfg.MaxBodyBytes)
	if err != nil {
		writeFailure(w, err)
		return
	}
	session, err := s.newSession(r.Context(), nil)
	if err != nil {
		writeFailure(w, err)
		return
	}
	artifacts, err := session.Review(string(body), s.targetParam(r))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artifacts)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	list, ok := s.readFieldList(w, r)
	if !ok {
		return
	}
	target, err := s.generator.Targets().Parse(s.targetParam(r))
	if err != nil {
		writeFailure(w, err)
		return
	}
	code, err := s.generator.Generate(list, target)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GenerateResponse{Target: target, Code: code})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	list, ok := s.readFieldList(w, r)
	if !ok {
		return
	}
	spec := schema.DeriveValidation(list, schema.WithTable(s.table))
	doc, err := schema.MarshalOpenAPI(spec, r.URL.Query().Get("title"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := decodeJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFailure(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, CodeInvalidData, "body must be an object with fields and values")
		return
	}
	if len(req.Fields) == 0 {
		writeError(w, http.StatusBadRequest, CodeInvalidData, "fields is required")
		return
	}
	list, err := codec.Hydrate(req.Fields)
	if err != nil {
		writeFailure(w, err)
		return
	}
	spec := schema.DeriveValidation(list, schema.WithTable(s.table))
	writeJSON(w, http.StatusOK, schema.Validate(spec, req.Values))
}

// handleImportOpenAPI converts the object schema selected by the schema or
// operation query parameter of the posted document into form JSON.
func (s *Server) handleImportOpenAPI(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, s.cfg.MaxBodyBytes)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if strings.TrimSpace(string(body)) == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidData, "body must be an OpenAPI document")
		return
	}
	doc, err := openapi.DocumentFromData(body)
	if err != nil {
		writeFailure(w, err)
		return
	}
	query := r.URL.Query()
	res, err := openapi.Fields(r.Context(), doc, openapi.Selection{
		Schema:    query.Get("schema"),
		Operation: query.Get("operation"),
	}, openapi.WithVariantTable(s.table))
	if err != nil {
		writeFailure(w, err)
		return
	}
	text, err := codec.SerializeString(res.Fields)
	if err != nil {
		writeFailure(w, err)
		return
	}
	skipped := res.Skipped
	if skipped == nil {
		skipped = []openapi.Skipped{}
	}
	writeJSON(w, http.StatusOK, ImportResponse{JSON: text, Skipped: skipped})
}

func (s *Server) readFieldList(w http.ResponseWriter, r *http.Request) (model.FieldList, bool) {
	body, err := readBody(w, r, s.cfg.MaxBodyBytes)
	if err != nil {
		writeFailure(w, err)
		return nil, false
	}
	if strings.TrimSpace(string(body)) == "" {
		writeFailure(w, builder.ErrEmptyReview)
		return nil, false
	}
	list, err := codec.Hydrate(body)
	if err != nil {
		writeFailure(w, err)
		return nil, false
	}
	return list, true
}

// targetParam returns the target query parameter, or the configured default.
func (s *Server) targetParam(r *http.Request) string {
	if target := strings.TrimSpace(r.URL.Query().Get("target")); target != "" {
		return target
	}
	return s.cfg.DefaultTarget
}
