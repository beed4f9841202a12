package server

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/codegen"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
)

// Error codes shared by REST responses and websocket error messages.
const (
	CodeInvalidData   = "invalid_data"
	CodeEmptyReview   = "empty_review"
	CodeParseError    = "parse_error"
	CodeInvalidShape  = "invalid_shape"
	CodeUnknownTarget = "unknown_target"
	CodeNotFound      = "not_found"
	CodeDuplicateName = "duplicate_name"
	CodeUnknownType   = "unknown_type"
	CodeTooLarge      = "too_large"
	CodeInternal      = "internal"
)

// ErrorData is the body of error responses.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encode response: %v", err)
	}
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorData{Code: code, Message: message})
}

// writeFailure maps err to a status and error body.
func writeFailure(w http.ResponseWriter, err error) {
	status, data := classify(err)
	writeJSON(w, status, data)
}

// classify maps domain errors to an HTTP status and a user-facing message.
func classify(err error) (int, ErrorData) {
	var shape *codec.ShapeError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, builder.ErrEmptyReview):
		return http.StatusBadRequest, ErrorData{CodeEmptyReview, builder.Message(err)}
	case codec.IsParseError(err):
		return http.StatusBadRequest, ErrorData{CodeParseError, codec.Message(err)}
	case errors.As(err, &shape):
		return http.StatusUnprocessableEntity, ErrorData{CodeInvalidShape, shape.Message()}
	case errors.Is(err, codegen.ErrUnknownTarget):
		return http.StatusBadRequest, ErrorData{CodeUnknownTarget, err.Error()}
	case errors.Is(err, model.ErrPathNotFound):
		return http.StatusNotFound, ErrorData{CodeNotFound, err.Error()}
	case errors.Is(err, model.ErrInvalidName):
		return http.StatusUnprocessableEntity, ErrorData{CodeInvalidShape, err.Error()}
	case errors.Is(err, model.ErrDuplicateName):
		return http.StatusConflict, ErrorData{CodeDuplicateName, err.Error()}
	case errors.Is(err, openapi.ErrInvalidDocument):
		return http.StatusBadRequest, ErrorData{CodeParseError, err.Error()}
	case errors.Is(err, openapi.ErrSchemaNotFound), errors.Is(err, openapi.ErrOperationNotFound):
		return http.StatusNotFound, ErrorData{CodeNotFound, err.Error()}
	case errors.Is(err, openapi.ErrAmbiguousSelection), errors.Is(err, openapi.ErrNotObject),
		errors.Is(err, openapi.ErrNoRequestBody):
		return http.StatusUnprocessableEntity, ErrorData{CodeInvalidShape, err.Error()}
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, ErrorData{CodeTooLarge, "request body too large"}
	default:
		return http.StatusInternalServerError, ErrorData{CodeInternal, err.Error()}
	}
}

// readBody reads at most limit bytes of the request body.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
}

// decodeJSON decodes the bounded request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	body, err := readBody(w, r, limit)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}
