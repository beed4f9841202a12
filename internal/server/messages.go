package server

import (
	"encoding/json"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// Client message types.
const (
	TypeAdd      = "add"
	TypeUpdate   = "update"
	TypeRemove   = "remove"
	TypeReset    = "reset"
	TypeImport   = "import"
	TypeLibrary  = "library"
	TypeSnapshot = "snapshot"
	TypeSubmit   = "submit"
	TypePing     = "ping"
)

// Server message types.
const (
	TypeSession    = "session"
	TypeArtifacts  = "artifacts"
	TypeSubmission = "submission"
	TypeError      = "error"
	TypePong       = "pong"
)

// ClientMessage is the envelope for all client-to-server websocket messages.
type ClientMessage struct {
	Type string          `json:"type"`
	ID   string          `json:"id"` // client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// ServerMessage is the envelope for all server-to-client websocket messages.
type ServerMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"` // echoes the client ID
	Data      any    `json:"data,omitempty"`
}

// AddData adds a field of Variant at Index, or at the end when Index is
// omitted.
type AddData struct {
	Variant string `json:"variant"`
	Index   *int   `json:"index,omitempty"`
}

// UpdateData patches the field called Name.
type UpdateData struct {
	Name  string      `json:"name"`
	Patch model.Patch `json:"patch"`
}

// RemoveData removes the field called Name.
type RemoveData struct {
	Name string `json:"name"`
}

// ImportData replaces the list with the form JSON in JSON.
type ImportData struct {
	JSON string `json:"json"`
}

// LibraryData selects a target by identifier or label.
type LibraryData struct {
	Target string `json:"target"`
}

// SubmitData carries preview form values.
type SubmitData struct {
	Values map[string]any `json:"values"`
}

// SessionData describes a new live session.
type SessionData struct {
	SessionID string       `json:"session_id"`
	Library   string       `json:"library"`
	Targets   []TargetInfo `json:"targets"`
}

// ArtifactsData is the session state after an operation.
type ArtifactsData struct {
	Library       string                 `json:"library"`
	Field         string                 `json:"field,omitempty"` // field touched by add or update
	Artifacts     builder.Artifacts      `json:"artifacts"`
	Notifications []builder.Notification `json:"notifications,omitempty"`
}

// SubmissionData is the outcome of a submit message.
type SubmissionData struct {
	Valid         bool                   `json:"valid"`
	Issues        []schema.Issue         `json:"issues,omitempty"`
	Preview       string                 `json:"preview,omitempty"` // form re-rendered with the issues
	Echo          string                 `json:"echo,omitempty"`
	Notifications []builder.Notification `json:"notifications,omitempty"`
}
