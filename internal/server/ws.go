package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/goliatone/go-formbuilder/pkg/builder"
)

// handleWebsocket upgrades the request and runs one builder session for the
// lifetime of the connection. Messages are handled in order on the read
// loop, so the session has a single writer.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.AllowedOrigins,
	})
	if err != nil {
		s.logger.Printf("server: websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(s.cfg.MaxBodyBytes)

	ctx := r.Context()
	notes := &builder.Recorder{}
	session, err := s.newSession(ctx, notes)
	if err != nil {
		s.logger.Printf("server: create session: %v", err)
		conn.Close(websocket.StatusInternalError, "session unavailable")
		return
	}

	id := uuid.NewString()
	s.send(ctx, conn, ServerMessage{
		Type: TypeSession,
		Data: SessionData{
			SessionID: id,
			Library:   session.Library(),
			Targets:   s.targetInfos(),
		},
	})
	if pending := notes.Drain(); len(pending) > 0 {
		s.sendArtifacts(ctx, conn, session, notes, "", "", pending)
	}

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				s.logger.Printf("server: session %s closed: %v", id, status)
			}
			return
		}
		s.dispatch(ctx, conn, session, notes, msg)
	}
}

func (s *Server) dispatch(ctx context.Context, conn *websocket.Conn, session *builder.Session, notes *builder.Recorder, msg ClientMessage) {
	switch msg.Type {
	case TypePing:
		s.send(ctx, conn, ServerMessage{Type: TypePong, RequestID: msg.ID})

	case TypeSnapshot:
		s.sendArtifacts(ctx, conn, session, notes, msg.ID, "", nil)

	case TypeAdd:
		var data AddData
		if !s.decode(ctx, conn, msg, &data) {
			return
		}
		if !s.table.Has(data.Variant) {
			s.sendError(ctx, conn, msg.ID, CodeInvalidData, fmt.Sprintf("unknown variant: %q", data.Variant))
			return
		}
		index := len(session.Fields())
		if data.Index != nil {
			index = *data.Index
		}
		field := session.AddField(data.Variant, index)
		s.sendArtifacts(ctx, conn, session, notes, msg.ID, field.Name, nil)

	case TypeUpdate:
		var data UpdateData
		if !s.decode(ctx, conn, msg, &data) {
			return
		}
		field, err := session.UpdateField(data.Name, data.Patch)
		if err != nil {
			s.sendFailure(ctx, conn, msg.ID, err)
			return
		}
		s.sendArtifacts(ctx, conn, session, notes, msg.ID, field.Name, nil)

	case TypeRemove:
		var data RemoveData
		if !s.decode(ctx, conn, msg, &data) {
			return
		}
		if err := session.RemoveField(data.Name); err != nil {
			s.sendFailure(ctx, conn, msg.ID, err)
			return
		}
		s.sendArtifacts(ctx, conn, session, notes, msg.ID, "", nil)

	case TypeReset:
		session.Reset()
		s.sendArtifacts(ctx, conn, session, notes, msg.ID, "", nil)

	case TypeImport:
		var data ImportData
		if !s.decode(ctx, conn, msg, &data) {
			return
		}
		if err := session.Import([]byte(data.JSON)); err != nil {
			s.sendFailure(ctx, conn, msg.ID, err)
			return
		}
		s.sendArtifacts(ctx, conn, session, notes, msg.ID, "", nil)

	case TypeLibrary:
		var data LibraryData
		if !s.decode(ctx, conn, msg, &data) {
			return
		}
		if _, err := session.SetLibrary(ctx, data.Target); err != nil {
			s.sendFailure(ctx, conn, msg.ID, err)
			return
		}
		s.sendArtifacts(ctx, conn, session, notes, msg.ID, "", nil)

	case TypeSubmit:
		var data SubmitData
		if !s.decode(ctx, conn, msg, &data) {
			return
		}
		result, err := session.Submit(ctx, data.Values)
		if err != nil {
			s.sendFailure(ctx, conn, msg.ID, err)
			return
		}
		s.send(ctx, conn, ServerMessage{
			Type:      TypeSubmission,
			RequestID: msg.ID,
			Data: SubmissionData{
				Valid:         result.Valid,
				Issues:        result.Issues,
				Preview:       result.Preview,
				Echo:          result.Echo,
				Notifications: notes.Drain(),
			},
		})

	default:
		s.sendError(ctx, conn, msg.ID, CodeUnknownType, fmt.Sprintf("unknown message type: %s", msg.Type))
	}
}

func (s *Server) decode(ctx context.Context, conn *websocket.Conn, msg ClientMessage, v any) bool {
	if len(msg.Data) == 0 {
		s.sendError(ctx, conn, msg.ID, CodeInvalidData, fmt.Sprintf("%s requires data", msg.Type))
		return false
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		s.sendError(ctx, conn, msg.ID, CodeInvalidData, fmt.Sprintf("invalid %s data", msg.Type))
		return false
	}
	return true
}

func (s *Server) sendArtifacts(ctx context.Context, conn *websocket.Conn, session *builder.Session, notes *builder.Recorder, requestID, field string, pending []builder.Notification) {
	artifacts, err := session.Artifacts()
	if err != nil {
		s.sendFailure(ctx, conn, requestID, err)
		return
	}
	s.send(ctx, conn, ServerMessage{
		Type:      TypeArtifacts,
		RequestID: requestID,
		Data: ArtifactsData{
			Library:       session.Library(),
			Field:         field,
			Artifacts:     artifacts,
			Notifications: append(pending, notes.Drain()...),
		},
	})
}

func (s *Server) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	if err := wsjson.Write(ctx, conn, msg); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Printf("server: websocket write: %v", err)
	}
}

func (s *Server) sendError(ctx context.Context, conn *websocket.Conn, requestID, code, message string) {
	s.send(ctx, conn, ServerMessage{
		Type:      TypeError,
		RequestID: requestID,
		Data:      ErrorData{Code: code, Message: message},
	})
}

func (s *Server) sendFailure(ctx context.Context, conn *websocket.Conn, requestID string, err error) {
	_, data := classify(err)
	s.sendError(ctx, conn, requestID, data.Code, data.Message)
}

func (s *Server) targetInfos() []TargetInfo {
	list := s.generator.Targets().List()
	out := make([]TargetInfo, 0, len(list))
	for _, t := range list {
		out = append(out, TargetInfo{ID: t.ID, Label: t.Label})
	}
	return out
}
