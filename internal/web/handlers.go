package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/bakeryimport/internal/core"
	"github.com/JonMunkholm/bakeryimport/internal/logging"
	"github.com/JonMunkholm/bakeryimport/internal/web/templates"
)

// maxRequestBody bounds the import trigger body; it only carries two paths.
const maxRequestBody = 64 << 10

// handleIndex renders the import shell page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := templates.PageData{
		SourceDir:   s.cfg.Import.SourceDir,
		Destination: s.cfg.Import.Destination,
		Active:      s.service.Active(),
		NeedsAPIKey: s.cfg.Security.RequireAPIKey,
	}
	for _, def := range s.service.Tables() {
		data.Tables = append(data.Tables, templates.TableRow{
			Name:    def.Info.Key,
			Label:   def.Info.Label,
			Source:  def.Info.SourceFile,
			Columns: len(def.Columns),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Page(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

// startImportResponse is returned when a session is accepted.
type startImportResponse struct {
	SessionID string `json:"sessionId"`
	EventsURL string `json:"eventsUrl"`
	StatusURL string `json:"statusUrl"`
}

// handleStartImport starts an import session.
// Accepts a JSON body or form fields named sourceDir and destination.
func (s *Server) handleStartImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req core.Request
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form body")
			return
		}
		req.SourceDir = r.PostFormValue("sourceDir")
		req.Destination = r.PostFormValue("destination")
	}

	req, err := req.Normalize()
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	sess, err := s.service.Start(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	logging.FromContext(r.Context()).Info("import accepted", "session_id", sess.ID)
	writeJSON(w, http.StatusAccepted, startImportResponse{
		SessionID: sess.ID,
		EventsURL: "/api/import/" + sess.ID + "/events",
		StatusURL: "/api/import/" + sess.ID,
	})
}

// handleImportStatus returns a session's current state and, once finished,
// its result.
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, sess.Status())
}

// handleImportEvents streams a session's events via Server-Sent Events.
// Every event carries its position in the session history as id, so a
// reconnecting client resumes after Last-Event-ID instead of receiving the
// log again, even when this connection missed events.
func (s *Server) handleImportEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.service.Subscribe(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	lastID := -1
	if v := r.Header.Get("Last-Event-ID"); v != "" {
		lastID, _ = strconv.Atoi(v)
	} else if v := r.URL.Query().Get("lastEventId"); v != "" {
		lastID, _ = strconv.Atoi(v)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Seq <= lastID {
				continue
			}

			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", ev.Seq, ev.Type, data)
			if err := rc.Flush(); err != nil {
				return
			}

		case <-r.Context().Done():
			return
		}
	}
}

// handleStatus reports whether an import is running.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Status())
}

// tableSummary describes one destination table.
type tableSummary struct {
	Name       string        `json:"name"`
	Label      string        `json:"label"`
	Source     string        `json:"source"`
	PrimaryKey []string      `json:"primaryKey"`
	Columns    []columnField `json:"columns"`
}

type columnField struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Kind    string `json:"kind"`
	Default string `json:"default"`
	NotNull bool   `json:"notNull,omitempty"`
}

// handleListTables returns the table schema in load order.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	defs := s.service.Tables()
	out := make([]tableSummary, 0, len(defs))
	for _, def := range defs {
		ts := tableSummary{
			Name:       def.Info.Key,
			Label:      def.Info.Label,
			Source:     def.Info.SourceFile,
			PrimaryKey: def.PrimaryKey,
		}
		for _, c := range def.Columns {
			ts.Columns = append(ts.Columns, columnField{
				Name:    c.Name,
				Type:    c.Type,
				Kind:    c.Kind().String(),
				Default: c.Default,
				NotNull: c.NotNull,
			})
		}
		out = append(out, ts)
	}
	writeJSON(w, http.StatusOK, out)
}
