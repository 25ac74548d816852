package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/spritetag/pkg/errors"
	"github.com/matzehuels/spritetag/pkg/pipeline"
	"github.com/matzehuels/spritetag/pkg/session"
)

// defaultUploadName is used for raw uploads without a name parameter.
const defaultUploadName = "upload.svg"

type sessionResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	CreatedAt time.Time         `json:"created_at"`
	Progress  pipeline.Progress `json:"progress"`
	Finished  bool              `json:"finished"`
	Icons     int               `json:"icons"`
}

type iconsResponse struct {
	Query string                `json:"query"`
	Total int                   `json:"total"`
	Icons []pipeline.TaggedIcon `json:"icons"`
}

func newSessionResponse(sess *session.Session) sessionResponse {
	return sessionResponse{
		ID:        sess.ID,
		Name:      sess.Name,
		CreatedAt: sess.CreatedAt,
		Progress:  sess.Progress(),
		Finished:  sess.Finished(),
		Icons:     sess.Catalog().Len(),
	}
}

// handleCreate accepts a sprite and starts processing it.
// POST /api/sessions
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUpload)

	up, err := s.readUpload(r)
	if err != nil {
		writeError(w, err)
		return
	}

	sess := session.New(up.Name)
	if err := s.Store.Put(r.Context(), sess); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "store session"))
		return
	}
	s.Logger.Info("session created", "session", sess.ID, "file", up.Name, "bytes", len(up.Content))
	s.start(sess, up)

	w.Header().Set("Location", "/api/sessions/"+sess.ID)
	writeJSON(w, http.StatusAccepted, map[string]string{"id": sess.ID})
}

// readUpload accepts a multipart form with a "file" field (checked by
// extension) or a raw body (checked by Content-Type).
func (s *Server) readUpload(r *http.Request) (pipeline.Upload, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			return pipeline.Upload{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read form field %q", "file")
		}
		defer file.Close()
		if err := errors.ValidateUploadName(header.Filename); err != nil {
			return pipeline.Upload{}, err
		}
		if err := errors.ValidateSVGExtension(header.Filename); err != nil {
			return pipeline.Upload{}, err
		}
		data, err := io.ReadAll(file)
		if err != nil {
			return pipeline.Upload{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read upload")
		}
		return pipeline.Upload{Name: header.Filename, Content: string(data)}, nil
	}

	if err := errors.ValidateMediaType(r.Header.Get("Content-Type")); err != nil {
		return pipeline.Upload{}, err
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = defaultUploadName
	}
	if err := errors.ValidateUploadName(name); err != nil {
		return pipeline.Upload{}, err
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return pipeline.Upload{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read upload")
	}
	return pipeline.Upload{Name: name, Content: string(data)}, nil
}

// GET /api/sessions
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.Store.List(r.Context())
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "list sessions"))
		return
	}
	out := make([]sessionResponse, len(list))
	for i, sess := range list {
		out[i] = newSessionResponse(sess)
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/sessions/{id}
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

// DELETE /api/sessions/{id}
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "delete session"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/sessions/{id}/icons?q=
func (s *Server) handleIcons(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	q := r.URL.Query().Get("q")
	all := sess.Catalog().All()
	icons := pipeline.Filter(all, q)
	if icons == nil {
		icons = []pipeline.TaggedIcon{}
	}
	writeJSON(w, http.StatusOK, iconsResponse{Query: q, Total: len(all), Icons: icons})
}

// handleEvents streams session events as server-sent events. Icons
// published before the client connected are replayed first.
// GET /api/sessions/{id}/events
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, cancel := sess.Subscribe()
	defer cancel()

	s.streamEvents(r.Context(), w, flusher, events)
}

// streamEvents writes events until the channel closes or ctx is done. A
// closed channel ends the stream with "end", unless the subscriber was
// dropped for falling behind, which ends it with "overflow" instead.
func (s *Server) streamEvents(ctx context.Context, w io.Writer, flusher http.Flusher, events <-chan pipeline.Event) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				fmt.Fprint(w, "event: end\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			if ev.Kind == session.EventOverflow {
				fmt.Fprint(w, "event: overflow\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.Logger.Warn("failed to marshal event", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data)
			flusher.Flush()
		}
	}
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, err := s.Store.Get(r.Context(), id)
	if err != nil {
		if stderrors.Is(err, session.ErrNotFound) {
			writeError(w, errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id))
		} else {
			writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "load session"))
		}
		return nil, false
	}
	return sess, true
}

// =============================================================================
// Responses
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusFor(err), errorResponse{Error: errors.UserMessage(err), Code: string(code)})
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	var mbe *http.MaxBytesError
	if stderrors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidSVG, errors.ErrCodeInvalidDataURI:
		return http.StatusBadRequest
	case errors.ErrCodeInvalidMediaType:
		return http.StatusUnsupportedMediaType
	case errors.ErrCodeSessionNotFound, errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
