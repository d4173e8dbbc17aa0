package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/dusk-indust/critics/internal/export"
	"github.com/dusk-indust/critics/internal/persona"
	"github.com/dusk-indust/critics/internal/service"
	"github.com/dusk-indust/critics/internal/status"
)

// maxDocumentBytes bounds an uploaded document.
const maxDocumentBytes = 4 << 20

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	checks := append([]status.Checker{status.Store(s.svc.Store())}, s.checks...)
	report := status.Run(r.Context(), checks...)

	code := http.StatusOK
	if report.Status == status.Unhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}

// --- Personas ---

func (s *Server) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"personas": s.svc.Catalog().List()})
}

func (s *Server) handleGetPersona(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Catalog().Get(r.PathValue("id"))
	if errors.Is(err, persona.ErrUnknownPersona) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// --- Documents ---

type createDocumentRequest struct {
	Title    string `json:"title,omitempty"`
	Filename string `json:"filename,omitempty"`
	Content  string `json:"content"`
}

// handleCreateDocument accepts either a JSON createDocumentRequest or a raw
// markdown/plain-text body with an optional ?filename= query parameter.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxDocumentBytes)
	defer body.Close()

	var req createDocumentRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "text/markdown", "text/plain", "text/x-markdown":
		raw, err := io.ReadAll(body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "reading body: "+err.Error())
			return
		}
		req.Content = string(raw)
		req.Filename = r.URL.Query().Get("filename")
		req.Title = r.URL.Query().Get("title")
	default:
		if err := readJSON(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
			return
		}
	}

	doc, err := s.svc.CreateDocument(r.Context(), service.NewDocument{
		Title:    req.Title,
		Filename: req.Filename,
		Content:  req.Content,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.svc.Store().ListDocuments(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": nonNil(docs)})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Store().GetDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// --- Reviews ---

type reviewRequest struct {
	PersonaIDs []string `json:"persona_ids,omitempty"`
	Model      string   `json:"model,omitempty"`
}

func (r reviewRequest) options() service.ReviewOptions {
	return service.ReviewOptions{PersonaIDs: r.PersonaIDs, Model: r.Model}
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.svc.Store().GetDocument(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	reviews, err := s.svc.Store().ListReviews(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": nonNil(reviews)})
}

// handleStreamReview starts a review and streams its events as SSE frames.
// An empty body reviews with every persona.
func (s *Server) handleStreamReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if r.ContentLength != 0 {
		if err := readJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
			return
		}
	}

	_, events, err := s.svc.StartReview(r.Context(), r.PathValue("id"), req.options())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	stream := newReviewStream(w)
	for ev := range events {
		if err := stream.send(ev); err != nil {
			// Client is gone; returning cancels the request context.
			return
		}
	}
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Store().GetReview(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.svc.Store().Comments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": nonNil(comments)})
}

// --- Synthesis ---

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	metas, err := s.svc.Synthesize(r.Context(), r.PathValue("id"), force)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"meta_comments": nonNil(metas)})
}

func (s *Server) handleListMeta(w http.ResponseWriter, r *http.Request) {
	metas, err := s.svc.Store().MetaComments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"meta_comments": nonNil(metas)})
}

// --- Export ---

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	data, err := export.ExportReview(r.Context(), s.svc.Store(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out, err := export.Render(data, format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", export.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// readJSON decodes a JSON body into v.
func readJSON(body io.Reader, v any) error {
	if body == nil {
		return errors.New("empty request body")
	}
	return json.NewDecoder(body).Decode(v)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
