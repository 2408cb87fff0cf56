// Package server exposes canvas sessions over HTTP: JSON commands, raster
// preview, PDF export, image uploads and a websocket change feed.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"

	"CanvasBoard/internal/export"
	"CanvasBoard/internal/render"
	"CanvasBoard/internal/state"
	"CanvasBoard/internal/upload"
)

const maxBodyBytes = 1 << 20

type Options struct {
	AllowedOrigins []string
}

type Server struct {
	store    *state.Store
	proc     *state.Processor
	uploads  *upload.Store
	hub      *Hub
	origins  []string
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

// New wires the routes. The store's OnChange hook is taken over by the event
// hub. uploads may be nil, which disables /api/upload and /uploads/.
func New(store *state.Store, uploads *upload.Store, opts Options) *Server {
	s := &Server{
		store:   store,
		proc:    state.NewProcessor(store),
		uploads: uploads,
		hub:     NewHub(),
		origins: opts.AllowedOrigins,
		mux:     http.NewServeMux(),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	store.OnChange = s.hub.Publish
	s.routes()
	return s
}

func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/canvas/init", s.handleInit)
	s.mux.HandleFunc("GET /api/canvas/{id}", s.handleGet)
	s.mux.HandleFunc("POST /api/canvas/{id}/stroke", s.handleStroke)
	s.mux.HandleFunc("POST /api/canvas/{id}/rectangle", s.handleRectangle)
	s.mux.HandleFunc("POST /api/canvas/{id}/circle", s.handleCircle)
	s.mux.HandleFunc("POST /api/canvas/{id}/text", s.handleText)
	s.mux.HandleFunc("POST /api/canvas/{id}/image", s.handleImage)
	s.mux.HandleFunc("POST /api/canvas/{id}/draw", s.handleDraw)
	s.mux.HandleFunc("DELETE /api/canvas/{id}/clear", s.handleClear)
	s.mux.HandleFunc("GET /api/canvas/{id}/preview", s.handlePreview)
	s.mux.HandleFunc("GET /api/canvas/{id}/export/pdf", s.handleExportPDF)
	s.mux.HandleFunc("GET /api/canvas/{id}/events", s.handleEvents)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	if s.uploads != nil {
		s.mux.HandleFunc("POST /api/upload", s.handleUpload)
		s.mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploads.Dir()))))
	}
}

// Handler returns the routes wrapped with CORS and request logging.
func (s *Server) Handler() http.Handler {
	return logRequests(s.cors(s.mux))
}

type initRequest struct {
	Width  *int `json:"width"`
	Height *int `json:"height"`
}

type initResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type ackResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Revision uint64 `json:"revision"`
	Appended bool   `json:"appended"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	var req initRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	width, height := 800, 600
	if req.Width != nil {
		width = *req.Width
	}
	if req.Height != nil {
		height = *req.Height
	}
	sess, err := s.store.Create(width, height)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, initResponse{Success: true, SessionID: sess.ID, Width: sess.Width, Height: sess.Height})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

// commit decodes a request body into req and runs op with it.
func commit[T any](w http.ResponseWriter, r *http.Request, what string, op func(id string, req T) (state.Result, error)) {
	var req T
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := op(r.PathValue("id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	msg := what + " added"
	if !res.Appended {
		msg = what + " ignored"
	}
	writeJSON(w, http.StatusOK, ackResponse{Success: true, Message: msg, Revision: res.Revision, Appended: res.Appended})
}

func (s *Server) handleStroke(w http.ResponseWriter, r *http.Request) {
	commit(w, r, "Stroke", s.proc.Stroke)
}

func (s *Server) handleRectangle(w http.ResponseWriter, r *http.Request) {
	commit(w, r, "Rectangle", s.proc.Rectangle)
}

func (s *Server) handleCircle(w http.ResponseWriter, r *http.Request) {
	commit(w, r, "Circle", s.proc.Circle)
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	commit(w, r, "Text", s.proc.Text)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	commit(w, r, "Image", s.proc.Image)
}

func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	commit(w, r, "Drawing", s.proc.Draw)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	res, err := s.proc.Clear(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Success: true, Message: "Canvas cleared", Revision: res.Revision})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := sess.WithRaster(func(rs *render.Raster) error { return rs.EncodePNG(&buf) }); err != nil {
		writeError(w, fmt.Errorf("%w: %v", state.ErrRenderFailure, err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, err := s.store.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.PDF(&buf, sess); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(id)))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, err := s.store.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[EVENTS] Upgrade failed for %s: %v", id, err)
		return
	}
	hello := state.Event{SessionID: id, Revision: sess.View().Revision, Op: "hello"}
	s.hub.serve(id, conn, hello)
}

type uploadResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.uploads.MaxBytes()+(64<<10))
	file, header, err := r.FormFile("image")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, upload.ErrTooLarge)
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No file uploaded"})
		return
	}
	defer file.Close()

	name, err := s.uploads.Save(file, header.Filename)
	if err != nil {
		writeError(w, err)
		return
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		Success:  true,
		Filename: name,
		URL:      fmt.Sprintf("%s://%s/uploads/%s", scheme, r.Host, name),
	})
}

type healthResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Sessions int    `json:"sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "OK", Message: "CanvasBoard API is running", Sessions: s.store.Len()})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || s.originAllowed(origin)
}

func (s *Server) originAllowed(origin string) bool {
	return slices.Contains(s.origins, "*") || slices.Contains(s.origins, origin)
}

func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: malformed JSON body: %v", state.ErrValidation, err)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, state.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, state.ErrInvalidDimensions), errors.Is(err, state.ErrValidation),
		errors.Is(err, upload.ErrUnsupportedType):
		return http.StatusBadRequest
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[SERVER] Error: %v", err)
	}
	msg := err.Error()
	if errors.Is(err, state.ErrNotFound) {
		msg = "Session not found"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[SERVER] Error encoding response: %v", err)
	}
}
