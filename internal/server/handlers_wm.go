package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lofideck/lofideck/internal/geom"
	"github.com/lofideck/lofideck/internal/wm"
)

func (s *Server) windowType(w http.ResponseWriter, r *http.Request) (wm.WindowType, bool) {
	t, err := wm.ParseType(chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return wm.WindowType{}, false
	}
	return t, true
}

type openRequest struct {
	Rect *geom.Rect `json:"rect,omitempty"`
}

func (s *Server) handleWindowOpen(w http.ResponseWriter, r *http.Request) {
	t, ok := s.windowType(w, r)
	if !ok {
		return
	}
	var req openRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
	}
	if err := s.desk.Open(t, req.Rect); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWindowClose(w http.ResponseWriter, r *http.Request) {
	t, ok := s.windowType(w, r)
	if !ok {
		return
	}
	if err := s.desk.Close(t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWindowToggle(w http.ResponseWriter, r *http.Request) {
	t, ok := s.windowType(w, r)
	if !ok {
		return
	}
	if err := s.desk.Toggle(t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWindowFocus(w http.ResponseWriter, r *http.Request) {
	t, ok := s.windowType(w, r)
	if !ok {
		return
	}
	if err := s.desk.Focus(t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWindowMaximize(w http.ResponseWriter, r *http.Request) {
	t, ok := s.windowType(w, r)
	if !ok {
		return
	}
	if err := s.desk.ToggleMaximize(t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWindowPosition(w http.ResponseWriter, r *http.Request) {
	t, ok := s.windowType(w, r)
	if !ok {
		return
	}
	var patch wm.Patch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	rect := s.desk.UpdatePosition(t, patch)
	writeJSON(w, http.StatusOK, rect)
}

type pointRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *Server) handleDragStart(w http.ResponseWriter, r *http.Request) {
	t, ok := s.windowType(w, r)
	if !ok {
		return
	}
	var req pointRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := s.desk.DragStart(t, geom.Point{X: req.X, Y: req.Y}); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDragMove(w http.ResponseWriter, r *http.Request) {
	t, ok := s.windowType(w, r)
	if !ok {
		return
	}
	var req pointRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.desk.DragMove(t, geom.Point{X: req.X, Y: req.Y})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDragEnd(w http.ResponseWriter, r *http.Request) {
	t, ok := s.windowType(w, r)
	if !ok {
		return
	}
	s.desk.DragEnd(t)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type resizeStartRequest struct {
	Edge string `json:"edge"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleResizeStart(w http.ResponseWriter, r *http.Request) {
	t, ok := s.windowType(w, r)
	if !ok {
		return
	}
	var req resizeStartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := s.desk.ResizeStart(t, req.Edge, geom.Point{X: req.X, Y: req.Y}); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResizeMove(w http.ResponseWriter, r *http.Request) {
	t, ok := s.windowType(w, r)
	if !ok {
		return
	}
	var req pointRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.desk.ResizeMove(t, geom.Point{X: req.X, Y: req.Y})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResizeEnd(w http.ResponseWriter, r *http.Request) {
	t, ok := s.windowType(w, r)
	if !ok {
		return
	}
	s.desk.ResizeEnd(t)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type viewportRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var req viewportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		writeError(w, http.StatusBadRequest, "viewport must be positive")
		return
	}
	s.desk.Registry().SetViewport(geom.Size{Width: req.Width, Height: req.Height})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
