package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lofideck/lofideck/internal/playback"
	"github.com/lofideck/lofideck/internal/playlist"
	"github.com/lofideck/lofideck/internal/prefs"
	"github.com/lofideck/lofideck/internal/store"
)

func (s *Server) handlePlay(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.Play()
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handlePause(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.Pause()
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleNext(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.NextTrack()
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handlePrevious(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.PreviousTrack()
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleShuffle(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.ToggleShuffle()
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

type volumeRequest struct {
	Volume int `json:"volume"`
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	var req volumeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.ctrl.SetVolume(req.Volume)
	snap := s.ctrl.Snapshot()
	if err := s.prefs.Save(r.Context(), prefs.Preferences{Volume: &snap.Volume, Muted: &snap.Muted}); err != nil {
		s.log.Warn("persist volume", "error", err)
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleMute(w http.ResponseWriter, r *http.Request) {
	s.ctrl.ToggleMute()
	snap := s.ctrl.Snapshot()
	if err := s.prefs.Save(r.Context(), prefs.Preferences{Muted: &snap.Muted}); err != nil {
		s.log.Warn("persist mute", "error", err)
	}
	writeJSON(w, http.StatusOK, snap)
}

type trackRequest struct {
	Index int `json:"index"`
}

func (s *Server) handleTrackSelect(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := s.ctrl.PlayTrack(req.Index); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleTrackSeek(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := s.ctrl.SeekToTrack(req.Index); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

type favoriteRequest struct {
	TrackID string `json:"track_id"`
}

type favoriteResponse struct {
	TrackID  string `json:"track_id"`
	Favorite bool   `json:"favorite"`
}

func (s *Server) handleFavoriteToggle(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if err := decodeJSON(r, &req); err != nil || req.TrackID == "" {
		writeError(w, http.StatusBadRequest, "track_id is required")
		return
	}
	fav, err := s.prefs.ToggleFavorite(r.Context(), req.TrackID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "toggle favorite")
		return
	}
	writeJSON(w, http.StatusOK, favoriteResponse{TrackID: req.TrackID, Favorite: fav})
}

func (s *Server) handlePlaylistList(w http.ResponseWriter, r *http.Request) {
	lists, err := s.playlists.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list playlists")
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (s *Server) handlePlaylistSave(w http.ResponseWriter, r *http.Request) {
	var p playlist.Playlist
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	saved, err := s.playlists.Save(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handlePlaylistDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.playlists.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "delete playlist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePlaylistActivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.playlists.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "playlist not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "load playlist")
		return
	}
	if err := s.ctrl.LoadPlaylist(p.Catalog()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.prefs.Save(r.Context(), prefs.Preferences{ActivePlaylist: &id}); err != nil {
		s.log.Warn("persist active playlist", "error", err)
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handlePrefsGet(w http.ResponseWriter, r *http.Request) {
	resolved, err := s.prefs.Resolve(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "resolve preferences")
		return
	}
	writeJSON(w, http.StatusOK, resolved)
}

func (s *Server) handlePrefsPut(w http.ResponseWriter, r *http.Request) {
	var p prefs.Preferences
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := s.prefs.Save(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "save preferences")
		return
	}
	if p.Volume != nil {
		s.ctrl.SetVolume(*p.Volume)
	}
	resolved, err := s.prefs.Resolve(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "resolve preferences")
		return
	}
	writeJSON(w, http.StatusOK, resolved)
}

// HTTP mirrors of the websocket player events, for clients that keep the
// event path on fetch instead of the socket.

func (s *Server) handlePlayerReady(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.Initialize(s.player)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type playerStateRequest struct {
	State string `json:"state"`
}

func (s *Server) handlePlayerState(w http.ResponseWriter, r *http.Request) {
	var req playerStateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.ctrl.HandleStateChange(playback.ParseState(req.State))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type playerTimeRequest struct {
	Seconds  float64 `json:"seconds"`
	Duration float64 `json:"duration"`
	Playing  bool    `json:"playing"`
}

func (s *Server) handlePlayerTime(w http.ResponseWriter, r *http.Request) {
	var req playerTimeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.player.report(req.Seconds, req.Duration, req.Playing)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type playerErrorRequest struct {
	Code int `json:"code"`
}

func (s *Server) handlePlayerError(w http.ResponseWriter, r *http.Request) {
	var req playerErrorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.ctrl.HandleError(req.Code)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
