package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/lofideck/lofideck/internal/geom"
	"github.com/lofideck/lofideck/internal/playback"
	"github.com/lofideck/lofideck/internal/playlist"
	"github.com/lofideck/lofideck/internal/prefs"
	"github.com/lofideck/lofideck/internal/wm"
)

// Server exposes the desk and playback engines over HTTP and a websocket
// push channel. Browser clients render the desktop from broadcast state
// snapshots and drive it through the REST surface; one of them hosts the
// embedded player and relays its events back.
type Server struct {
	log       *slog.Logger
	desk      *wm.Desk
	ctrl      *playback.Controller
	playlists *playlist.Manager
	prefs     *prefs.Facade

	hub    *Hub
	player *remotePlayer

	// notify carries a pending-broadcast signal. Engine change callbacks
	// only ever push here; the broadcaster goroutine reads snapshots on
	// its own stack so callbacks never re-enter the engines.
	notify chan struct{}

	upgrader websocket.Upgrader
}

// New wires a server around the engines. The controller is bound to the
// remote player bridge; it becomes ready once a client reports playerReady.
func New(log *slog.Logger, desk *wm.Desk, ctrl *playback.Controller, playlists *playlist.Manager, pf *prefs.Facade) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		log:       log,
		desk:      desk,
		ctrl:      ctrl,
		playlists: playlists,
		prefs:     pf,
		hub:       NewHub(),
		notify:    make(chan struct{}, 1),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.player = newRemotePlayer(s.hub.Broadcast)
	desk.Registry().OnChange(s.signal)
	ctrl.OnChange(s.signal)
	return s
}

// Player returns the bridge handed to the controller on readiness.
func (s *Server) Player() playback.Player { return s.player }

func (s *Server) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Run starts the hub and the broadcast loop and blocks until ctx is done.
func (s *Server) Run(ctx context.Context) {
	go s.hub.Run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.notify:
			s.broadcastState()
		}
	}
}

type stateMessage struct {
	Type     string            `json:"type"`
	Windows  []wm.FrameInfo    `json:"windows"`
	Playback playback.Snapshot `json:"playback"`
	Viewport geom.Size         `json:"viewport"`
}

func (s *Server) stateSnapshot() stateMessage {
	return stateMessage{
		Type:     "state",
		Windows:  s.desk.Snapshot(),
		Playback: s.ctrl.Snapshot(),
		Viewport: s.desk.Registry().Viewport(),
	}
}

func (s *Server) broadcastState() {
	data, err := json.Marshal(s.stateSnapshot())
	if err != nil {
		s.log.Error("marshal state", "error", err)
		return
	}
	s.hub.Broadcast(data)
}

// Router builds the full HTTP surface.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.handleWS)
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Post("/viewport", s.handleViewport)

		r.Route("/windows/{type}", func(r chi.Router) {
			r.Post("/open", s.handleWindowOpen)
			r.Post("/close", s.handleWindowClose)
			r.Post("/toggle", s.handleWindowToggle)
			r.Post("/focus", s.handleWindowFocus)
			r.Post("/maximize", s.handleWindowMaximize)
			r.Post("/position", s.handleWindowPosition)
			r.Post("/drag/start", s.handleDragStart)
			r.Post("/drag/move", s.handleDragMove)
			r.Post("/drag/end", s.handleDragEnd)
			r.Post("/resize/start", s.handleResizeStart)
			r.Post("/resize/move", s.handleResizeMove)
			r.Post("/resize/end", s.handleResizeEnd)
		})

		r.Route("/playback", func(r chi.Router) {
			r.Post("/play", s.handlePlay)
			r.Post("/pause", s.handlePause)
			r.Post("/next", s.handleNext)
			r.Post("/previous", s.handlePrevious)
			r.Post("/shuffle", s.handleShuffle)
			r.Post("/volume", s.handleVolume)
			r.Post("/mute", s.handleMute)
			r.Post("/track", s.handleTrackSelect)
			r.Post("/seek", s.handleTrackSeek)
			r.Post("/favorite", s.handleFavoriteToggle)
		})

		r.Route("/playlists", func(r chi.Router) {
			r.Get("/", s.handlePlaylistList)
			r.Post("/", s.handlePlaylistSave)
			r.Delete("/{id}", s.handlePlaylistDelete)
			r.Post("/{id}/activate", s.handlePlaylistActivate)
		})

		r.Get("/preferences", s.handlePrefsGet)
		r.Put("/preferences", s.handlePrefsPut)

		r.Route("/player", func(r chi.Router) {
			r.Post("/ready", s.handlePlayerReady)
			r.Post("/state", s.handlePlayerState)
			r.Post("/time", s.handlePlayerTime)
			r.Post("/error", s.handlePlayerError)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.stateSnapshot())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	client := &Client{
		hub:       s.hub,
		log:       s.log,
		conn:      conn,
		send:      make(chan []byte, 64),
		onMessage: s.handleClientMessage,
	}
	s.hub.register <- client

	go client.writePump()
	go client.readPump()

	// New clients get the current state immediately rather than waiting
	// for the next change.
	if data, err := json.Marshal(s.stateSnapshot()); err == nil {
		select {
		case client.send <- data:
		default:
		}
	}
}

// clientMessage is the envelope for everything a browser pushes over the
// socket: viewport reports and player events.
type clientMessage struct {
	Type     string  `json:"type"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	State    string  `json:"state,omitempty"`
	Seconds  float64 `json:"seconds,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Playing  bool    `json:"playing,omitempty"`
	Code     int     `json:"code,omitempty"`
}

func (s *Server) handleClientMessage(raw []byte) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.log.Debug("bad client message", "error", err)
		return
	}
	switch msg.Type {
	case "viewport":
		if msg.Width > 0 && msg.Height > 0 {
			s.desk.Registry().SetViewport(geom.Size{Width: msg.Width, Height: msg.Height})
		}
	case "playerReady":
		s.ctrl.Initialize(s.player)
	case "playerTime":
		s.player.report(msg.Seconds, msg.Duration, msg.Playing)
	case "playerState":
		s.ctrl.HandleStateChange(playback.ParseState(msg.State))
	case "playerError":
		s.ctrl.HandleError(msg.Code)
	default:
		s.log.Debug("unknown client message", "type", msg.Type)
	}
}
