package web

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"deskhand/computeruse"
	"deskhand/config"
	"deskhand/license"
	"deskhand/storage"
)

//go:embed static/*
var staticFiles embed.FS

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// Server represents the web server
type Server struct {
	db         *storage.DB
	config     *config.Config
	controller computeruse.Controller
	license    *license.Client
	port       int
	hub        *Hub
	mu         sync.RWMutex
	status     string
}

// NewServer creates a new web server
func NewServer(db *storage.DB, cfg *config.Config, controller computeruse.Controller, lic *license.Client, port int) *Server {
	hub := NewHub()
	go hub.Run()

	return &Server{
		db:         db,
		config:     cfg,
		controller: controller,
		license:    lic,
		port:       port,
		hub:        hub,
		status:     "idle",
	}
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	slog.Info("Starting web server", "port", s.port, "url", fmt.Sprintf("http://localhost:%d", s.port))

	return http.ListenAndServe(addr, s.Handler())
}

// Handler builds the route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Computer control endpoints
	mux.HandleFunc("/api/computer/mouse/move", s.handleMouseMove)
	mux.HandleFunc("/api/computer/mouse/click", s.handleMouseClick)
	mux.HandleFunc("/api/computer/mouse/double_click", s.handleMouseDoubleClick)
	mux.HandleFunc("/api/computer/mouse/drag", s.handleMouseDrag)
	mux.HandleFunc("/api/computer/mouse/scroll", s.handleMouseScroll)
	mux.HandleFunc("/api/computer/keyboard/type", s.handleKeyboardType)
	mux.HandleFunc("/api/computer/keyboard/key", s.handleKeyboardKey)
	mux.HandleFunc("/api/computer/screen_size", s.handleScreenSize)

	// App endpoints
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/license", s.handleLicense)
	mux.HandleFunc("/api/license/activate", s.handleLicenseActivate)
	mux.HandleFunc("/api/license/checkout", s.handleLicenseCheckout)
	mux.HandleFunc("/ws", s.handleWebSocket)

	// Static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// embed is resolved at build time, Sub cannot fail for a present dir
		panic(err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))

	return mux
}

// GetConfig returns the current configuration (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// SetStatus updates the agent status shown to clients
func (s *Server) SetStatus(status string) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()

	s.hub.BroadcastMessage(Message{
		Type: MessageTypeStatus,
		Data: StatusMessage{Status: status},
	})
}

// BroadcastAction notifies all connected clients of a performed action
func (s *Server) BroadcastAction(a *storage.Action) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeAction,
		Data: ActionMessage{
			ID:        a.ID,
			Kind:      a.Kind,
			Detail:    a.Detail,
			Success:   a.Success,
			Timestamp: a.Timestamp.Format("2006-01-02T15:04:05Z"),
		},
	})
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
