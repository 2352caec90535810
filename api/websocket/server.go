package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/0xvlm/nftsearch-go/internal/constants"
	"github.com/0xvlm/nftsearch-go/search"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  constants.DefaultWSReadBufferSize,
	WriteBufferSize: constants.DefaultWSWriteBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now (should be configured in production)
		return true
	},
}

// Server handles WebSocket connections
type Server struct {
	hub     *Hub
	service *search.Service
	logger  *zap.Logger
}

// NewServer creates a new WebSocket server
func NewServer(service *search.Service, logger *zap.Logger) *Server {
	hub := NewHub(logger)
	go hub.Run()

	return &Server{
		hub:     hub,
		service: service,
		logger:  logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	client := NewClient(s.hub, conn, s.service.NewSuggester, s.logger)
	s.hub.register <- client

	go client.WritePump()
	go client.ReadPump()

	s.logger.Info("new websocket connection",
		zap.String("remote_addr", r.RemoteAddr))
}

// Hub returns the underlying hub (for broadcasting events)
func (s *Server) Hub() *Hub {
	return s.hub
}

// Stop stops the WebSocket server
func (s *Server) Stop() {
	s.hub.Stop()
}
