package transport

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/xdevs-go/kernel/kernel"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Injector is the subset of *kernel.Coordinator the server needs; a
// narrow interface keeps Server testable against a fake.
type Injector interface {
	InjectRemote(portName string, blobs [][]byte, e float64, deserializer kernel.Deserializer) (bool, error)
}

// Server exposes inject(port_name, values, e) over WebSocket
// (spec.md §4.5, §6) and broadcasts every kernel.Event to connected
// clients, adapted from the teacher's apps/api/cmd/server/main.go +
// internal/handlers package from a UI-simulation-control surface to a
// single RPC-like inject endpoint plus an event feed.
type Server struct {
	hub    *Hub
	coord  Injector
	codec  kernel.Deserializer
	events *kernel.EventBus

	httpServer *http.Server
}

// NewServer builds a server that injects into coord, decoding request
// values with codec and broadcasting events from events (nil disables
// the event feed).
func NewServer(coord Injector, codec kernel.Deserializer, events *kernel.EventBus) *Server {
	s := &Server{hub: NewHub(), coord: coord, codec: codec, events: events}
	s.hub.SetMessageHandler(s.handleMessage)
	return s
}

// ServeHTTP upgrades the connection and registers it with the hub.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("transport: upgrade error: %v", err)
		return
	}

	client := &Client{hub: s.hub, conn: conn, send: make(chan []byte, 256), id: uuid.New().String()}
	s.hub.add(client)

	go client.writePump()
	go client.readPump()
}

// Serve subscribes to events if configured and runs an HTTP server on addr exposing this Server at /inject until
// ctx is canceled (spec.md §4.5: "runs on a background thread" — here,
// a background goroutine while the caller's driver loop runs in the
// foreground).
func (s *Server) Serve(ctx context.Context, addr string) error {
	if s.events != nil {
		ch := s.events.SubscribeChannel(64)
		go func() {
			for ev := range ch {
				s.hub.BroadcastJSON(NewEventMessage(ev.Level.String(), ev.Message))
			}
		}()
	}

	mux := http.NewServeMux()
	mux.Handle("/inject", s)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		payload, _ := Encode(map[string]interface{}{"status": "healthy", "clients": s.hub.ClientCount()})
		w.Write(payload)
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("transport: listening on %s", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleMessage(clientID string, msgType MessageType, data []byte) {
	switch msgType {
	case MsgInject:
		s.handleInject(clientID, data)
	default:
		log.Printf("transport: unknown message type from %s: %s", clientID, msgType)
		s.sendError(clientID, "unknown message type: "+string(msgType))
	}
}

func (s *Server) handleInject(clientID string, data []byte) {
	req, err := ParseInjectRequest(data)
	if err != nil {
		s.sendError(clientID, err.Error())
		return
	}

	accepted, err := s.coord.InjectRemote(req.Port, req.Values, req.E, s.codec)
	resp := NewInjectResponse(req.RequestID, accepted, err)
	payload, marshalErr := Encode(resp)
	if marshalErr != nil {
		log.Printf("transport: encode inject response: %v", marshalErr)
		return
	}
	s.hub.SendToClient(clientID, payload)
}

func (s *Server) sendError(clientID, message string) {
	payload, _ := Encode(&ErrorMessage{Type: MsgError, Message: message})
	s.hub.SendToClient(clientID, payload)
}
