package observer

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"marsim/internal/protocol"
)

// WorldParams describe the run to new subscribers.
type WorldParams struct {
	GridWidth  int
	GridHeight int
	Seed       int64
}

// Server streams TURN frames to websocket observers. The feed is read-only
// and decoupled from the sim loop: the driver calls Publish after each turn,
// slow observers drop frames instead of stalling anyone.
type Server struct {
	params WorldParams
	log    *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu         sync.Mutex
	sessions   map[uint64]chan []byte
	latest     []byte
	latestTurn uint64
}

func NewServer(params WorldParams, logger *log.Logger) *Server {
	return &Server{
		params: params,
		log:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		sessions: make(map[uint64]chan []byte),
	}
}

// Publish broadcasts a completed turn to every subscriber.
func (s *Server) Publish(frame protocol.TurnMsg) {
	b, err := json.Marshal(frame)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = b
	s.latestTurn = frame.Turn
	for id, out := range s.sessions {
		select {
		case out <- b:
		default:
			// Backpressure: this observer is behind, skip the frame.
			_ = id
		}
	}
}

// Sessions reports the current subscriber count.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub protocol.SubscribeMsg
		if err := json.Unmarshal(msg, &sub); err != nil {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad subscribe"), time.Now().Add(time.Second))
			return
		}
		if sub.Type != protocol.TypeSubscribe || sub.ProtocolVersion != protocol.Version {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
			return
		}

		id, out, welcome := s.register()
		defer s.unregister(id)

		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, welcome); err != nil {
			return
		}

		done := make(chan struct{})

		// Writer goroutine.
		go func() {
			defer close(done)
			for b := range out {
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}()

		// Reader loop: observers send nothing after SUBSCRIBE; we read only
		// to notice the close.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		s.unregister(id)
		<-done
	}
}

func (s *Server) register() (id uint64, out chan []byte, welcome []byte) {
	id = s.nextID.Add(1)
	out = make(chan []byte, 8)

	s.mu.Lock()
	defer s.mu.Unlock()

	welcome, _ = json.Marshal(protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		GridWidth:       s.params.GridWidth,
		GridHeight:      s.params.GridHeight,
		Seed:            s.params.Seed,
		Turn:            s.latestTurn,
	})

	s.sessions[id] = out
	if s.latest != nil {
		out <- s.latest
	}
	return id, out, welcome
}

func (s *Server) unregister(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if out, ok := s.sessions[id]; ok {
		delete(s.sessions, id)
		close(out)
	}
}
