// Package stats streams per-frame metrics to websocket clients so the
// renderer can be observed without attaching a debugger.
package stats

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/spaghettifunk/prisma/engine/containers"
	"github.com/spaghettifunk/prisma/engine/core"
)

// historySize bounds the backlog replayed to a freshly connected client.
const historySize = 120

// FrameStats is one per-frame sample, serialized as JSON.
type FrameStats struct {
	Frame       uint64  `json:"frame"`
	FPS         float64 `json:"fps"`
	FrameTimeMs float64 `json:"frame_time_ms"`
	TotalTime   float64 `json:"total_time"`
	Objects     int     `json:"objects"`
	FillMode    string  `json:"fill_mode"`
}

// Broadcaster fans frame samples out to every connected websocket
// client. Slow or dead clients are dropped rather than allowed to
// stall the frame loop.
type Broadcaster struct {
	addr     string
	upgrader websocket.Upgrader
	server   *http.Server

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	history *containers.RingQueue[FrameStats]
}

func NewBroadcaster(addr string) *Broadcaster {
	return &Broadcaster{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  512,
			WriteBufferSize: 1024,
			// Local diagnostics endpoint, no origin policy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
		history: containers.NewRingQueue[FrameStats](historySize),
	}
}

// Handler returns the HTTP handler serving the /stats endpoint.
func (b *Broadcaster) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", b.handleStats)
	return mux
}

// Start serves the websocket endpoint on /stats in the background.
func (b *Broadcaster) Start() error {
	b.server = &http.Server{Addr: b.addr, Handler: b.Handler()}

	go func() {
		core.LogInfo("frame stats available at ws://%s/stats", b.addr)
		if err := b.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			core.LogError("stats server failed: %s", err.Error())
		}
	}()
	return nil
}

func (b *Broadcaster) handleStats(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		core.LogWarn("stats upgrade failed: %s", err.Error())
		return
	}
	// Replay recent samples so the client's graphs start populated.
	// This happens before the connection registers: the websocket
	// allows one concurrent writer, so Publish must not see the conn
	// until the replay finishes. Samples published meanwhile are lost
	// to this client, which a stats feed tolerates.
	b.mu.Lock()
	backlog := b.history.Items()
	b.mu.Unlock()
	for _, s := range backlog {
		conn.SetWriteDeadline(time.Now().Add(100 * time.Millisecond))
		if err := conn.WriteJSON(s); err != nil {
			conn.Close()
			return
		}
	}

	b.mu.Lock()
	b.clients[conn] = struct{}{}
	count := len(b.clients)
	b.mu.Unlock()
	core.LogDebug("stats client connected (%d total)", count)

	// Drain reads so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				b.drop(conn)
				return
			}
		}
	}()
}

// Publish sends the sample to every client. Never blocks the caller
// beyond the write deadline.
func (b *Broadcaster) Publish(s FrameStats) {
	b.mu.Lock()
	b.history.Enqueue(s)
	conns := make([]*websocket.Conn, 0, len(b.clients))
	for conn := range b.clients {
		conns = append(conns, conn)
	}
	b.mu.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(100 * time.Millisecond))
		if err := conn.WriteJSON(s); err != nil {
			b.drop(conn)
		}
	}
}

// ClientCount reports the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

func (b *Broadcaster) drop(conn *websocket.Conn) {
	b.mu.Lock()
	if _, ok := b.clients[conn]; ok {
		delete(b.clients, conn)
		conn.Close()
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Close() error {
	b.mu.Lock()
	for conn := range b.clients {
		conn.Close()
	}
	b.clients = make(map[*websocket.Conn]struct{})
	b.mu.Unlock()
	if b.server != nil {
		return b.server.Close()
	}
	return nil
}
