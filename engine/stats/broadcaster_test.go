package stats

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterPublishesToClient(t *testing.T) {
	b := NewBroadcaster("")
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()
	defer b.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stats"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Registration happens in the upgrade handler; give it a moment.
	require.Eventually(t, func() bool { return b.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	sample := FrameStats{Frame: 42, FPS: 60, FrameTimeMs: 16.6, Objects: 32, FillMode: "solid"}
	b.Publish(sample)

	var got FrameStats
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, sample, got)
}

func TestBroadcasterDropsClosedClients(t *testing.T) {
	b := NewBroadcaster("")
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()
	defer b.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stats"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return b.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool {
		b.Publish(FrameStats{})
		return b.ClientCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestBroadcasterReplaysHistoryToNewClient(t *testing.T) {
	b := NewBroadcaster("")
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()
	defer b.Close()

	// Published before any client connects; kept in the backlog.
	b.Publish(FrameStats{Frame: 1, FPS: 60})
	b.Publish(FrameStats{Frame: 2, FPS: 61})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stats"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var got FrameStats
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, uint64(1), got.Frame)
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, uint64(2), got.Frame)
}

func TestBroadcasterReplayDoesNotInterleaveWithPublish(t *testing.T) {
	b := NewBroadcaster("")
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()
	defer b.Close()

	for i := 0; i < historySize; i++ {
		b.Publish(FrameStats{Frame: uint64(i)})
	}

	// Keep publishing while the client connects and its backlog
	// replays; only one goroutine may ever write a connection.
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		frame := uint64(historySize)
		for {
			select {
			case <-stop:
				return
			default:
				b.Publish(FrameStats{Frame: frame})
				frame++
				time.Sleep(time.Millisecond)
			}
		}
	}()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stats"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Interleaved writers corrupt frames; every read must decode and
	// the sequence must never run backwards.
	var last uint64
	for i := 0; i < historySize+20; i++ {
		var got FrameStats
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		require.NoError(t, conn.ReadJSON(&got))
		if i > 0 {
			assert.GreaterOrEqual(t, got.Frame, last)
		}
		last = got.Frame
	}
	close(stop)
	<-done
}

func TestPublishWithoutClients(t *testing.T) {
	b := NewBroadcaster("")
	// Must be a no-op, not a panic.
	b.Publish(FrameStats{Frame: 1})
	assert.Zero(t, b.ClientCount())
}
