package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu       sync.Mutex
	messages []string
	fail     string
}

func (r *recorder) HandleMessage(raw []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, string(raw))
	if string(raw) == r.fail {
		return errors.New("bad payload")
	}
	return nil
}

func (r *recorder) received() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// newPushServer starts a websocket server that sends frames to each client
// and then closes the connection normally.
func newPushServer(t *testing.T, frames []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				t.Errorf("write: %v", err)
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
		// wait for the client's close reply
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
}

func TestWebSocketSource_DeliversFramesInOrder(t *testing.T) {
	frames := []string{
		`{"type":"bandwidth_stats","stats":[]}`,
		`{"type":"topology_update"}`,
		`{"type":"bandwidth_stats","stats":[{"dpid":1,"port_no":1}]}`,
	}
	srv := newPushServer(t, frames)
	rec := &recorder{}

	err := NewWebSocketSource(wsURL(srv)).Run(context.Background(), rec)

	require.NoError(t, err, "normal close ends the source without error")
	assert.Equal(t, frames, rec.received())
}

func TestWebSocketSource_HandlerErrorsDoNotStopTheStream(t *testing.T) {
	frames := []string{`{"type":`, `{"type":"bandwidth_stats","stats":[]}`}
	srv := newPushServer(t, frames)
	rec := &recorder{fail: frames[0]}

	err := NewWebSocketSource(wsURL(srv)).Run(context.Background(), rec)

	require.NoError(t, err)
	assert.Equal(t, frames, rec.received())
}

func TestWebSocketSource_ContextCancelStopsReading(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// hold the connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewWebSocketSource(wsURL(srv)).Run(ctx, &recorder{})
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("source did not stop after cancel")
	}
}

func TestWebSocketSource_DialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	err := NewWebSocketSource(wsURL(srv)).Run(context.Background(), &recorder{})
	assert.Error(t, err)
}

func TestWebSocketSource_RequiresHandler(t *testing.T) {
	err := NewWebSocketSource("ws://localhost:1/").Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoHandler)
}

func TestHandlerFunc(t *testing.T) {
	var got string
	h := HandlerFunc(func(raw []byte) error {
		got = string(raw)
		return nil
	})

	require.NoError(t, h.HandleMessage([]byte("x")))
	assert.Equal(t, "x", got)
}

func TestWebSocketSource_CancelledBeforeDial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewWebSocketSource("ws://127.0.0.1:1/").Run(ctx, &recorder{})

	assert.NoError(t, err)
}
