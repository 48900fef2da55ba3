package service

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaron8/telemetry-dashboard/generator/config"
	"github.com/yaron8/telemetry-dashboard/generator/stats"
	"github.com/yaron8/telemetry-dashboard/telemetrics"
)

func testMessage() telemetrics.Message {
	return telemetrics.NewBandwidthStats([]telemetrics.PortStat{{
		DPID:          1,
		PortNo:        2,
		RxMbps:        telemetrics.Some(1),
		TxMbps:        telemetrics.Some(2),
		BandwidthMbps: telemetrics.Some(3),
		LatencyMs:     telemetrics.None(),
	}})
}

func newTestServer(t *testing.T) (*APIServer, *httptest.Server) {
	t.Helper()
	cache := stats.NewSnapshotCache(time.Second, clockwork.NewFakeClock(), testMessage)
	api := NewAPIServer(&config.Config{Port: 8765}, cache)

	srv := httptest.NewServer(api.Router())
	t.Cleanup(srv.Close)
	return api, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Clients() == n },
		2*time.Second, 10*time.Millisecond, "expected %d clients", n)
}

func TestHealthEndpoint(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestStatsEndpoint(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	msg, err := telemetrics.Decode(body)
	require.NoError(t, err)
	assert.Equal(t, testMessage(), msg)
}

func TestStatsCSVEndpoint(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/stats.csv")
	require.NoError(t, err)
	defer resp.Body.Close()

	records, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Equal(t, [][]string{stats.CSVHeader, {"1", "2", "1.00", "2.00", "3.00", ""}}, records)
}

func TestBroadcast_NoClients(t *testing.T) {
	api, _ := newTestServer(t)

	assert.Equal(t, 0, api.Hub().Broadcast([]byte("{}")))
}

func TestBroadcast_ReachesEveryClient(t *testing.T) {
	api, srv := newTestServer(t)
	a := dial(t, srv)
	b := dial(t, srv)
	waitForClients(t, api.Hub(), 2)

	payload := `{"type":"bandwidth_stats","stats":[]}`
	assert.Equal(t, 2, api.Hub().Broadcast([]byte(payload)))

	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		kind, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, kind)
		assert.Equal(t, payload, string(data))
	}
}

func TestBroadcast_ClientLeaving(t *testing.T) {
	api, srv := newTestServer(t)
	conn := dial(t, srv)
	waitForClients(t, api.Hub(), 1)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))
	conn.Close()

	waitForClients(t, api.Hub(), 0)
	assert.Equal(t, 0, api.Hub().Broadcast([]byte("{}")))
}

func TestHubClose_SendsGoingAway(t *testing.T) {
	api, srv := newTestServer(t)
	conn := dial(t, srv)
	waitForClients(t, api.Hub(), 1)

	api.Hub().Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	assert.Equal(t, 0, api.Hub().Clients())
}

func TestStart_StopsWithContext(t *testing.T) {
	cache := stats.NewSnapshotCache(time.Second, nil, testMessage)
	api := NewAPIServer(&config.Config{Port: 18766}, cache)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- api.Start(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://localhost:18766/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestBroadcast_StalledClientDoesNotBlockOthers(t *testing.T) {
	api, srv := newTestServer(t)
	dial(t, srv) // never reads
	reader := dial(t, srv)
	waitForClients(t, api.Hub(), 2)

	go func() {
		for {
			if _, _, err := reader.ReadMessage(); err != nil {
				return
			}
		}
	}()

	big := []byte(strings.Repeat("x", 256*1024))
	for i := 0; i < 400 && api.Hub().Clients() == 2; i++ {
		start := time.Now()
		api.Hub().Broadcast(big)
		require.Less(t, time.Since(start), 500*time.Millisecond, "broadcast waited on a client")
		time.Sleep(2 * time.Millisecond)
	}

	require.Equal(t, 1, api.Hub().Clients(), "stalled client should have been dropped")
	assert.Equal(t, 1, api.Hub().Broadcast([]byte("{}")), "reading client stays connected")
}
