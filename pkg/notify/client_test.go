package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSocketServer starts a fake socket.io server, handler drives a single websocket connection
func newSocketServer(t *testing.T, handler func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/socket.io/", r.URL.Path)
		assert.Equal(t, "4", r.URL.Query().Get("EIO"))
		assert.Equal(t, "websocket", r.URL.Query().Get("transport"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(ts.Close)
	return ts
}

// handshake plays server side of engine.io open and socket.io namespace connect
func handshake(t *testing.T, conn *websocket.Conn) bool {
	open := `0{"sid":"eio-sid","upgrades":[],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`
	if !assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(open))) {
		return false
	}
	_, msg, err := conn.ReadMessage()
	if !assert.NoError(t, err) || !assert.Equal(t, "40", string(msg)) {
		return false
	}
	return assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`40{"sid":"sio-sid"}`)))
}

// waitClosed blocks until the client drops the connection
func waitClosed(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func TestClient_Listen(t *testing.T) {
	serverDone := make(chan struct{})
	ts := newSocketServer(t, func(conn *websocket.Conn) {
		defer close(serverDone)
		if !handshake(t, conn) {
			return
		}

		// ping must be answered with pong
		assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("2")))
		_, msg, err := conn.ReadMessage()
		if assert.NoError(t, err) {
			assert.Equal(t, "3", string(msg))
		}

		for _, m := range []string{
			`42["importLogUpdate"]`,
			`42/other,["importLogUpdate"]`, // foreign namespace, ignored
			`6`,
			`42["jobCreated",{"id":1}]`,
			`4212["importLogUpdate",{"feed":"https://jobicy.com/feed"}]`,
		} {
			assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(m)))
		}
		waitClosed(conn)
	})

	c, err := NewClient(ts.URL, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event, 10)
	listenDone := make(chan error, 1)
	go func() {
		listenDone <- c.Listen(ctx, func(ev Event) { events <- ev })
	}()

	var got []Event
	for len(got) < 3 {
		select {
		case ev := <-events:
			got = append(got, ev)
		case <-time.After(5 * time.Second):
			t.Fatalf("timeout waiting for events, got %d", len(got))
		}
	}

	cancel()
	select {
	case err := <-listenDone:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("listen did not return after cancel")
	}

	select {
	case <-serverDone:
	case <-time.After(5 * time.Second):
		t.Fatal("connection was not closed by client")
	}

	assert.Equal(t, EventImportLogUpdate, got[0].Name)
	assert.Empty(t, got[0].Args)
	assert.Equal(t, "jobCreated", got[1].Name)
	require.Len(t, got[1].Args, 1)
	assert.JSONEq(t, `{"id":1}`, string(got[1].Args[0]))
	assert.Equal(t, EventImportLogUpdate, got[2].Name)
	require.Len(t, got[2].Args, 1)
	assert.JSONEq(t, `{"feed":"https://jobicy.com/feed"}`, string(got[2].Args[0]))
	assert.Empty(t, events, "no events after listen returned")
}

func TestClient_ListenNamespace(t *testing.T) {
	ts := newSocketServer(t, func(conn *websocket.Conn) {
		open := `0{"sid":"eio-sid","pingInterval":25000,"pingTimeout":20000}`
		assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(open)))
		_, msg, err := conn.ReadMessage()
		if !assert.NoError(t, err) || !assert.Equal(t, "40/admin,", string(msg)) {
			return
		}
		assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`40/admin,{"sid":"x"}`)))
		assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`42["importLogUpdate"]`)))
		assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`42/admin,["importLogUpdate"]`)))
		waitClosed(conn)
	})

	c, err := NewClient(ts.URL, Options{Namespace: "/admin"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var count int32
	done := make(chan error, 1)
	go func() {
		done <- c.Listen(ctx, func(ev Event) {
			assert.Equal(t, EventImportLogUpdate, ev.Name)
			atomic.AddInt32(&count, 1)
		})
	}()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&count) == 1 }, 5*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), atomic.LoadInt32(&count))
}

func TestClient_ListenReconnect(t *testing.T) {
	var conns int32
	ts := newSocketServer(t, func(conn *websocket.Conn) {
		n := atomic.AddInt32(&conns, 1)
		if !handshake(t, conn) {
			return
		}
		if n == 1 {
			// first session is closed by server right away
			assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("1")))
			return
		}
		assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`42["importLogUpdate"]`)))
		waitClosed(conn)
	})

	c, err := NewClient(ts.URL, Options{Reconnects: 3, ReconnectDelay: 10 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Event, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.Listen(ctx, func(ev Event) { received <- ev })
	}()

	select {
	case ev := <-received:
		assert.Equal(t, EventImportLogUpdate, ev.Name)
	case <-time.After(5 * time.Second):
		t.Fatal("no event after reconnect")
	}
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, int32(2), atomic.LoadInt32(&conns))
}

func TestClient_ListenResetsAttemptsAfterHealthySession(t *testing.T) {
	var conns int32
	ts := newSocketServer(t, func(conn *websocket.Conn) {
		n := atomic.AddInt32(&conns, 1)
		if !handshake(t, conn) {
			return
		}
		if n <= 4 {
			// backend restarts after every successful join
			assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("1")))
			return
		}
		assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`42["importLogUpdate"]`)))
		waitClosed(conn)
	})

	c, err := NewClient(ts.URL, Options{Reconnects: 1, ReconnectDelay: time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Event, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.Listen(ctx, func(ev Event) { received <- ev })
	}()

	select {
	case ev := <-received:
		assert.Equal(t, EventImportLogUpdate, ev.Name)
	case err := <-done:
		t.Fatalf("listen gave up: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no event after restarts")
	}
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, int32(5), atomic.LoadInt32(&conns))
}

func TestClient_ListenSlowCallbackKeepsPinging(t *testing.T) {
	pong := make(chan string, 1)
	ts := newSocketServer(t, func(conn *websocket.Conn) {
		if !handshake(t, conn) {
			return
		}
		assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`42["importLogUpdate"]`)))
		assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("2")))
		_, msg, err := conn.ReadMessage()
		if assert.NoError(t, err) {
			pong <- string(msg)
		}
		waitClosed(conn)
	})

	c, err := NewClient(ts.URL, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started, release := make(chan struct{}), make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- c.Listen(ctx, func(Event) {
			close(started)
			<-release // callback busy with a slow re-read
		})
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("callback not called")
	}
	select {
	case msg := <-pong:
		assert.Equal(t, "3", msg, "ping answered while callback is busy")
	case <-time.After(5 * time.Second):
		t.Fatal("ping not answered while callback is busy")
	}

	cancel()
	select {
	case <-done:
		t.Fatal("listen returned while callback is still running")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	require.NoError(t, <-done)
}

func TestClient_ListenGivesUp(t *testing.T) {
	var attempts int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		http.Error(w, "socket.io is down", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, Options{Reconnects: 2, ReconnectDelay: time.Millisecond})
	require.NoError(t, err)

	err = c.Listen(context.Background(), func(Event) { t.Error("unexpected event") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial")
	n := atomic.LoadInt32(&attempts)
	assert.GreaterOrEqual(t, n, int32(2), "reconnect attempted")
	assert.LessOrEqual(t, n, int32(3))
}

func TestClient_ListenConnectError(t *testing.T) {
	ts := newSocketServer(t, func(conn *websocket.Conn) {
		open := `0{"sid":"eio-sid","pingInterval":25000,"pingTimeout":20000}`
		assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(open)))
		_, _, err := conn.ReadMessage()
		assert.NoError(t, err)
		assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`44{"message":"Not authorized"}`)))
		waitClosed(conn)
	})

	c, err := NewClient(ts.URL, Options{})
	require.NoError(t, err)

	err = c.Listen(context.Background(), func(Event) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused connection")
	assert.Contains(t, err.Error(), "Not authorized")
}

func TestClient_ListenCancelIdle(t *testing.T) {
	serverDone := make(chan struct{})
	ts := newSocketServer(t, func(conn *websocket.Conn) {
		defer close(serverDone)
		if handshake(t, conn) {
			waitClosed(conn)
		}
	})

	c, err := NewClient(ts.URL, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var calls int32
	err = c.Listen(ctx, func(Event) { atomic.AddInt32(&calls, 1) })
	require.NoError(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	select {
	case <-serverDone:
	case <-time.After(5 * time.Second):
		t.Fatal("connection was not closed after cancel")
	}
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		opts     Options
		endpoint string
		wantErr  string
	}{
		{name: "http", baseURL: "http://localhost:5000/api/",
			endpoint: "ws://localhost:5000/socket.io/?EIO=4&transport=websocket"},
		{name: "https", baseURL: "https://jobs.example.com",
			endpoint: "wss://jobs.example.com/socket.io/?EIO=4&transport=websocket"},
		{name: "custom path", baseURL: "http://localhost:5000", opts: Options{Path: "realtime/"},
			endpoint: "ws://localhost:5000/realtime/?EIO=4&transport=websocket"},
		{name: "bad scheme", baseURL: "ftp://localhost", wantErr: "unsupported push URL scheme"},
		{name: "no host", baseURL: "http://", wantErr: "has no host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.baseURL, tt.opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.endpoint, c.Endpoint())
		})
	}
}

func TestParseSocketPacket(t *testing.T) {
	tests := []struct {
		in        string
		kind      byte
		namespace string
		data      string
	}{
		{in: `0`, kind: sioConnect, namespace: "/"},
		{in: `0{"sid":"abc"}`, kind: sioConnect, namespace: "/", data: `{"sid":"abc"}`},
		{in: `2["importLogUpdate"]`, kind: sioEvent, namespace: "/", data: `["importLogUpdate"]`},
		{in: `2/admin,["x",1]`, kind: sioEvent, namespace: "/admin", data: `["x",1]`},
		{in: `2/admin,17["x"]`, kind: sioEvent, namespace: "/admin", data: `["x"]`},
		{in: `233["x"]`, kind: sioEvent, namespace: "/", data: `["x"]`},
		{in: `1/admin`, kind: sioDisconnect, namespace: "/admin"},
		{in: `4{"message":"nope"}`, kind: sioConnectError, namespace: "/", data: `{"message":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := parseSocketPacket(tt.in)
			require.NoError(t, err)
			assert.Equal(t, string(tt.kind), string(p.kind))
			assert.Equal(t, tt.namespace, p.namespace)
			assert.Equal(t, tt.data, string(p.data))
		})
	}

	_, err := parseSocketPacket("")
	require.Error(t, err)
}

func TestDecodeEvent(t *testing.T) {
	ev, err := decodeEvent(json.RawMessage(`["importLogUpdate",{"a":1},"b"]`))
	require.NoError(t, err)
	assert.Equal(t, "importLogUpdate", ev.Name)
	require.Len(t, ev.Args, 2)
	assert.Equal(t, `"b"`, string(ev.Args[1]))

	_, err = decodeEvent(json.RawMessage(`[]`))
	require.Error(t, err)

	_, err = decodeEvent(json.RawMessage(`{"name":"x"}`))
	require.Error(t, err)

	_, err = decodeEvent(json.RawMessage(`[42]`))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "event name"))
}

func TestConnectPacket(t *testing.T) {
	assert.Equal(t, "40", connectPacket("/"))
	assert.Equal(t, "40", connectPacket(""))
	assert.Equal(t, "40/admin,", connectPacket("/admin"))
}
