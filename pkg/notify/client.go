// Package notify implements a listener for backend push notifications delivered over socket.io
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/gorilla/websocket"
)

// EventImportLogUpdate is emitted by the backend when import logs change
const EventImportLogUpdate = "importLogUpdate"

// eventsBuffer limits received events waiting for the callback
const eventsBuffer = 64

// Event is a single push notification
type Event struct {
	Name string
	Args []json.RawMessage
}

// Options defines push channel parameters
type Options struct {
	Path             string        // socket.io endpoint path, "/socket.io/" by default
	Namespace        string        // socket.io namespace, "/" by default
	Reconnects       int           // reconnect attempts after the connection drops
	ReconnectDelay   time.Duration // initial delay between reconnects, grows exponentially
	HandshakeTimeout time.Duration
}

// Client listens to socket.io events of the backend
type Client struct {
	endpoint string
	opts     Options
	dialer   *websocket.Dialer
}

var errServerClosed = errors.New("server closed push channel")

// NewClient makes a client for the backend at baseURL. Only scheme and host of baseURL are used,
// http(s) is mapped to ws(s).
func NewClient(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse push URL: %w", err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported push URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("push URL %q has no host", baseURL)
	}

	if opts.Path == "" {
		opts.Path = "/socket.io/"
	}
	if !strings.HasPrefix(opts.Path, "/") {
		opts.Path = "/" + opts.Path
	}
	if opts.Namespace == "" {
		opts.Namespace = "/"
	}
	if opts.ReconnectDelay == 0 {
		opts.ReconnectDelay = time.Second
	}
	if opts.HandshakeTimeout == 0 {
		opts.HandshakeTimeout = 10 * time.Second
	}

	u.Path, u.RawPath, u.Fragment = opts.Path, "", ""
	u.RawQuery = url.Values{"EIO": {"4"}, "transport": {"websocket"}}.Encode()

	return &Client{
		endpoint: u.String(),
		opts:     opts,
		dialer:   &websocket.Dialer{HandshakeTimeout: opts.HandshakeTimeout},
	}, nil
}

// Endpoint returns websocket URL the client connects to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Listen opens the push channel and calls fn for every received event until ctx is canceled.
// fn runs in its own goroutine, so a slow callback doesn't stall pings of the connection.
// Dropped connections are re-established with backoff, up to opts.Reconnects times in a row;
// the budget starts over after every session that joined the namespace.
// The connection is always closed before Listen returns and fn is never called after that.
// Returns nil if stopped by ctx.
func (c *Client) Listen(ctx context.Context, fn func(Event)) error {
	queue := make(chan Event, eventsBuffer)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range queue {
			if ctx.Err() != nil {
				continue // drain without dispatching
			}
			fn(ev)
		}
	}()

	err := c.listen(ctx, queue)
	close(queue)
	wg.Wait()
	return err
}

// listen runs sessions until ctx is canceled or reconnects are exhausted
func (c *Client) listen(ctx context.Context, queue chan<- Event) error {
	for {
		joined := false
		retrier := repeater.NewBackoff(c.opts.Reconnects+1, c.opts.ReconnectDelay, repeater.WithMaxDelay(30*time.Second))
		err := retrier.Do(ctx, func() error {
			err := c.session(ctx, queue, &joined)
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("[WARN] push channel %s dropped: %v", c.endpoint, err)
			if joined {
				return nil // healthy session, next round gets a fresh budget
			}
			return err
		})
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("listen %s: %w", c.endpoint, err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.opts.ReconnectDelay):
		}
	}
}

// session runs a single websocket connection until it fails or ctx is canceled
func (c *Client) session(ctx context.Context, queue chan<- Event, joined *bool) error {
	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	// unblock pending read on cancellation
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	log.Printf("[DEBUG] push channel connected to %s", c.endpoint)
	defer log.Printf("[DEBUG] push channel to %s closed", c.endpoint)

	var keepAlive time.Duration
	for {
		if keepAlive > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(keepAlive)); err != nil {
				return fmt.Errorf("set read deadline: %w", err)
			}
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}
		msg := string(data)
		if msg == "" {
			continue
		}

		switch msg[0] {
		case eioOpen:
			var open openPayload
			if err := json.Unmarshal([]byte(msg[1:]), &open); err != nil {
				return fmt.Errorf("decode open packet: %w", err)
			}
			if open.PingInterval > 0 {
				keepAlive = time.Duration(open.PingInterval+open.PingTimeout) * time.Millisecond
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(connectPacket(c.opts.Namespace))); err != nil {
				return fmt.Errorf("connect namespace %s: %w", c.opts.Namespace, err)
			}
		case eioPing:
			if err := conn.WriteMessage(websocket.TextMessage, []byte{eioPong}); err != nil {
				return fmt.Errorf("pong: %w", err)
			}
		case eioClose:
			return errServerClosed
		case eioMessage:
			if err := c.handleMessage(ctx, msg[1:], queue, joined); err != nil {
				return err
			}
		case eioPong, eioNoop:
		default:
			log.Printf("[DEBUG] unexpected engine.io packet %q", msg[:1])
		}
	}
}

// handleMessage processes socket.io packet and queues events of our namespace
func (c *Client) handleMessage(ctx context.Context, msg string, queue chan<- Event, joined *bool) error {
	p, err := parseSocketPacket(msg)
	if err != nil {
		log.Printf("[DEBUG] skip socket.io packet: %v", err)
		return nil
	}
	if p.namespace != c.opts.Namespace {
		return nil
	}

	switch p.kind {
	case sioConnect:
		*joined = true
		log.Printf("[DEBUG] joined namespace %s", p.namespace)
	case sioConnectError:
		return fmt.Errorf("namespace %s refused connection: %s", p.namespace, string(p.data))
	case sioDisconnect:
		return errServerClosed
	case sioEvent:
		ev, err := decodeEvent(p.data)
		if err != nil {
			log.Printf("[WARN] skip malformed event: %v", err)
			return nil
		}
		log.Printf("[DEBUG] push event %s", ev.Name)
		select {
		case queue <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
