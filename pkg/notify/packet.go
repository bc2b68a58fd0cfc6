package notify

import (
	"encoding/json"
	"fmt"
	"strings"
)

// engine.io v4 packet types
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioPong    = '3'
	eioMessage = '4'
	eioNoop    = '6'
)

// socket.io v5 packet types, carried inside engine.io message packets
const (
	sioConnect      = '0'
	sioDisconnect   = '1'
	sioEvent        = '2'
	sioConnectError = '4'
)

// openPayload is sent by the server in the engine.io open packet
type openPayload struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"` // ms
	PingTimeout  int    `json:"pingTimeout"`  // ms
}

// sioPacket is a decoded socket.io packet
type sioPacket struct {
	kind      byte
	namespace string
	data      json.RawMessage
}

// parseSocketPacket decodes socket.io packet like `2/admin,12["event",{...}]`
func parseSocketPacket(msg string) (sioPacket, error) {
	if msg == "" {
		return sioPacket{}, fmt.Errorf("empty socket.io packet")
	}
	p := sioPacket{kind: msg[0], namespace: "/"}
	rest := msg[1:]

	// namespace, if present, starts with "/" and ends with ","
	if strings.HasPrefix(rest, "/") {
		idx := strings.IndexByte(rest, ',')
		if idx < 0 {
			p.namespace = rest
			return p, nil
		}
		p.namespace, rest = rest[:idx], rest[idx+1:]
	}

	// optional ack id, digits before payload
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	rest = rest[i:]

	if rest != "" {
		p.data = json.RawMessage(rest)
	}
	return p, nil
}

// decodeEvent extracts event name and arguments from socket.io event payload `["name", arg1, ...]`
func decodeEvent(data json.RawMessage) (Event, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return Event{}, fmt.Errorf("decode event payload: %w", err)
	}
	if len(parts) == 0 {
		return Event{}, fmt.Errorf("event payload has no name")
	}
	var ev Event
	if err := json.Unmarshal(parts[0], &ev.Name); err != nil {
		return Event{}, fmt.Errorf("decode event name: %w", err)
	}
	ev.Args = parts[1:]
	return ev, nil
}

// connectPacket returns the socket.io connect packet for namespace, wrapped in engine.io message
func connectPacket(namespace string) string {
	if namespace == "" || namespace == "/" {
		return string([]byte{eioMessage, sioConnect})
	}
	return string([]byte{eioMessage, sioConnect}) + namespace + ","
}
