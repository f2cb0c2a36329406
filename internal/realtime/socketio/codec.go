// Package socketio is a minimal Socket.IO v4 client over the Engine.IO v4
// websocket transport. Only the default namespace is supported.
package socketio

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Kind int

const (
	KindOpen Kind = iota
	KindClose
	KindPing
	KindPong
	KindNoop
	KindConnect
	KindDisconnect
	KindEvent
	KindAck
	KindConnectError
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindClose:
		return "close"
	case KindPing:
		return "ping"
	case KindPong:
		return "pong"
	case KindNoop:
		return "noop"
	case KindConnect:
		return "connect"
	case KindDisconnect:
		return "disconnect"
	case KindEvent:
		return "event"
	case KindAck:
		return "ack"
	case KindConnectError:
		return "connect_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var ErrMalformedPacket = errors.New("socketio: malformed packet")

// Packet 解碼後的封包；Event 類型時 Args 為事件參數
type Packet struct {
	Kind  Kind
	Event string
	Args  []json.RawMessage
	// Data 為 open / connect / connect_error 的 JSON 內容
	Data json.RawMessage
}

// Arg 回傳第 i 個事件參數，不存在時為 nil
func (p Packet) Arg(i int) json.RawMessage {
	if i < len(p.Args) {
		return p.Args[i]
	}
	return nil
}

// Handshake 為 Engine.IO open 封包內容
type Handshake struct {
	SID          string `json:"sid"`
	PingInterval int64  `json:"pingInterval"`
	PingTimeout  int64  `json:"pingTimeout"`
}

// Deadline 在此時間內沒有任何封包即視為斷線
func (h Handshake) Deadline() time.Duration {
	d := time.Duration(h.PingInterval+h.PingTimeout) * time.Millisecond
	if d <= 0 {
		return 45 * time.Second
	}
	return d
}

// Decode 解析一個 websocket text frame
func Decode(frame []byte) (Packet, error) {
	s := string(frame)
	if s == "" {
		return Packet{}, ErrMalformedPacket
	}
	switch s[0] {
	case '0':
		return Packet{Kind: KindOpen, Data: json.RawMessage(s[1:])}, nil
	case '1':
		return Packet{Kind: KindClose}, nil
	case '2':
		return Packet{Kind: KindPing}, nil
	case '3':
		return Packet{Kind: KindPong}, nil
	case '6':
		return Packet{Kind: KindNoop}, nil
	case '4':
		return decodeMessage(s[1:])
	default:
		return Packet{}, fmt.Errorf("%w: engine type %q", ErrMalformedPacket, s[0])
	}
}

func decodeMessage(s string) (Packet, error) {
	if s == "" {
		return Packet{}, ErrMalformedPacket
	}
	kind, rest := s[0], s[1:]
	// 只處理預設 namespace，"/ns," 前綴代表其他 namespace
	if strings.HasPrefix(rest, "/") {
		ns, after, ok := strings.Cut(rest, ",")
		if !ok || ns != "/" {
			return Packet{}, fmt.Errorf("%w: namespace %q", ErrMalformedPacket, ns)
		}
		rest = after
	}
	switch kind {
	case '0':
		return Packet{Kind: KindConnect, Data: json.RawMessage(rest)}, nil
	case '1':
		return Packet{Kind: KindDisconnect}, nil
	case '4':
		return Packet{Kind: KindConnectError, Data: json.RawMessage(rest)}, nil
	case '2', '3':
		// 去掉 ack id
		rest = strings.TrimLeft(rest, "0123456789")
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(rest), &items); err != nil {
			return Packet{}, fmt.Errorf("%w: %v", ErrMalformedPacket, err)
		}
		if kind == '3' {
			return Packet{Kind: KindAck, Args: items}, nil
		}
		if len(items) == 0 {
			return Packet{}, fmt.Errorf("%w: empty event", ErrMalformedPacket)
		}
		var name string
		if err := json.Unmarshal(items[0], &name); err != nil {
			return Packet{}, fmt.Errorf("%w: event name: %v", ErrMalformedPacket, err)
		}
		return Packet{Kind: KindEvent, Event: name, Args: items[1:]}, nil
	default:
		return Packet{}, fmt.Errorf("%w: socket type %q", ErrMalformedPacket, kind)
	}
}

func EncodePong() []byte {
	return []byte("3")
}

// EncodeConnect 連線預設 namespace；auth 為 nil 時不帶內容
func EncodeConnect(auth any) ([]byte, error) {
	if auth == nil {
		return []byte("40"), nil
	}
	raw, err := json.Marshal(auth)
	if err != nil {
		return nil, err
	}
	return append([]byte("40"), raw...), nil
}

func EncodeEvent(name string, args ...any) ([]byte, error) {
	items := make([]any, 0, len(args)+1)
	items = append(items, name)
	items = append(items, args...)
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return append([]byte("42"), raw...), nil
}

func EncodeDisconnect() []byte {
	return []byte("41")
}
