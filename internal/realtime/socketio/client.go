package socketio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	handshakeTimeout = 10 * time.Second
	handlerTimeout   = 10 * time.Second
	writeTimeout     = 5 * time.Second
)

var (
	ErrDisconnected = errors.New("socketio: server closed the connection")
	ErrRejected     = errors.New("socketio: connection rejected")
)

type HandlerFunc func(ctx context.Context, p Packet)

type Options struct {
	// URL 為服務位址，http(s) 或 ws(s) 皆可
	URL   string
	Token string
	// 重連間隔，預設 500ms 起跳、上限 30s
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// OnRetry 每次重連前呼叫
	OnRetry func(err error, wait time.Duration)
	Dialer  *websocket.Dialer
}

// Client 同一時間只持有一條連線，讀取 goroutine 同時負責所有寫入
type Client struct {
	logger    *zap.Logger
	opts      Options
	handlers  map[string]HandlerFunc
	onConnect func(ctx context.Context, sid string)
	connected atomic.Bool
}

func NewClient(logger *zap.Logger, opts Options) *Client {
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = 500 * time.Millisecond
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = 30 * time.Second
	}
	if opts.Dialer == nil {
		opts.Dialer = &websocket.Dialer{HandshakeTimeout: handshakeTimeout, Proxy: http.ProxyFromEnvironment}
	}
	return &Client{logger: logger, opts: opts, handlers: map[string]HandlerFunc{}}
}

// On 註冊事件處理；須在 Run 之前呼叫
func (c *Client) On(event string, h HandlerFunc) {
	c.handlers[event] = h
}

func (c *Client) OnConnect(fn func(ctx context.Context, sid string)) {
	c.onConnect = fn
}

func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Endpoint 組出 Engine.IO websocket 位址
func Endpoint(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("socketio: unsupported scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/socket.io/"
	}
	q := u.Query()
	q.Set("EIO", "4")
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type session struct {
	conn *websocket.Conn
	sid  string
	hs   Handshake
}

// Run 連線並處理事件，斷線後以指數退避重連；ctx 結束時回傳 nil
func (c *Client) Run(ctx context.Context) error {
	endpoint, err := Endpoint(c.opts.URL)
	if err != nil {
		return err
	}
	for {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = c.opts.InitialInterval
		b.MaxInterval = c.opts.MaxInterval

		s, err := backoff.Retry(ctx, func() (*session, error) {
			return c.connect(ctx, endpoint)
		},
			backoff.WithBackOff(b),
			backoff.WithMaxElapsedTime(0),
			backoff.WithNotify(func(err error, wait time.Duration) {
				c.logger.Warn("socketio: connect failed, retrying", zap.Error(err), zap.Duration("wait", wait))
				if c.opts.OnRetry != nil {
					c.opts.OnRetry(err, wait)
				}
			}),
		)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		c.connected.Store(true)
		c.logger.Info("socketio: connected", zap.String("sid", s.sid))
		if c.onConnect != nil {
			c.onConnect(ctx, s.sid)
		}
		err = c.serve(ctx, s)
		c.connected.Store(false)
		if ctx.Err() != nil {
			return nil
		}
		c.logger.Warn("socketio: disconnected", zap.Error(err))
	}
}

func (c *Client) connect(ctx context.Context, endpoint string) (*session, error) {
	conn, _, err := c.opts.Dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	s, err := c.handshake(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func (c *Client) handshake(conn *websocket.Conn) (*session, error) {
	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	p, err := c.read(conn)
	if err != nil {
		return nil, err
	}
	if p.Kind != KindOpen {
		return nil, fmt.Errorf("%w: expected open, got %s", ErrMalformedPacket, p.Kind)
	}
	var hs Handshake
	if err := json.Unmarshal(p.Data, &hs); err != nil {
		return nil, fmt.Errorf("%w: open payload: %v", ErrMalformedPacket, err)
	}

	var auth any
	if c.opts.Token != "" {
		auth = map[string]string{"token": c.opts.Token}
	}
	frame, err := EncodeConnect(auth)
	if err != nil {
		return nil, err
	}
	if err := c.write(conn, frame); err != nil {
		return nil, err
	}

	for {
		p, err := c.read(conn)
		if err != nil {
			return nil, err
		}
		switch p.Kind {
		case KindPing:
			if err := c.write(conn, EncodePong()); err != nil {
				return nil, err
			}
		case KindConnect:
			var ack struct {
				SID string `json:"sid"`
			}
			_ = json.Unmarshal(p.Data, &ack)
			return &session{conn: conn, sid: ack.SID, hs: hs}, nil
		case KindConnectError:
			var reason struct {
				Message string `json:"message"`
			}
			_ = json.Unmarshal(p.Data, &reason)
			if strings.Contains(strings.ToLower(reason.Message), "unauthorized") {
				c.logger.Warn("socketio: service token rejected, check that both services share the same token")
			}
			return nil, fmt.Errorf("%w: %s", ErrRejected, reason.Message)
		case KindClose, KindDisconnect:
			return nil, ErrDisconnected
		}
	}
}

func (c *Client) serve(ctx context.Context, s *session) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			// WriteControl 可與讀寫並行呼叫
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
		case <-done:
		}
		_ = s.conn.Close()
	}()

	for {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.hs.Deadline()))
		p, err := c.read(s.conn)
		if errors.Is(err, ErrMalformedPacket) {
			c.logger.Warn("socketio: dropping malformed packet", zap.Error(err))
			continue
		}
		if err != nil {
			return err
		}
		switch p.Kind {
		case KindPing:
			if err := c.write(s.conn, EncodePong()); err != nil {
				return err
			}
		case KindClose, KindDisconnect:
			return ErrDisconnected
		case KindEvent:
			c.dispatch(ctx, p)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, p Packet) {
	h, ok := c.handlers[p.Event]
	if !ok {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("socketio: handler panic", zap.String("event", p.Event), zap.Any("panic", r))
		}
	}()
	ctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()
	h(ctx, p)
}

// read 讀一個 text frame 並解碼；連線錯誤原樣回傳
func (c *Client) read(conn *websocket.Conn) (Packet, error) {
	for {
		typ, frame, err := conn.ReadMessage()
		if err != nil {
			return Packet{}, err
		}
		if typ != websocket.TextMessage {
			continue
		}
		return Decode(frame)
	}
}

func (c *Client) write(conn *websocket.Conn, frame []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, frame)
}
