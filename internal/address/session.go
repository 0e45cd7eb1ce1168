package address

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"restockd_backend/internal/places"
	"restockd_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// Message types exchanged over the session socket.
const (
	MessageInput   = "input"
	MessageSelect  = "select"
	MessageState   = "state"
	MessageAddress = "address"
	MessageError   = "error"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	outboxSize     = 32
)

// ClientMessage is sent by the browser on every keystroke or selection.
type ClientMessage struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
	ID    string `json:"id,omitempty"`
}

// ServerMessage is pushed to the browser.
type ServerMessage struct {
	Type        string             `json:"type"`
	State       *State             `json:"state,omitempty"`
	Value       *string            `json:"value,omitempty"`
	Suggestions []places.Candidate `json:"suggestions,omitempty"`
	Address     *CanonicalAddress  `json:"address,omitempty"`
	Error       string             `json:"error,omitempty"`
}

func stateMessage(s Snapshot) ServerMessage {
	return ServerMessage{Type: MessageState, State: &s.State, Value: &s.Value, Suggestions: s.Suggestions}
}

// SessionHandler upgrades requests to live suggestion sessions. Sessions
// outlive their upgrade request and end when Close is called.
type SessionHandler struct {
	ctx      context.Context
	cancel   context.CancelFunc
	provider places.Provider
	ready    func() bool
	resolver *Resolver
	upgrader websocket.Upgrader
	debounce time.Duration
	region   string
	log      *logger.Logger
}

// SessionConfig holds the per-session settings.
type SessionConfig struct {
	Debounce       time.Duration
	Region         string
	AllowedOrigins []string
	AllowAll       bool
}

// NewSessionHandler creates the websocket endpoint. ready gates new
// sessions while the provider is still initialising.
func NewSessionHandler(provider places.Provider, ready func() bool, resolver *Resolver, cfg SessionConfig, log *logger.Logger) *SessionHandler {
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionHandler{
		ctx:      ctx,
		cancel:   cancel,
		provider: provider,
		ready:    ready,
		resolver: resolver,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(cfg.AllowedOrigins, cfg.AllowAll),
		},
		debounce: cfg.Debounce,
		region:   cfg.Region,
		log:      log,
	}
}

// Close ends every open session and rejects new ones.
func (h *SessionHandler) Close() {
	h.cancel()
}

// checkOrigin accepts same-host requests and the configured CORS origins.
func checkOrigin(allowed []string, allowAll bool) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		if slices.Contains(allowed, origin) {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}

// Serve handles GET /api/v1/address/session
func (h *SessionHandler) Serve(c *gin.Context) {
	if h.ctx.Err() != nil || !h.ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "address lookup unavailable"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}

	// Keep the request values but follow the handler lifetime.
	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	defer cancel()
	stop := context.AfterFunc(h.ctx, cancel)
	defer stop()

	ctx = context.WithValue(ctx, logger.SessionIDKey, uuid.NewString())
	log := h.log.WithContext(ctx)
	log.Info("address session opened")

	err = h.run(ctx, conn, log)
	switch {
	case err == nil, errors.Is(err, context.Canceled), isNormalClose(err):
		log.Info("address session closed")
	default:
		log.Warn("address session ended", "error", err)
	}
}

// run wires one connection to one Autocomplete. The reader feeds the
// session, the session feeds the outbox, and a single writer drains it.
func (h *SessionHandler) run(ctx context.Context, conn *websocket.Conn, log *logger.Logger) error {
	defer func() {
		_ = conn.Close()
	}()

	g, ctx := errgroup.WithContext(ctx)
	outbox := make(chan ServerMessage, outboxSize)
	send := func(msg ServerMessage) {
		select {
		case outbox <- msg:
		case <-ctx.Done():
		}
	}

	session := NewAutocomplete(h.provider, h.resolver, Options{
		Debounce: h.debounce,
		Region:   h.region,
		Logger:   log,
		OnChange: func(s Snapshot) { send(stateMessage(s)) },
		OnSelect: func(addr CanonicalAddress) {
			send(ServerMessage{Type: MessageAddress, Address: &addr})
		},
		OnError: func(err error) {
			msg := "address lookup failed"
			if errors.Is(err, ErrUnknownCandidate) {
				msg = "unknown suggestion"
			}
			send(ServerMessage{Type: MessageError, Error: msg})
		},
	})

	g.Go(func() error { return session.Run(ctx) })
	g.Go(func() error { return writeLoop(ctx, conn, outbox) })
	g.Go(func() error {
		err := readLoop(conn, session)
		// The reader only returns once the socket is gone; nothing else
		// is worth finishing.
		_ = conn.Close()
		return err
	})

	return g.Wait()
}

func readLoop(conn *websocket.Conn, session *Autocomplete) error {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case MessageInput:
			session.SetValue(msg.Value)
		case MessageSelect:
			session.Select(msg.ID)
		}
	}
}

// writeLoop closes the socket on return, which also unblocks readLoop.
func writeLoop(ctx context.Context, conn *websocket.Conn, outbox <-chan ServerMessage) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer func() {
		_ = conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return ctx.Err()
		case msg := <-outbox:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func isNormalClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}
