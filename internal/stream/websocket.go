package stream

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebSocketState string

const (
	WSStateConnecting   WebSocketState = "CONNECTING"
	WSStateConnected    WebSocketState = "CONNECTED"
	WSStateDisconnected WebSocketState = "DISCONNECTED"
	WSStateFailed       WebSocketState = "FAILED"
	WSStateClosed       WebSocketState = "CLOSED"
)

func (s WebSocketState) String() string {
	return string(s)
}

// WebSocketSink publishes events as JSON frames to a websocket endpoint.
// Events sent while disconnected are dropped. A Send after reconnectDelay
// starts a background redial, until maxReconnectAttempts is exhausted.
type WebSocketSink struct {
	wsURL                string
	conn                 *websocket.Conn
	state                WebSocketState
	dialing              bool
	mu                   sync.Mutex
	reconnectAttempts    int
	maxReconnectAttempts int
	reconnectDelay       time.Duration
	writeTimeout         time.Duration
	nextDial             time.Time
	dropped              int
	logger               *zap.Logger
	readerWg             sync.WaitGroup
	dialWg               sync.WaitGroup
}

func NewWebSocketSink(wsURL string, maxReconnectAttempts int, reconnectDelay, writeTimeout time.Duration, logger *zap.Logger) *WebSocketSink {
	return &WebSocketSink{
		wsURL:                wsURL,
		state:                WSStateDisconnected,
		maxReconnectAttempts: maxReconnectAttempts,
		reconnectDelay:       reconnectDelay,
		writeTimeout:         writeTimeout,
		logger:               logger,
	}
}

// Connect dials the endpoint once. A failure leaves the sink usable; later
// sends retry the dial.
func (s *WebSocketSink) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state == WSStateClosed || s.conn != nil || s.dialing {
		s.mu.Unlock()
		return nil
	}
	s.startDialLocked()
	s.mu.Unlock()

	return s.finishDial(ctx)
}

// must be called with lock held
func (s *WebSocketSink) startDialLocked() {
	s.dialing = true
	s.setStateLocked(WSStateConnecting)
}

// finishDial performs the handshake without holding the lock so senders are
// never stalled behind it.
func (s *WebSocketSink) finishDial(ctx context.Context) error {
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.DialContext(ctx, s.wsURL, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialing = false

	if s.state == WSStateClosed {
		if conn != nil {
			_ = conn.Close()
		}
		return nil
	}

	if err != nil {
		s.reconnectAttempts++
		s.nextDial = time.Now().Add(s.reconnectDelay)
		if s.reconnectAttempts >= s.maxReconnectAttempts {
			s.logger.Error("Stream websocket giving up",
				zap.String("url", s.wsURL),
				zap.Int("attempts", s.reconnectAttempts),
				zap.Error(err),
			)
			s.setStateLocked(WSStateFailed)
		} else {
			s.logger.Warn("Stream websocket connect failed", zap.String("url", s.wsURL), zap.Error(err))
			s.setStateLocked(WSStateDisconnected)
		}
		return err
	}

	s.conn = conn
	s.reconnectAttempts = 0
	s.setStateLocked(WSStateConnected)
	s.logger.Info("Stream websocket connected", zap.String("url", s.wsURL))

	s.readerWg.Add(1)
	go s.listen(conn)

	return nil
}

// listen drains inbound frames so control messages are processed and a
// closed peer is noticed.
func (s *WebSocketSink) listen(conn *websocket.Conn) {
	defer s.readerWg.Done()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.mu.Lock()
			if s.conn == conn {
				s.logger.Warn("Stream websocket read error", zap.Error(err))
				_ = conn.Close()
				s.conn = nil
				s.nextDial = time.Now().Add(s.reconnectDelay)
				s.setStateLocked(WSStateDisconnected)
			}
			s.mu.Unlock()
			return
		}
	}
}

// Send writes the event when connected. While disconnected the event is
// dropped and, once reconnectDelay has passed, a redial starts in the
// background.
func (s *WebSocketSink) Send(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		s.dropped++
		if s.dialing || s.state == WSStateFailed || s.state == WSStateClosed || time.Now().Before(s.nextDial) {
			return
		}
		s.startDialLocked()
		s.dialWg.Add(1)
		go func() {
			defer s.dialWg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
			defer cancel()
			_ = s.finishDial(ctx)
		}()
		return
	}

	_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	if err := s.conn.WriteJSON(event); err != nil {
		s.logger.Warn("Stream websocket write failed", zap.Error(err))
		_ = s.conn.Close()
		s.conn = nil
		s.nextDial = time.Now().Add(s.reconnectDelay)
		s.setStateLocked(WSStateDisconnected)
		s.dropped++
	}
}

func (s *WebSocketSink) State() WebSocketState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dropped reports how many events were discarded while disconnected.
func (s *WebSocketSink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *WebSocketSink) Close() error {
	s.mu.Lock()
	var err error
	if s.conn != nil {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = s.conn.Close()
		s.conn = nil
	}
	s.setStateLocked(WSStateClosed)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.dialWg.Wait()
		s.readerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.logger.Warn("Timeout waiting for stream listener to stop")
	}

	return err
}

// must be called with lock held
func (s *WebSocketSink) setStateLocked(newState WebSocketState) {
	if s.state == newState {
		return
	}
	s.logger.Debug("Stream websocket state changed",
		zap.String("from", s.state.String()),
		zap.String("to", newState.String()),
	)
	s.state = newState
}
