package client

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/danmaku/internal/dispatch"
	"github.com/muurk/danmaku/internal/logging"
	"github.com/muurk/danmaku/internal/protocol"
	"go.uber.org/zap"
)

// session is the state of one live connection
type session struct {
	client     *Client
	conn       *websocket.Conn
	capture    *Capture // nil when capturing is disabled
	dispatcher *dispatch.Dispatcher
}

// send writes one binary frame to the server
func (s *session) send(frame []byte) error {
	c := s.client
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	num := c.messageNum.Add(1)
	if err := s.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}

	logging.LogWebSocketMessage(c.sessionID, "sent", websocket.BinaryMessage, frame)
	if s.capture != nil {
		s.capture.Write(num, DirectionSent, frame)
	}
	return nil
}

// readLoop receives messages until the connection fails or is closed
func (s *session) readLoop() error {
	c := s.client
	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Info("Connection closed by server",
					zap.String("session_id", c.sessionID),
				)
			}
			return fmt.Errorf("read failed: %w", err)
		}

		num := c.messageNum.Add(1)
		logging.LogWebSocketMessage(c.sessionID, "received", msgType, data)
		if s.capture != nil {
			s.capture.Write(num, DirectionReceived, data)
		}

		if msgType != websocket.BinaryMessage {
			logging.Debug("Ignoring non-binary message",
				zap.String("session_id", c.sessionID),
				zap.Int64("message_num", num),
			)
			continue
		}

		s.handle(num, data)
	}
}

// handle decodes one binary message and dispatches its events. Out of bounds
// framing is logged; whatever was decoded before the error is still
// dispatched and the session continues.
func (s *session) handle(num int64, data []byte) {
	c := s.client

	pkt, err := protocol.Decode(data)
	if err != nil {
		logging.Warn("Malformed packet",
			zap.String("session_id", c.sessionID),
			zap.Int64("message_num", num),
			zap.Int("length", len(data)),
			zap.Error(err),
		)
		if c.metrics != nil {
			c.metrics.ObserveDecodeError()
		}
	}
	if c.metrics != nil {
		c.metrics.ObservePacket(pkt, len(data))
	}

	logging.Debug("Packet decoded",
		zap.String("session_id", c.sessionID),
		zap.Int64("message_num", num),
		zap.Stringer("packet", pkt),
	)

	s.dispatcher.Dispatch(pkt)
}

// heartbeatLoop sends a heartbeat right away and then every interval until
// ctx is done. The server answers each one with a popularity packet.
func (s *session) heartbeatLoop(ctx context.Context) error {
	c := s.client
	ticker := time.NewTicker(c.config.HeartbeatInterval)
	defer ticker.Stop()

	heartbeat := protocol.BuildHeartbeat()
	for {
		if err := s.send(heartbeat); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("heartbeat failed: %w", err)
		}
		if c.metrics != nil {
			c.metrics.ObserveHeartbeat()
		}
		logging.Debug("Heartbeat sent", zap.String("session_id", c.sessionID))

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// close sends a close frame and shuts the socket, unblocking readLoop
func (s *session) close() {
	c := s.client
	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait))
	c.writeMu.Unlock()
	_ = s.conn.Close()
}
