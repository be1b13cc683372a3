package client

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/muurk/danmaku/internal/logging"
	"github.com/muurk/danmaku/internal/protocol"
	"go.uber.org/zap"
)

// Capture directions
const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

// maxCaptureLine bounds a single JSONL record when reading captures back
const maxCaptureLine = 4 * 1024 * 1024

// Record is one captured websocket message
type Record struct {
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"session_id"`
	MessageNum int64     `json:"message_num"`
	Direction  string    `json:"direction"`
	Operation  string    `json:"operation"`
	Length     int       `json:"length"`
	PayloadHex string    `json:"payload_hex"`
}

// Payload decodes the captured bytes
func (r *Record) Payload() ([]byte, error) {
	data, err := hex.DecodeString(r.PayloadHex)
	if err != nil {
		return nil, fmt.Errorf("message %d: invalid payload hex: %w", r.MessageNum, err)
	}
	return data, nil
}

// Capture appends every message of a session to a JSONL file
type Capture struct {
	mu        sync.Mutex
	file      *os.File
	path      string
	sessionID string
}

// NewCapture creates <dir>/capture-<YYYYMMDD-HHMMSS>.jsonl. The directory is
// created if it does not exist.
func NewCapture(dir, sessionID string) (*Capture, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create capture directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("capture-%s.jsonl",
		time.Now().Format("20060102-150405")))

	// Append so two sessions started in the same second share one file
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}

	return &Capture{file: f, path: path, sessionID: sessionID}, nil
}

// Path returns the capture file location
func (c *Capture) Path() string {
	return c.path
}

// Write records one message. Failures are logged, never returned: losing a
// capture line must not end the session.
func (c *Capture) Write(messageNum int64, direction string, data []byte) {
	rec := Record{
		Timestamp:  time.Now(),
		SessionID:  c.sessionID,
		MessageNum: messageNum,
		Direction:  direction,
		Operation:  operationOf(data),
		Length:     len(data),
		PayloadHex: hex.EncodeToString(data),
	}

	line, err := json.Marshal(rec)
	if err != nil {
		logging.Error("Failed to marshal capture record", zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.file.Write(append(line, '\n')); err != nil {
		logging.Error("Failed to write capture record",
			zap.String("path", c.path),
			zap.Error(err),
		)
		return
	}

	logging.Debug("Captured message",
		zap.String("path", c.path),
		zap.Int64("message_num", messageNum),
	)
}

// Close flushes and closes the capture file
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file.Close()
}

// ReadCapture loads every record from a capture file
func ReadCapture(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxCaptureLine)

	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read capture: %w", err)
	}
	return records, nil
}

// operationOf names the operation in a frame header, or "" when data is too
// short to carry one
func operationOf(data []byte) string {
	op, err := protocol.ReadInt(data, 8, 4)
	if err != nil {
		return ""
	}
	return protocol.Operation(op).String()
}
