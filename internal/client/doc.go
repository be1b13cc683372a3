// Package client implements the websocket transport for a danmaku room.
//
// A Client dials the chat server, sends the join-room frame and then runs
// two loops until the context ends or the socket fails:
//
//   - the read loop decodes every binary message with protocol.Decode and
//     hands the packet to a dispatch.Dispatcher
//   - the heartbeat loop sends a heartbeat frame right after joining and
//     then every HeartbeatInterval
//
// Malformed packets are logged and counted but never end the session.
//
// # Captures
//
// When CaptureDir is set, every sent and received message is appended to
// capture-<YYYYMMDD-HHMMSS>.jsonl as one JSON object per line:
//
//	{"timestamp":"...","session_id":"...","message_num":3,"direction":"received",
//	 "operation":"message","length":142,"payload_hex":"0000008e0010..."}
//
// ReadCapture loads a file back, e.g. for offline decoding.
package client
