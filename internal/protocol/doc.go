// Package protocol implements the danmaku chat binary protocol.
//
// This package encodes the two frames the client sends (room join and
// heartbeat) and decodes the frames the chat server pushes back: message
// batches, viewer counts and join acknowledgements.
//
// # Frame Format
//
// Every frame, and every sub-frame nested inside a message batch, starts
// with a 16-byte big-endian header:
//   - [0:4)   total_length: entire frame including header
//   - [4:6)   header_length: always 16
//   - [6:8)   protocol_version: always 1
//   - [8:12)  operation: opcode
//   - [12:16) sequence: always 1
//   - [16:)   payload
//
// # Operations
//
//   - 2 Heartbeat (client -> server): empty payload, sent every 30 seconds
//   - 3 Popularity (server -> client): 4-byte viewer count at offset 16
//   - 5 Message (server -> client): zlib-compressed sub-frames holding
//     JSON texts separated by control bytes
//   - 7 JoinRoom (client -> server): {"roomid": <id>}
//   - 8 JoinAck (server -> client): empty payload
//
// # Usage Example - Construction
//
//	msg, err := protocol.BuildJoinRoom(3470615)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = conn.WriteMessage(websocket.BinaryMessage, msg)
//
// # Usage Example - Parsing
//
//	_, data, err := conn.ReadMessage()
//	pkt, err := protocol.Decode(data)
//	if err != nil {
//	    // BoundsError: truncated frame; pkt still holds what was decoded
//	}
//	for _, fragment := range pkt.Body {
//	    // each fragment is one candidate JSON object
//	}
//
// # Error Handling
//
// The package distinguishes between:
//   - BoundsError: a header or length field points outside the buffer.
//     Returned to the caller, never fatal.
//   - DecompressionError: one sub-frame of a batch is corrupt. Logged and
//     skipped; the remaining sub-frames are still decoded.
//
// JSON validity of fragments is not checked here; the dispatch package owns
// that.
//
// # Thread Safety
//
// Encode and Decode are stateless and safe for concurrent use. Decode borrows
// a pooled scratch buffer for decompression and returns it before
// returning; nothing in a returned Packet aliases pooled memory.
package protocol
