package protocol

import (
	"encoding/json"
	"fmt"
)

// Outbound frame construction. Only two frames are ever sent by the client:
// the room-join handshake (OpJoinRoom) right after connecting, and the
// periodic heartbeat (OpHeartbeat).

// joinRoomPayload is the JSON body of the handshake frame
type joinRoomPayload struct {
	RoomID int64 `json:"roomid"`
}

// Encode builds a complete frame: the 16-byte header followed by the raw,
// uncompressed UTF-8 bytes of payload.
//
// Frame Structure:
//
//	[0-3]    total_length   16 + len(payload)
//	[4-5]    header_length  16
//	[6-7]    version        1
//	[8-11]   operation      op
//	[12-15]  sequence       1
//	[16+]    payload
//
// Example:
//
//	frame := Encode("", OpHeartbeat)
//	// [0 0 0 16 0 16 0 1 0 0 0 2 0 0 0 1]
func Encode(payload string, op Operation) []byte {
	frame := make([]byte, HeaderLength, HeaderLength+len(payload))

	// The header is exactly HeaderLength bytes, so none of these writes can
	// fall outside the buffer.
	frame, _ = WriteInt(frame, offTotalLength, 4, uint64(HeaderLength+len(payload)))
	frame, _ = WriteInt(frame, offHeaderLength, 2, HeaderLength)
	frame, _ = WriteInt(frame, offVersion, 2, ProtocolVersion)
	frame, _ = WriteInt(frame, offOperation, 4, uint64(op))
	frame, _ = WriteInt(frame, offSequence, 4, SequenceID)

	return append(frame, payload...)
}

// BuildJoinRoom constructs the handshake frame that subscribes the session
// to a room's chat stream. It must be the first frame sent after connecting.
//
// Example:
//
//	msg, err := BuildJoinRoom(3470615)
//	// payload: {"roomid":3470615}
func BuildJoinRoom(roomID int64) ([]byte, error) {
	if roomID <= 0 {
		return nil, fmt.Errorf("invalid room id: %d", roomID)
	}

	payload, err := json.Marshal(joinRoomPayload{RoomID: roomID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal join payload: %w", err)
	}

	return Encode(string(payload), OpJoinRoom), nil
}

// BuildHeartbeat constructs the keep-alive frame (empty payload)
func BuildHeartbeat() []byte {
	return Encode("", OpHeartbeat)
}
