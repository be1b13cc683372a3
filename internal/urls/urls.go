package urls

import "strconv"

// DefaultChatServer is the public websocket endpoint for room chat
const DefaultChatServer = "wss://broadcastlv.chat.bilibili.com/sub"

// LiveRoomBase is the prefix of a room's web page
const LiveRoomBase = "https://live.bilibili.com/"

// RoomPage returns the browser URL of a live room
func RoomPage(roomID int64) string {
	return LiveRoomBase + strconv.FormatInt(roomID, 10)
}
