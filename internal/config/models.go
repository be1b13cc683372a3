package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/muurk/danmaku/internal/urls"
)

// Defaults applied to new registries and to files that omit preferences
const (
	DefaultServerURL        = urls.DefaultChatServer
	DefaultHeartbeatSeconds = 30
	DefaultLogLevel         = "warn"
)

// Registry represents the entire user configuration file.
// It stores saved rooms and application preferences.
type Registry struct {
	Version     int              `yaml:"version"`
	Rooms       map[string]*Room `yaml:"rooms,omitempty"` // Keyed by user-chosen room name
	Preferences *Preferences     `yaml:"preferences,omitempty"`
}

// Room is a saved live room
type Room struct {
	RoomID     int64     `yaml:"room_id"`
	Nickname   string    `yaml:"nickname,omitempty"`    // Free-form label shown by `room list`
	LastJoined time.Time `yaml:"last_joined,omitempty"` // Last time `watch` joined this room
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	ServerURL        string `yaml:"server_url"`
	HeartbeatSeconds int    `yaml:"heartbeat_seconds"`
	LogLevel         string `yaml:"log_level"`
	CaptureDir       string `yaml:"capture_dir,omitempty"` // Empty disables capturing
}

func defaultPreferences() *Preferences {
	return &Preferences{
		ServerURL:        DefaultServerURL,
		HeartbeatSeconds: DefaultHeartbeatSeconds,
		LogLevel:         DefaultLogLevel,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Rooms:       make(map[string]*Room),
		Preferences: defaultPreferences(),
	}
}

// HeartbeatInterval returns the configured heartbeat period
func (p *Preferences) HeartbeatInterval() time.Duration {
	if p == nil || p.HeartbeatSeconds <= 0 {
		return DefaultHeartbeatSeconds * time.Second
	}
	return time.Duration(p.HeartbeatSeconds) * time.Second
}

// AddRoom saves a room under name, replacing any previous entry.
// Names that parse as integers are rejected since they would shadow room ids.
func (r *Registry) AddRoom(name string, roomID int64, nickname string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("room name is required")
	}
	if _, err := strconv.ParseInt(name, 10, 64); err == nil {
		return fmt.Errorf("room name %q must not be a number", name)
	}
	if roomID <= 0 {
		return fmt.Errorf("invalid room id %d: must be positive", roomID)
	}

	if r.Rooms == nil {
		r.Rooms = make(map[string]*Room)
	}
	r.Rooms[name] = &Room{RoomID: roomID, Nickname: nickname}
	return nil
}

// RemoveRoom deletes a saved room
func (r *Registry) RemoveRoom(name string) error {
	if _, ok := r.Rooms[name]; !ok {
		return fmt.Errorf("no saved room named %q", name)
	}
	delete(r.Rooms, name)
	return nil
}

// ResolveRoom turns a saved room name or a numeric room id into a room id
func (r *Registry) ResolveRoom(arg string) (int64, error) {
	if room, ok := r.Rooms[arg]; ok {
		return room.RoomID, nil
	}

	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is neither a saved room nor a room id", arg)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid room id %d: must be positive", id)
	}
	return id, nil
}

// MarkJoined stamps every saved entry for roomID with the current time and
// reports whether any entry matched
func (r *Registry) MarkJoined(roomID int64) bool {
	now := time.Now()
	marked := false
	for _, room := range r.Rooms {
		if room.RoomID == roomID {
			room.LastJoined = now
			marked = true
		}
	}
	return marked
}

// RoomNames returns saved room names in sorted order
func (r *Registry) RoomNames() []string {
	names := make([]string, 0, len(r.Rooms))
	for name := range r.Rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
