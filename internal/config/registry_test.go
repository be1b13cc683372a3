package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if want := filepath.Join(xdg, "danmaku"); configDir != want {
		t.Errorf("GetConfigDir() = %v, want %v", configDir, want)
	}
}

func TestGetConfigDirFallback(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("fallback layout checked on Linux only")
	}
	t.Setenv("XDG_CONFIG_HOME", "")

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if !strings.Contains(configDir, ".config") || filepath.Base(configDir) != "danmaku" {
		t.Errorf("GetConfigDir() = %v, want $HOME/.config/danmaku", configDir)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Rooms == nil {
		t.Error("NewRegistry().Rooms should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if reg.Preferences.ServerURL != DefaultServerURL {
		t.Errorf("ServerURL = %v, want %v", reg.Preferences.ServerURL, DefaultServerURL)
	}
	if reg.Preferences.HeartbeatInterval() != 30*time.Second {
		t.Errorf("HeartbeatInterval() = %v, want 30s", reg.Preferences.HeartbeatInterval())
	}
	if reg.Preferences.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %v, want %v", reg.Preferences.LogLevel, DefaultLogLevel)
	}
}

func TestHeartbeatInterval(t *testing.T) {
	tests := []struct {
		name  string
		prefs *Preferences
		want  time.Duration
	}{
		{"nil", nil, 30 * time.Second},
		{"zero", &Preferences{}, 30 * time.Second},
		{"negative", &Preferences{HeartbeatSeconds: -1}, 30 * time.Second},
		{"custom", &Preferences{HeartbeatSeconds: 5}, 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.prefs.HeartbeatInterval(); got != tt.want {
				t.Errorf("HeartbeatInterval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddRoom(t *testing.T) {
	tests := []struct {
		name     string
		roomName string
		roomID   int64
		wantErr  bool
	}{
		{"valid", "lofi", 3470615, false},
		{"trims name", "  lofi  ", 1, false},
		{"empty name", "", 1, true},
		{"blank name", "   ", 1, true},
		{"numeric name", "12345", 1, true},
		{"zero id", "lofi", 0, true},
		{"negative id", "lofi", -3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			err := reg.AddRoom(tt.roomName, tt.roomID, "")
			if (err != nil) != tt.wantErr {
				t.Fatalf("AddRoom() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				room := reg.Rooms[strings.TrimSpace(tt.roomName)]
				if room == nil || room.RoomID != tt.roomID {
					t.Errorf("Rooms[%q] = %+v, want room id %d", tt.roomName, room, tt.roomID)
				}
			}
		})
	}
}

func TestAddRoomReplaces(t *testing.T) {
	reg := &Registry{Version: 1}

	if err := reg.AddRoom("lofi", 1, "old"); err != nil {
		t.Fatal(err)
	}
	if err := reg.AddRoom("lofi", 2, "new"); err != nil {
		t.Fatal(err)
	}

	if got := reg.Rooms["lofi"]; got.RoomID != 2 || got.Nickname != "new" {
		t.Errorf("Rooms[lofi] = %+v, want the replacement", got)
	}
}

func TestRemoveRoom(t *testing.T) {
	reg := NewRegistry()
	_ = reg.AddRoom("lofi", 1, "")

	if err := reg.RemoveRoom("lofi"); err != nil {
		t.Fatalf("RemoveRoom() error = %v", err)
	}
	if _, ok := reg.Rooms["lofi"]; ok {
		t.Error("room still present after RemoveRoom()")
	}
	if err := reg.RemoveRoom("lofi"); err == nil {
		t.Error("RemoveRoom() of a missing room should fail")
	}
}

func TestResolveRoom(t *testing.T) {
	reg := NewRegistry()
	_ = reg.AddRoom("lofi", 3470615, "")

	tests := []struct {
		arg     string
		want    int64
		wantErr bool
	}{
		{"lofi", 3470615, false},
		{"42", 42, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"unknown", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := reg.ResolveRoom(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveRoom(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveRoom(%q) = %d, want %d", tt.arg, got, tt.want)
			}
		})
	}
}

func TestMarkJoined(t *testing.T) {
	reg := NewRegistry()
	_ = reg.AddRoom("a", 1, "")
	_ = reg.AddRoom("b", 1, "")
	_ = reg.AddRoom("c", 2, "")

	before := time.Now()
	if !reg.MarkJoined(1) {
		t.Error("MarkJoined(1) = false, want true")
	}
	after := time.Now()

	if reg.MarkJoined(99) {
		t.Error("MarkJoined(99) = true for an unsaved room")
	}

	for _, name := range []string{"a", "b"} {
		joined := reg.Rooms[name].LastJoined
		if joined.Before(before) || joined.After(after) {
			t.Errorf("%s LastJoined = %v, should be between %v and %v", name, joined, before, after)
		}
	}
	if !reg.Rooms["c"].LastJoined.IsZero() {
		t.Error("unrelated room should not be marked")
	}
}

func TestRoomNames(t *testing.T) {
	reg := NewRegistry()
	_ = reg.AddRoom("zeta", 1, "")
	_ = reg.AddRoom("alpha", 2, "")

	names := reg.RoomNames()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("RoomNames() = %v, want [alpha zeta]", names)
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry()
	_ = reg.AddRoom("lofi", 3470615, "late night radio")
	reg.MarkJoined(3470615)
	reg.Preferences.CaptureDir = "/tmp/captures"

	if err := reg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file missing: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("config permissions = %v, want 0600", info.Mode().Perm())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	loaded, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}

	room := loaded.Rooms["lofi"]
	if room == nil {
		t.Fatal("room should exist in loaded registry")
	}
	if room.RoomID != 3470615 || room.Nickname != "late night radio" {
		t.Errorf("loaded room = %+v", room)
	}
	if !room.LastJoined.Equal(reg.Rooms["lofi"].LastJoined) {
		t.Errorf("LastJoined = %v, want %v", room.LastJoined, reg.Rooms["lofi"].LastJoined)
	}
	if loaded.Preferences.CaptureDir != "/tmp/captures" {
		t.Errorf("CaptureDir = %v, want /tmp/captures", loaded.Preferences.CaptureDir)
	}
}

func TestLoadRegistryFrom(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T, reg *Registry)
	}{
		{
			name:    "rooms only",
			content: "version: 1\nrooms:\n  lofi:\n    room_id: 7\n",
			check: func(t *testing.T, reg *Registry) {
				if reg.Rooms["lofi"].RoomID != 7 {
					t.Errorf("room id = %d, want 7", reg.Rooms["lofi"].RoomID)
				}
				if reg.Preferences.ServerURL != DefaultServerURL {
					t.Errorf("ServerURL = %q, want default", reg.Preferences.ServerURL)
				}
			},
		},
		{
			name:    "custom server",
			content: "version: 1\npreferences:\n  server_url: ws://localhost:9000/sub\n  heartbeat_seconds: 10\n",
			check: func(t *testing.T, reg *Registry) {
				if reg.Preferences.ServerURL != "ws://localhost:9000/sub" {
					t.Errorf("ServerURL = %q", reg.Preferences.ServerURL)
				}
				if reg.Preferences.HeartbeatInterval() != 10*time.Second {
					t.Errorf("HeartbeatInterval() = %v", reg.Preferences.HeartbeatInterval())
				}
				if reg.Rooms == nil {
					t.Error("Rooms should be initialized")
				}
			},
		},
		{name: "wrong version", content: "version: 2\n", wantErr: true},
		{name: "invalid yaml", content: "version: [1\n", wantErr: true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "config-"+string(rune('a'+i))+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			reg, err := LoadRegistryFrom(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadRegistryFrom() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, reg)
			}
		})
	}
}

func TestLoadRegistryMissingFile(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	reg, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	if len(reg.Rooms) != 0 || reg.Preferences.ServerURL != DefaultServerURL {
		t.Errorf("LoadRegistry() = %+v, want defaults", reg)
	}

	_ = reg.AddRoom("lofi", 1, "")
	if err := SaveRegistry(reg); err != nil {
		t.Fatalf("SaveRegistry() error = %v", err)
	}

	again, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	if again.Rooms["lofi"] == nil {
		t.Error("saved room not found after reload")
	}
}

// Benchmark tests

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}

func BenchmarkResolveRoom(b *testing.B) {
	reg := NewRegistry()
	_ = reg.AddRoom("lofi", 3470615, "")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = reg.ResolveRoom("lofi")
	}
}
