package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitializeSilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger should be silent when no level is configured")
	}
}

func TestInitializeLevelFromEnv(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "warn")

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	core := GetLogger().Core()
	if core.Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !core.Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled at warn level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"loud", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitializeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "danmaku.log")

	if err := InitializeFile("info", path); err != nil {
		t.Fatalf("InitializeFile() error = %v", err)
	}
	Info("joined room", zap.Int64("room_id", 3470615))
	Debug("not written at info level")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, `"msg":"joined room"`) {
		t.Errorf("log file missing info entry: %s", content)
	}
	if !strings.Contains(content, `"room_id":3470615`) {
		t.Errorf("log file missing field: %s", content)
	}
	if strings.Contains(content, "not written") {
		t.Errorf("debug entry written at info level: %s", content)
	}
}

func TestInitializeFileRequiresPath(t *testing.T) {
	if err := InitializeFile("info", ""); err == nil {
		t.Error("InitializeFile() with empty path should fail")
	}
}

func TestLogWebSocketMessageDebugOnly(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))

	LogWebSocketMessage("s1", "received", 2, []byte{0, 0, 0, 16})
	if logs.Len() != 0 {
		t.Errorf("expected no entries at info level, got %d", logs.Len())
	}

	core, logs = observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))

	LogWebSocketMessage("s1", "received", 2, []byte{0, 0, 0, 16})
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["hex_dump"]; got != "00000010" {
		t.Errorf("hex_dump = %v, want 00000010", got)
	}
}

func TestHexDumpTruncates(t *testing.T) {
	data := make([]byte, 300)
	got := hexDump(data)
	if !strings.HasSuffix(got, "...") {
		t.Error("long dumps should be truncated")
	}
	if len(got) != 512+3 {
		t.Errorf("dump length = %d, want %d", len(got), 515)
	}
}

func TestAsciiDump(t *testing.T) {
	if got := asciiDump([]byte("\x00{a}\x1f")); got != ".{a}." {
		t.Errorf("asciiDump() = %q, want %q", got, ".{a}.")
	}
}
