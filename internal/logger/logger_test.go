package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLogIsUsableBeforeInit(t *testing.T) {
	if Log == nil || Sugar == nil {
		t.Fatal("global logger is nil before Init")
	}
	Named("terrain").Info("discarded")
}

func TestLevelsWrittenToFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warning", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			path := filepath.Join(dir, tt.level+".log")
			fc := DefaultFileConfig(path)
			fc.Compress = false
			Init(Config{Level: tt.level, File: fc})

			log := Named("streamer")
			log.Debug("debug message")
			log.Info("info message")
			log.Warn("warn message", zap.Int("chunk_x", 3))
			log.Error("error message")
			Sync()

			b, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read log: %v", err)
			}
			content := string(b)
			for _, want := range tt.expected {
				if !strings.Contains(content, want) {
					t.Errorf("expected %s in log output", want)
				}
			}
			for _, unwanted := range tt.excluded {
				if strings.Contains(content, unwanted) {
					t.Errorf("unexpected %s in %s output", unwanted, tt.level)
				}
			}
			if !strings.Contains(content, "streamer") {
				t.Error("component name missing from output")
			}
		})
	}
	Init(Config{})
}

func TestInitWithoutOutputsIsSilent(t *testing.T) {
	Init(Config{Level: "debug"})
	if Log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger without outputs should be a no-op")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/terrain.log")
	if cfg.Path != "/tmp/terrain.log" || cfg.MaxSizeMB != 20 || cfg.MaxBackups != 3 || cfg.MaxAgeDays != 7 || !cfg.Compress {
		t.Errorf("DefaultFileConfig = %+v", cfg)
	}
}
