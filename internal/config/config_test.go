package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/chessdrill/internal/trainer"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := cfg.Trainer()
	if got != trainer.DefaultConfig() {
		t.Errorf("Trainer() = %+v, want %+v", got, trainer.DefaultConfig())
	}
	if cfg.RelearnDelay != 10*time.Minute {
		t.Errorf("RelearnDelay = %s, want 10m", cfg.RelearnDelay)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CHESSDRILL_COURSE", "italian.yaml")
	t.Setenv("CHESSDRILL_MODE", "review")
	t.Setenv("CHESSDRILL_OPPONENT_DELAY", "1s")
	t.Setenv("CHESSDRILL_MAX_HINT_MOVES", "5")
	t.Setenv("CHESSDRILL_RELEARN_DELAY", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Course != "italian.yaml" || cfg.Mode != "review" {
		t.Errorf("course/mode = %q/%q", cfg.Course, cfg.Mode)
	}
	if cfg.Trainer().OpponentDelay != time.Second {
		t.Errorf("OpponentDelay = %s, want 1s", cfg.Trainer().OpponentDelay)
	}
	if cfg.Trainer().MaxHintMoves != 5 {
		t.Errorf("MaxHintMoves = %d, want 5", cfg.Trainer().MaxHintMoves)
	}
	if cfg.Scheduler().RelearnDelay != time.Hour {
		t.Errorf("RelearnDelay = %s, want 1h", cfg.Scheduler().RelearnDelay)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{"bad duration", "CHESSDRILL_LOAD_DELAY", "soon", "parse env:"},
		{"negative duration", "CHESSDRILL_COMPLETION_PAUSE", "-1s", "must not be negative"},
		{"bad int", "CHESSDRILL_MAX_HINT_MOVES", "many", "parse env:"},
		{"zero hints", "CHESSDRILL_MAX_HINT_MOVES", "0", "at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestDBPath(t *testing.T) {
	dir := t.TempDir()

	explicit := filepath.Join(dir, "custom", "drill.db")
	p, err := Config{DB: explicit}.DBPath()
	if err != nil {
		t.Fatalf("DBPath: %v", err)
	}
	if p != explicit {
		t.Errorf("DBPath() = %q, want %q", p, explicit)
	}

	t.Setenv("CHESSDRILL_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = Config{}.DBPath()
	if err != nil {
		t.Fatalf("DBPath: %v", err)
	}
	if want := filepath.Join(dir, "chessdrill", "chessdrill.db"); p != want {
		t.Errorf("DBPath() = %q, want %q", p, want)
	}
}
