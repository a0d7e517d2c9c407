package logger

import "testing"

func TestNewFallsBackOnBadLevel(t *testing.T) {
	log := New(LoggingConfig{Level: "verbose-ish"})
	if log == nil {
		t.Fatal("expected a logger")
	}
	// Should not panic on any level.
	log.Debug("debug")
	log.Info("info")
}

func TestWithFieldChains(t *testing.T) {
	log := NewDefault("test")
	derived := log.WithField("a", 1).WithFields(map[string]any{"b": 2}).WithError(nil)
	if derived == nil {
		t.Fatal("expected derived logger")
	}
	derived.Infof("hello %s", "world")
}
