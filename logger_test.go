package duraclient

import (
	"testing"
)

func TestNopLoggerDiscards(t *testing.T) {
	var l Logger = NopLogger{}

	// Must not panic, regardless of arguments.
	l.Debug("msg")
	l.Info("msg", "key", "value")
	l.Warn("msg", "dangling")
	l.Error("msg", "a", 1, "b", 2)
}

func TestSimpleLoggerImplementsLogger(t *testing.T) {
	var _ Logger = NewSimpleLogger()
}

func TestDefaultDebugConfig(t *testing.T) {
	cfg := DefaultDebugConfig()

	if cfg.Enabled {
		t.Error("Debug must be off by default")
	}
	if !cfg.LogRequests || !cfg.LogRetries || !cfg.LogCache || !cfg.LogCircuit || !cfg.LogQueue || !cfg.LogRateLimit {
		t.Error("All areas must default to on")
	}
	if cfg.RequestIDGen == nil {
		t.Fatal("RequestIDGen must be set")
	}

	a, b := cfg.RequestIDGen(), cfg.RequestIDGen()
	if a == "" || a == b {
		t.Error("Request IDs must be nonempty and unique")
	}
}
