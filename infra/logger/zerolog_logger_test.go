package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestLevelFromEnv(t *testing.T) {
	cases := map[string]string{
		"debug": "debug",
		"warn":  "warn",
		"error": "error",
		"":      "info",
		"junk":  "info",
	}
	for in, want := range cases {
		t.Setenv("SR_LOG_LEVEL", in)
		assert.Equal(t, want, levelFromEnv().String(), "SR_LOG_LEVEL=%q", in)
	}
}
