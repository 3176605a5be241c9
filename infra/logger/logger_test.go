package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithOutput_JSONCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput("matcher", &buf)
	l.Infof("ranked %d candidates", 3)

	var entry map[string]any
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log line is not JSON: %q", buf.String())
	assert.Equal(t, "matcher", entry["component"])
	assert.Contains(t, entry["message"], "ranked 3 candidates")
}

func TestNewWithOutput_ConsoleInDev(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	var buf bytes.Buffer
	l := NewWithOutput("api", &buf)
	l.Warnf("slow handler")
	if !strings.Contains(buf.String(), "slow handler") {
		t.Fatalf("console output missing message: %q", buf.String())
	}
}

func TestLoggerMethods(t *testing.T) {
	l := New("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestDebugwFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput("ledger", &buf)
	l.Debugw("bid resolved", map[string]any{"bid_id": "b1", "status": "ACCEPTED"})

	var entry map[string]any
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "b1", entry["bid_id"])
	assert.Equal(t, "ACCEPTED", entry["status"])
}
