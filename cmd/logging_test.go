package cmd

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelWriter_Filters(t *testing.T) {
	tests := []struct {
		level   string
		line    string
		written bool
	}{
		{"info", "2025/01/01 10:00:00 [DEBUG] cache miss\n", false},
		{"info", "2025/01/01 10:00:00 [INFO] started\n", true},
		{"info", "plain line\n", true},
		{"warn", "[INFO] started\n", false},
		{"warn", "[ERROR] failed\n", true},
		{"debug", "[DEBUG] cache miss\n", true},
		{"ERROR", "[WARN] slow\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.level+" "+tt.line, func(t *testing.T) {
			var buf bytes.Buffer
			w, err := newLevelWriter(&buf, tt.level, false)
			require.NoError(t, err)

			n, err := w.Write([]byte(tt.line))
			require.NoError(t, err)
			assert.Equal(t, len(tt.line), n)

			if tt.written {
				assert.Equal(t, tt.line, buf.String())
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestLevelWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	w, err := newLevelWriter(&buf, "info", true)
	require.NoError(t, err)
	w.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	_, err = w.Write([]byte("[WARN] Job j1: video v1 failed\n"))
	require.NoError(t, err)

	var line map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "Job j1: video v1 failed", line["msg"])
	assert.Equal(t, "2025-03-01T12:00:00Z", line["time"])
}

func TestLevelWriter_UnknownLevel(t *testing.T) {
	_, err := newLevelWriter(&bytes.Buffer{}, "verbose", false)
	assert.Error(t, err)
}
