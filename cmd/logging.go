package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"
)

var levelRank = map[string]int{
	"DEBUG": 0,
	"INFO":  1,
	"WARN":  2,
	"ERROR": 3,
}

// setupLogging routes the standard logger through a writer that drops lines
// below level. Lines carry their level as a "[LEVEL] " prefix; unprefixed
// lines count as INFO.
func setupLogging(out io.Writer, level string, jsonLogs bool) error {
	w, err := newLevelWriter(out, level, jsonLogs)
	if err != nil {
		return err
	}
	if jsonLogs {
		log.SetFlags(0)
	} else {
		log.SetFlags(log.LstdFlags)
	}
	log.SetOutput(w)
	return nil
}

type levelWriter struct {
	mu       sync.Mutex
	out      io.Writer
	min      int
	jsonLogs bool
	now      func() time.Time
}

func newLevelWriter(out io.Writer, level string, jsonLogs bool) (*levelWriter, error) {
	threshold, ok := levelRank[strings.ToUpper(strings.TrimSpace(level))]
	if !ok {
		return nil, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", level)
	}
	return &levelWriter{out: out, min: threshold, jsonLogs: jsonLogs, now: time.Now}, nil
}

type jsonLine struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"msg"`
}

func (w *levelWriter) Write(p []byte) (int, error) {
	level, msg := splitLevel(p)
	if levelRank[level] < w.min {
		return len(p), nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.jsonLogs {
		if _, err := w.out.Write(p); err != nil {
			return 0, err
		}
		return len(p), nil
	}

	line, err := json.Marshal(jsonLine{
		Time:    w.now().UTC().Format(time.RFC3339Nano),
		Level:   strings.ToLower(level),
		Message: msg,
	})
	if err != nil {
		return 0, err
	}
	if _, err := w.out.Write(append(line, '\n')); err != nil {
		return 0, err
	}
	return len(p), nil
}

// splitLevel finds the "[LEVEL]" marker anywhere in the line so it works
// with or without the logger's date prefix
func splitLevel(p []byte) (string, string) {
	line := string(bytes.TrimRight(p, "\n"))
	for level := range levelRank {
		marker := "[" + level + "]"
		if i := strings.Index(line, marker); i >= 0 {
			return level, strings.TrimSpace(line[i+len(marker):])
		}
	}
	return "INFO", strings.TrimSpace(line)
}
