package a2a

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/mahzoun/create-8004-agent/internal/domain"
)

// ScanEvents parses a text/event-stream body and hands each event to fn.
// Multi-line data fields are joined with newlines; comments and unknown
// fields are ignored. Scanning stops early when fn returns false.
func ScanEvents(r io.Reader, fn func(domain.StreamEvent) bool) error {
	var (
		cur  domain.StreamEvent
		data []string
	)

	// flush emits the pending event and reports whether to keep reading.
	flush := func() bool {
		if cur.Event == "" && len(data) == 0 {
			return true
		}
		cur.Data = strings.Join(data, "\n")
		ev := cur
		cur = domain.StreamEvent{}
		data = nil
		return fn(ev)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case line == "":
			if !flush() {
				return nil
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			cur.Event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	flush()
	return nil
}

// IsFinalEvent reports whether an event closes a task stream: a JSON-RPC
// result (or bare object) with "final": true, or a "[DONE]" sentinel.
func IsFinalEvent(ev domain.StreamEvent) bool {
	data := strings.TrimSpace(ev.Data)
	if data == "[DONE]" {
		return true
	}
	var payload struct {
		Final  bool `json:"final"`
		Result *struct {
			Final bool `json:"final"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return false
	}
	return payload.Final || (payload.Result != nil && payload.Result.Final)
}
