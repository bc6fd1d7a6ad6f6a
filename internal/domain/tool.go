package domain

import (
	"encoding/json"
	"fmt"
)

// Tool is an entry returned by a tool listing.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ToolResult is the content returned by a tool call.
type ToolResult struct {
	Texts   []string
	IsError bool
}

// DecodeFirst unmarshals the first text block as JSON.
func (r *ToolResult) DecodeFirst(out any) error {
	if len(r.Texts) == 0 {
		return Violation("content", "at least one text block", "none")
	}
	if err := json.Unmarshal([]byte(r.Texts[0]), out); err != nil {
		return fmt.Errorf("content[0].text is not JSON: %w", err)
	}
	return nil
}
