package usecase

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/mahzoun/create-8004-agent/internal/domain"
)

// isoMillis is the JavaScript Date.toISOString layout.
const isoMillis = "2006-01-02T15:04:05.000Z"

var requiredTools = []string{"chat", "echo", "get_time"}

func mcpChecks() []Check {
	return []Check{
		{Name: "generates tool server files", Run: filesExist(domain.MCPServerFile, domain.ToolsFile)},
		{Name: "lists available tools", Run: checkListTools},
		{Name: "executes echo tool", Run: checkEchoTool},
		{Name: "executes get_time tool", Run: checkTimeTool},
		{Name: "executes chat tool with mock response", Run: checkChatTool},
	}
}

func checkListTools(ctx context.Context, env *CheckEnv) error {
	tools, err := env.Tools.ListTools(ctx)
	if err != nil {
		return err
	}
	if len(tools) < len(requiredTools) {
		return domain.Violation("tools length", ">= 3", len(tools))
	}
	names := lo.Map(tools, func(t domain.Tool, _ int) string { return t.Name })
	if missing, _ := lo.Difference(requiredTools, names); len(missing) > 0 {
		return domain.Violation("tools", requiredTools, names)
	}
	return nil
}

func checkEchoTool(ctx context.Context, env *CheckEnv) error {
	const text = "Test message"
	res, err := env.Tools.CallTool(ctx, "echo", map[string]any{"text": text})
	if err != nil {
		return err
	}
	var out struct {
		Echoed string `json:"echoed"`
	}
	if err := res.DecodeFirst(&out); err != nil {
		return err
	}
	if out.Echoed != text {
		return domain.Violation("echoed", text, out.Echoed)
	}
	return nil
}

func checkTimeTool(ctx context.Context, env *CheckEnv) error {
	res, err := env.Tools.CallTool(ctx, "get_time", nil)
	if err != nil {
		return err
	}
	var out struct {
		Time string `json:"time"`
	}
	if err := res.DecodeFirst(&out); err != nil {
		return err
	}
	return ExpectISOTimestamp(out.Time)
}

// ExpectISOTimestamp asserts s survives a parse and re-render as a UTC
// millisecond timestamp unchanged.
func ExpectISOTimestamp(s string) error {
	if s == "" {
		return domain.Violation("time", "ISO-8601 timestamp", "")
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return domain.Violation("time", "ISO-8601 timestamp", s)
	}
	if rendered := t.UTC().Format(isoMillis); rendered != s {
		return domain.Violation("time", rendered, s)
	}
	return nil
}

func checkChatTool(ctx context.Context, env *CheckEnv) error {
	res, err := env.Tools.CallTool(ctx, "chat", map[string]any{"message": "Hello from the harness"})
	if err != nil {
		return err
	}
	var out struct {
		Response string `json:"response"`
	}
	if err := res.DecodeFirst(&out); err != nil {
		return err
	}
	return containsAll("response", out.Response, mockMarker)
}
