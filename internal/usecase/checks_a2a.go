package usecase

import (
	"context"

	"github.com/mahzoun/create-8004-agent/internal/domain"
	"github.com/mahzoun/create-8004-agent/pkg/jsonrpc"
)

const (
	mockMarker          = "[MOCK]"
	continuityContextID = "test-context-123"
)

func a2aChecks(streaming bool) []Check {
	if streaming {
		return []Check{
			{Name: "generates streaming-enabled server", Run: allOf(
				filesExist(domain.A2AServerFile),
				fileContains(domain.A2AServerFile, "streamResponse", "text/event-stream"),
			)},
			{Name: "advertises streaming in agent card", Run: checkAgentCard(true)},
			{Name: "handles regular message/send", Run: checkSendStillCompletes},
			{Name: "answers message/stream with server-sent events", Run: checkStreamMessage},
		}
	}
	return []Check{
		{Name: "generates required files", Run: filesExist(
			domain.A2AServerFile,
			domain.AgentFile,
			domain.AgentCardFile,
			domain.PackageJSONFile,
			domain.ReadmeFile,
		)},
		{Name: "serves valid agent card", Run: checkAgentCard(false)},
		{Name: "handles message/send", Run: checkSendMessage},
		{Name: "maintains conversation context", Run: checkContextContinuity},
		{Name: "handles tasks/get", Run: checkGetTask},
		{Name: "handles tasks/cancel", Run: checkCancelTask},
		{Name: "rejects invalid JSON-RPC version", Run: checkInvalidVersion},
		{Name: "rejects unknown method", Run: checkUnknownMethod},
	}
}

func allOf(checks ...CheckFunc) CheckFunc {
	return func(ctx context.Context, env *CheckEnv) error {
		for _, c := range checks {
			if err := c(ctx, env); err != nil {
				return err
			}
		}
		return nil
	}
}

func checkAgentCard(streaming bool) CheckFunc {
	return func(ctx context.Context, env *CheckEnv) error {
		card, err := env.Tasks.GetAgentCard(ctx)
		if err != nil {
			return err
		}
		switch {
		case card.Name == "":
			return domain.Violation("card.name", "non-empty", "")
		case card.Description == "":
			return domain.Violation("card.description", "non-empty", "")
		case card.URL == "":
			return domain.Violation("card.url", "non-empty", "")
		case card.Capabilities == nil:
			return domain.Violation("card.capabilities", "object", nil)
		case card.Capabilities.Streaming != streaming:
			return domain.Violation("card.capabilities.streaming", streaming, card.Capabilities.Streaming)
		}
		return nil
	}
}

func checkSendMessage(ctx context.Context, env *CheckEnv) error {
	reply, err := env.Tasks.SendMessage(ctx, "Hello, test!", "")
	if err != nil {
		return err
	}
	return expectCompletedTask(reply)
}

func checkSendStillCompletes(ctx context.Context, env *CheckEnv) error {
	reply, err := env.Tasks.SendMessage(ctx, "Hello streaming!", "")
	if err != nil {
		return err
	}
	if reply.Task == nil || reply.Task.Status != domain.TaskCompleted {
		var status domain.TaskStatus
		if reply.Task != nil {
			status = reply.Task.Status
		}
		return domain.Violation("result.status", domain.TaskCompleted, status)
	}
	return nil
}

func checkContextContinuity(ctx context.Context, env *CheckEnv) error {
	for _, text := range []string{"My name is Alice", "What is my name?"} {
		reply, err := env.Tasks.SendMessage(ctx, text, continuityContextID)
		if err != nil {
			return err
		}
		if reply.Task == nil {
			return domain.Violation("result", "task", nil)
		}
		if reply.Task.ContextID != continuityContextID {
			return domain.Violation("result.contextId", continuityContextID, reply.Task.ContextID)
		}
	}
	return nil
}

func sendForTask(ctx context.Context, env *CheckEnv) (*domain.Task, error) {
	reply, err := env.Tasks.SendMessage(ctx, "Test message", "")
	if err != nil {
		return nil, err
	}
	if reply.Task == nil || reply.Task.ID == "" {
		return nil, domain.Violation("result.id", "non-empty", "")
	}
	return reply.Task, nil
}

func checkGetTask(ctx context.Context, env *CheckEnv) error {
	sent, err := sendForTask(ctx, env)
	if err != nil {
		return err
	}
	reply, err := env.Tasks.GetTask(ctx, sent.ID)
	if err != nil {
		return err
	}
	if reply.Task.ID != sent.ID {
		return domain.Violation("result.id", sent.ID, reply.Task.ID)
	}
	// The stored task may only have moved forward since message/send answered.
	if got := reply.Task.Status; got != sent.Status && !sent.Status.CanTransition(got) {
		return domain.Violation("result.status", sent.Status, got)
	}
	return nil
}

func checkCancelTask(ctx context.Context, env *CheckEnv) error {
	sent, err := sendForTask(ctx, env)
	if err != nil {
		return err
	}
	reply, err := env.Tasks.CancelTask(ctx, sent.ID)
	if err != nil {
		return err
	}
	if reply.Task.Status != domain.TaskCanceled {
		return domain.Violation("result.status", domain.TaskCanceled, reply.Task.Status)
	}
	return nil
}

func checkInvalidVersion(ctx context.Context, env *CheckEnv) error {
	resp, err := env.Tasks.Raw(ctx, jsonrpc.Request{
		JSONRPC: "1.0",
		Method:  "message/send",
		Params:  map[string]any{},
		ID:      1,
	})
	if err != nil {
		return err
	}
	if resp.Error == nil {
		return domain.Violation("error", "present", nil)
	}
	return containsAll("error.message", resp.Error.Message, "Invalid Request")
}

func checkUnknownMethod(ctx context.Context, env *CheckEnv) error {
	resp, err := env.Tasks.Raw(ctx, jsonrpc.Request{
		JSONRPC: jsonrpc.Version,
		Method:  "unknown/method",
		Params:  map[string]any{},
		ID:      1,
	})
	if err != nil {
		return err
	}
	if resp.Error == nil {
		return domain.Violation("error", "present", nil)
	}
	return nil
}

func checkStreamMessage(ctx context.Context, env *CheckEnv) error {
	reply, err := env.Tasks.StreamMessage(ctx, "Hello streaming!")
	if err != nil {
		return err
	}
	if len(reply.Events) == 0 {
		return domain.Violation("events", "at least one", 0)
	}
	return nil
}
