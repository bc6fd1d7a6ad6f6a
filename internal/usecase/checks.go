package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/mahzoun/create-8004-agent/internal/domain"
)

func filesExist(paths ...string) CheckFunc {
	return func(ctx context.Context, env *CheckEnv) error {
		for _, rel := range paths {
			ok, err := env.Files.Exists(env.Project.Dir, rel)
			if err != nil {
				return err
			}
			if !ok {
				return domain.Violation(rel, "exists", "missing")
			}
		}
		return nil
	}
}

func fileContains(rel string, needles ...string) CheckFunc {
	return func(ctx context.Context, env *CheckEnv) error {
		content, err := env.Files.Read(env.Project.Dir, rel)
		if err != nil {
			return err
		}
		return containsAll(rel, content, needles...)
	}
}

func containsAll(field, content string, needles ...string) error {
	for _, n := range needles {
		if !strings.Contains(content, n) {
			return domain.Violation(field, fmt.Sprintf("contains %q", n), "not found")
		}
	}
	return nil
}

// expectCompletedTask asserts the shape of a successful message/send reply.
func expectCompletedTask(reply *domain.TaskReply) error {
	if reply.JSONRPC != "2.0" {
		return domain.Violation("jsonrpc", "2.0", reply.JSONRPC)
	}
	if reply.Task == nil {
		return domain.Violation("result", "task", nil)
	}
	if reply.Task.Status != domain.TaskCompleted {
		return domain.Violation("result.status", domain.TaskCompleted, reply.Task.Status)
	}
	if len(reply.Task.Messages) != 2 {
		return domain.Violation("result.messages length", 2, len(reply.Task.Messages))
	}
	if role := reply.Task.Messages[1].Role; role != domain.RoleAgent {
		return domain.Violation("result.messages[1].role", domain.RoleAgent, role)
	}
	return nil
}

// expectMockReply asserts the agent answered through the mock-mode path.
func expectMockReply(task *domain.Task) error {
	msg, ok := task.AgentMessage()
	if !ok {
		return domain.Violation("agent message", "present", "missing")
	}
	return containsAll("agent message", msg.Text(), mockMarker)
}
