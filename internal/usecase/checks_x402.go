package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/mahzoun/create-8004-agent/internal/domain"
	"github.com/mahzoun/create-8004-agent/pkg/jsonrpc"
)

// supportedNetwork matches the CAIP-2 ids a payment facilitator settles on.
var supportedNetwork = regexp.MustCompile(`eip155:(8453|84532|137|80002)\b`)

var x402Packages = []string{"@x402/express", "@x402/core", "@x402/evm"}

func x402Checks() []Check {
	return []Check{
		{Name: "declares x402 dependencies", Run: checkX402Dependencies},
		{Name: "mounts payment middleware", Run: fileContains(domain.A2AServerFile,
			"paymentMiddleware", "x402ResourceServer", "ExactEvmScheme")},
		{Name: "returns 402 without payment", Run: checkPaymentRequired},
		{Name: "uses the chain's CAIP-2 network", Run: checkNetworkID},
		{Name: "pays the configured wallet", Run: fileContains(domain.A2AServerFile, "payTo", "X402_PAYEE_ADDRESS")},
	}
}

func x402PaidChecks() []Check {
	return []Check{
		{Name: "returns response when payment is valid", Run: checkPaidRequest},
	}
}

// paymentProbeBody is a well-formed message/send the paywall must reject.
func paymentProbeBody(text string) jsonrpc.Request {
	return jsonrpc.Request{
		JSONRPC: jsonrpc.Version,
		Method:  "message/send",
		Params:  map[string]any{"message": domain.NewTextMessage(domain.RoleUser, text)},
		ID:      1,
	}
}

func checkX402Dependencies(ctx context.Context, env *CheckEnv) error {
	raw, err := env.Files.Read(env.Project.Dir, domain.PackageJSONFile)
	if err != nil {
		return err
	}
	var pkg struct {
		Dependencies map[string]string `json:"dependencies"`
	}
	if err := json.Unmarshal([]byte(raw), &pkg); err != nil {
		return domain.Violation(domain.PackageJSONFile, "valid JSON", err.Error())
	}
	for _, name := range x402Packages {
		if _, ok := pkg.Dependencies[name]; !ok {
			return domain.Violation("dependencies", name, "missing")
		}
	}
	return nil
}

func checkPaymentRequired(ctx context.Context, env *CheckEnv) error {
	status, err := env.Payments.Probe(ctx, paymentProbeBody("test"))
	if err != nil {
		return err
	}
	if status != http.StatusPaymentRequired {
		return domain.Violation("status", http.StatusPaymentRequired, status)
	}
	return nil
}

func checkNetworkID(ctx context.Context, env *CheckEnv) error {
	code, err := env.Files.Read(env.Project.Dir, domain.A2AServerFile)
	if err != nil {
		return err
	}
	if !supportedNetwork.MatchString(code) {
		return domain.Violation("network", supportedNetwork.String(), "no supported eip155 id")
	}
	if env.Chain.X402Network != "" {
		return containsAll("network", code, env.Chain.X402Network)
	}
	return nil
}

func checkPaidRequest(ctx context.Context, env *CheckEnv) error {
	reply, err := env.Payments.PaidRequest(ctx, paymentProbeBody("Hello with payment!"))
	if err != nil {
		return err
	}
	if reply.StatusCode != http.StatusOK {
		return domain.Violation("status", http.StatusOK, reply.StatusCode)
	}
	if reply.Reply == nil {
		return domain.Violation("result", "task", nil)
	}
	if err := expectCompletedTask(reply.Reply); err != nil {
		return err
	}
	return expectMockReply(reply.Reply.Task)
}
