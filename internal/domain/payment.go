package domain

// PaymentRequirement is one accepted way to pay for a protected resource.
type PaymentRequirement struct {
	Scheme            string            `json:"scheme"`
	Network           string            `json:"network"`
	Amount            string            `json:"amount,omitempty"`
	MaxAmountRequired string            `json:"maxAmountRequired,omitempty"`
	Asset             string            `json:"asset"`
	PayTo             string            `json:"payTo"`
	Resource          string            `json:"resource,omitempty"`
	Description       string            `json:"description,omitempty"`
	MimeType          string            `json:"mimeType,omitempty"`
	MaxTimeoutSeconds int               `json:"maxTimeoutSeconds"`
	Extra             map[string]string `json:"extra,omitempty"`
}

// Value returns the amount in atomic units for either protocol version.
func (r PaymentRequirement) Value() string {
	if r.Amount != "" {
		return r.Amount
	}
	return r.MaxAmountRequired
}

// PaymentChallenge is the decoded body of a 402 response.
type PaymentChallenge struct {
	X402Version int                  `json:"x402Version"`
	Error       string               `json:"error,omitempty"`
	Resource    *PaymentResource     `json:"resource,omitempty"`
	Accepts     []PaymentRequirement `json:"accepts"`
}

// PaymentResource describes what is being paid for (version 2).
type PaymentResource struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// Select returns the first requirement matching scheme and network.
func (c *PaymentChallenge) Select(scheme, network string) (PaymentRequirement, bool) {
	for _, req := range c.Accepts {
		if req.Scheme == scheme && req.Network == network {
			return req, true
		}
	}
	return PaymentRequirement{}, false
}

// PaidReply is the result of a request resent with payment proof.
type PaidReply struct {
	StatusCode int
	Reply      *TaskReply
	Settlement string
}
