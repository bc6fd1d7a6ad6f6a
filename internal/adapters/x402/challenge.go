package x402

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mahzoun/create-8004-agent/internal/domain"
)

// Header names for both protocol versions.
const (
	HeaderPaymentRequired  = "PAYMENT-REQUIRED"
	HeaderPaymentSignature = "PAYMENT-SIGNATURE"
	HeaderPaymentResponse  = "PAYMENT-RESPONSE"

	HeaderPaymentV1         = "X-PAYMENT"
	HeaderPaymentResponseV1 = "X-PAYMENT-RESPONSE"

	SchemeExact = "exact"
)

// PaymentPayload is what the client attaches to a paid retry.
type PaymentPayload struct {
	X402Version int                        `json:"x402Version"`
	Scheme      string                     `json:"scheme,omitempty"`
	Network     string                     `json:"network,omitempty"`
	Resource    *domain.PaymentResource    `json:"resource,omitempty"`
	Accepted    *domain.PaymentRequirement `json:"accepted,omitempty"`
	Payload     *ExactPayload              `json:"payload"`
}

// ParseChallenge reads payment requirements from a 402 response. Version 2
// servers put them in the PAYMENT-REQUIRED header, version 1 in the body.
func ParseChallenge(header http.Header, body []byte) (*domain.PaymentChallenge, error) {
	var challenge domain.PaymentChallenge

	if encoded := strings.TrimSpace(header.Get(HeaderPaymentRequired)); encoded != "" {
		if err := decodeBase64JSON(encoded, &challenge); err != nil {
			return nil, fmt.Errorf("invalid %s header: %w", HeaderPaymentRequired, err)
		}
		if challenge.X402Version == 0 {
			challenge.X402Version = 2
		}
		return &challenge, nil
	}

	if err := json.Unmarshal(body, &challenge); err != nil {
		return nil, fmt.Errorf("402 response carries no payment requirements: %w", err)
	}
	if len(challenge.Accepts) == 0 {
		return nil, domain.ErrNoPaymentRequirements
	}
	if challenge.X402Version == 0 {
		challenge.X402Version = 1
	}
	return &challenge, nil
}

// Encode builds the header that carries p for its protocol version.
func (p *PaymentPayload) Encode() (name, value string, err error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode payment: %w", err)
	}
	name = HeaderPaymentSignature
	if p.X402Version < 2 {
		name = HeaderPaymentV1
	}
	return name, base64.StdEncoding.EncodeToString(b), nil
}

// DecodePayment parses a payment header value.
func DecodePayment(value string) (*PaymentPayload, error) {
	var p PaymentPayload
	if err := decodeBase64JSON(value, &p); err != nil {
		return nil, err
	}
	if p.Payload == nil {
		return nil, fmt.Errorf("payment has no payload")
	}
	return &p, nil
}

// NewPayload wraps a signed authorization for the challenge's version.
func NewPayload(challenge *domain.PaymentChallenge, req domain.PaymentRequirement, exact *ExactPayload) *PaymentPayload {
	if challenge.X402Version < 2 {
		return &PaymentPayload{
			X402Version: challenge.X402Version,
			Scheme:      req.Scheme,
			Network:     req.Network,
			Payload:     exact,
		}
	}
	accepted := req
	return &PaymentPayload{
		X402Version: challenge.X402Version,
		Resource:    challenge.Resource,
		Accepted:    &accepted,
		Payload:     exact,
	}
}

func decodeBase64JSON(s string, out any) error {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		if raw, err = base64.RawURLEncoding.DecodeString(s); err != nil {
			return fmt.Errorf("invalid base64: %w", err)
		}
	}
	return json.Unmarshal(raw, out)
}
