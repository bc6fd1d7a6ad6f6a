package x402

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/mahzoun/create-8004-agent/internal/domain"
)

// clockSkew backdates validAfter so a facilitator with a slightly slow
// clock still accepts the authorization.
const clockSkew = 10 * time.Minute

// Authorization is an EIP-3009 transferWithAuthorization message.
type Authorization struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	ValidAfter  string `json:"validAfter"`
	ValidBefore string `json:"validBefore"`
	Nonce       string `json:"nonce"`
}

// ExactPayload is the scheme-specific payload of the "exact" EVM scheme.
type ExactPayload struct {
	Signature     string        `json:"signature"`
	Authorization Authorization `json:"authorization"`
}

var transferWithAuthorizationTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"TransferWithAuthorization": {
		{Name: "from", Type: "address"},
		{Name: "to", Type: "address"},
		{Name: "value", Type: "uint256"},
		{Name: "validAfter", Type: "uint256"},
		{Name: "validBefore", Type: "uint256"},
		{Name: "nonce", Type: "bytes32"},
	},
}

// TypedData builds the EIP-712 document the token contract verifies.
func TypedData(auth Authorization, req domain.PaymentRequirement, chainID uint64) apitypes.TypedData {
	return apitypes.TypedData{
		Types:       transferWithAuthorizationTypes,
		PrimaryType: "TransferWithAuthorization",
		Domain: apitypes.TypedDataDomain{
			Name:              req.Extra["name"],
			Version:           req.Extra["version"],
			ChainId:           math.NewHexOrDecimal256(int64(chainID)),
			VerifyingContract: req.Asset,
		},
		Message: apitypes.TypedDataMessage{
			"from":        auth.From,
			"to":          auth.To,
			"value":       auth.Value,
			"validAfter":  auth.ValidAfter,
			"validBefore": auth.ValidBefore,
			"nonce":       auth.Nonce,
		},
	}
}

// Sign authorizes a transfer of req's amount from the payer to req.PayTo.
func Sign(payer *ecdsa.PrivateKey, req domain.PaymentRequirement, chainID uint64, now time.Time) (*ExactPayload, error) {
	if req.Extra["name"] == "" || req.Extra["version"] == "" {
		return nil, fmt.Errorf("%w: requirement lacks token name/version", domain.ErrNoPaymentRequirements)
	}
	if !common.IsHexAddress(req.Asset) || !common.IsHexAddress(req.PayTo) {
		return nil, fmt.Errorf("%w: asset %q / payTo %q", domain.ErrNoPaymentRequirements, req.Asset, req.PayTo)
	}
	if _, ok := new(big.Int).SetString(req.Value(), 10); !ok {
		return nil, fmt.Errorf("%w: amount %q", domain.ErrNoPaymentRequirements, req.Value())
	}

	var nonce [32]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	timeout := time.Duration(req.MaxTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = time.Minute
	}

	auth := Authorization{
		From:        crypto.PubkeyToAddress(payer.PublicKey).Hex(),
		To:          common.HexToAddress(req.PayTo).Hex(),
		Value:       req.Value(),
		ValidAfter:  strconv.FormatInt(now.Add(-clockSkew).Unix(), 10),
		ValidBefore: strconv.FormatInt(now.Add(timeout).Unix(), 10),
		Nonce:       hexutil.Encode(nonce[:]),
	}

	hash, _, err := apitypes.TypedDataAndHash(TypedData(auth, req, chainID))
	if err != nil {
		return nil, fmt.Errorf("failed to hash authorization: %w", err)
	}
	sig, err := crypto.Sign(hash, payer)
	if err != nil {
		return nil, fmt.Errorf("failed to sign authorization: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27

	return &ExactPayload{Signature: hexutil.Encode(sig), Authorization: auth}, nil
}

// Recover returns the address that signed p.
func Recover(p *ExactPayload, req domain.PaymentRequirement, chainID uint64) (common.Address, error) {
	hash, _, err := apitypes.TypedDataAndHash(TypedData(p.Authorization, req, chainID))
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to hash authorization: %w", err)
	}
	sig, err := hexutil.Decode(p.Signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(sig))
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
