package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ChainKey identifies a chain in the scaffold generator's catalog (e.g. "base-sepolia").
type ChainKey string

// Chain is a full catalog entry for a supported network.
type Chain struct {
	Key                ChainKey `toml:"-" json:"key" yaml:"key"`
	Name               string   `toml:"name" json:"name" yaml:"name"`
	ChainID            uint64   `toml:"chain_id" json:"chainId" yaml:"chainId"`
	RPCURL             string   `toml:"rpc_url" json:"rpcUrl" yaml:"rpcUrl"`
	Explorer           string   `toml:"explorer" json:"explorer" yaml:"explorer"`
	IdentityRegistry   string   `toml:"identity_registry" json:"identityRegistry,omitempty" yaml:"identityRegistry,omitempty"`
	ReputationRegistry string   `toml:"reputation_registry" json:"reputationRegistry,omitempty" yaml:"reputationRegistry,omitempty"`
	ValidationRegistry string   `toml:"validation_registry" json:"validationRegistry,omitempty" yaml:"validationRegistry,omitempty"`
	ScanPath           string   `toml:"scan_path" json:"scanPath,omitempty" yaml:"scanPath,omitempty"`
	X402Network        string   `toml:"x402_network" json:"x402Network,omitempty" yaml:"x402Network,omitempty"`
	PaymentsSupported  bool     `toml:"payments" json:"paymentsSupported" yaml:"paymentsSupported"`
	IsTestNetwork      bool     `toml:"testnet" json:"isTestNetwork" yaml:"isTestNetwork"`
}

// Scenario projects the catalog entry onto the immutable record the suite
// factory consumes.
func (c Chain) Scenario() ChainScenario {
	return ChainScenario{
		ChainKey:          c.Key,
		ChainName:         c.Name,
		PaymentsSupported: c.PaymentsSupported,
		IsTestNetwork:     c.IsTestNetwork,
	}
}

// ChainScenario is the per-chain input of a conformance run.
type ChainScenario struct {
	ChainKey          ChainKey `json:"chainKey" yaml:"chainKey"`
	ChainName         string   `json:"chainName" yaml:"chainName"`
	PaymentsSupported bool     `json:"paymentsSupported" yaml:"paymentsSupported"`
	IsTestNetwork     bool     `json:"isTestNetwork" yaml:"isTestNetwork"`
}

// ShortName returns the first word of the chain name ("Base" for "Base Sepolia").
func (s ChainScenario) ShortName() string {
	fields := strings.Fields(s.ChainName)
	if len(fields) == 0 {
		return string(s.ChainKey)
	}
	return fields[0]
}

// CAIP2 is a chain-namespaced network identifier such as "eip155:84532".
type CAIP2 string

// Namespace returns the part before the colon ("eip155").
func (c CAIP2) Namespace() string {
	ns, _, _ := strings.Cut(string(c), ":")
	return ns
}

// Reference returns the part after the colon ("84532").
func (c CAIP2) Reference() string {
	_, ref, _ := strings.Cut(string(c), ":")
	return ref
}

// EVMChainID parses the reference of an eip155 identifier.
func (c CAIP2) EVMChainID() (uint64, error) {
	if c.Namespace() != "eip155" {
		return 0, fmt.Errorf("%w: %q is not an eip155 network", ErrInvalidNetwork, string(c))
	}
	id, err := strconv.ParseUint(c.Reference(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidNetwork, string(c), err)
	}
	return id, nil
}
