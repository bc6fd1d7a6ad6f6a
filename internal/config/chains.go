package config

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"

	"github.com/mahzoun/create-8004-agent/internal/domain"
)

//go:embed chains.toml
var chainsTOML []byte

// maxSuggestions bounds the "did you mean" list for unknown chain keys.
const maxSuggestions = 3

// ChainCatalog is the set of chains the scaffold generator supports.
type ChainCatalog struct {
	chains map[domain.ChainKey]domain.Chain
	keys   []string
}

// NewChainCatalog loads the embedded catalog
func NewChainCatalog() (*ChainCatalog, error) {
	return ParseChainCatalog(chainsTOML)
}

// ParseChainCatalog decodes a TOML catalog keyed by chain key.
func ParseChainCatalog(data []byte) (*ChainCatalog, error) {
	var raw map[string]domain.Chain
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse chain catalog: %w", err)
	}

	c := &ChainCatalog{chains: make(map[domain.ChainKey]domain.Chain, len(raw))}
	for key, chain := range raw {
		chain.Key = domain.ChainKey(key)
		if chain.Name == "" {
			return nil, fmt.Errorf("chain %s: name is required", key)
		}
		if chain.PaymentsSupported {
			id, err := domain.CAIP2(chain.X402Network).EVMChainID()
			if err != nil {
				return nil, fmt.Errorf("chain %s: %w", key, err)
			}
			if id != chain.ChainID {
				return nil, fmt.Errorf("chain %s: x402 network %s does not match chain id %d", key, chain.X402Network, chain.ChainID)
			}
		}
		c.chains[chain.Key] = chain
	}
	c.keys = lo.Keys(raw)
	sort.Strings(c.keys)
	return c, nil
}

// All returns every chain ordered by key.
func (c *ChainCatalog) All() []domain.Chain {
	return lo.Map(c.keys, func(k string, _ int) domain.Chain { return c.chains[domain.ChainKey(k)] })
}

// Keys returns every chain key in order.
func (c *ChainCatalog) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Get returns the chain for key, or an UnknownChainError with the closest
// matching keys.
func (c *ChainCatalog) Get(key domain.ChainKey) (domain.Chain, error) {
	if chain, ok := c.chains[key]; ok {
		return chain, nil
	}
	matches := fuzzy.Find(string(key), c.keys)
	suggestions := lo.Map(matches, func(m fuzzy.Match, _ int) string { return m.Str })
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return domain.Chain{}, domain.UnknownChainError{Key: string(key), Suggestions: suggestions}
}
