package interactive

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"

	"github.com/mahzoun/create-8004-agent/internal/domain"
	"github.com/mahzoun/create-8004-agent/internal/domain/config"
	"github.com/mahzoun/create-8004-agent/internal/usecase"
)

const allChainsOption = "All chains"

// SelectorAdapter handles interactive selection
type SelectorAdapter struct {
	config *config.RuntimeConfig
	run    func(promptui.Select) (int, error)
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{
		config: cfg,
		run: func(s promptui.Select) (int, error) {
			index, _, err := s.Run()
			return index, err
		},
	}
}

// SelectChains lets the user pick one chain or all of them
func (s *SelectorAdapter) SelectChains(ctx context.Context, chains []domain.Chain) ([]domain.ChainKey, error) {
	// In non-interactive mode, we can't select
	if s.config.NonInteractive {
		return nil, fmt.Errorf("no chain given; pass chain keys or --all in non-interactive mode")
	}

	if len(chains) == 0 {
		return nil, fmt.Errorf("no chains provided for selection")
	}

	options := append([]string{allChainsOption}, formatChainOptions(chains)...)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, type to search, Enter to select"),
	}

	index, err := s.run(promptui.Select{
		Label:     "Select a chain to test",
		Items:     options,
		Templates: templates,
		Size:      10,
		Searcher:  createFuzzySearchFunc(options),
	})
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	if index == 0 {
		return lo.Map(chains, func(c domain.Chain, _ int) domain.ChainKey { return c.Key }), nil
	}
	return []domain.ChainKey{chains[index-1].Key}, nil
}

// formatChainOptions creates display strings for chain selection
func formatChainOptions(chains []domain.Chain) []string {
	return lo.Map(chains, func(c domain.Chain, _ int) string {
		var tags []string
		if c.IsTestNetwork {
			tags = append(tags, "testnet")
		}
		if c.PaymentsSupported {
			tags = append(tags, "x402")
		}
		label := fmt.Sprintf("%s (%s)", c.Name, c.Key)
		if len(tags) > 0 {
			label += " " + color.New(color.FgYellow).Sprintf("[%s]", strings.Join(tags, ", "))
		}
		return label
	})
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		// Empty search shows all items
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		// First try simple substring match
		if strings.Contains(item, input) {
			return true
		}

		// Then try fuzzy match
		return len(fuzzy.Find(input, []string{item})) > 0
	}
}

// Ensure the adapter implements the interface
var _ usecase.ChainSelector = (*SelectorAdapter)(nil)
