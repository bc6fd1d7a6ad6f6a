package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/mahzoun/create-8004-agent/internal/usecase"
)

// ChainsRenderer renders the chain catalog
type ChainsRenderer struct {
	out     io.Writer
	verbose bool
}

// NewChainsRenderer creates a new chains renderer. Verbose lists the
// sub-suites each chain runs.
func NewChainsRenderer(out io.Writer, verbose bool) *ChainsRenderer {
	return &ChainsRenderer{out: out, verbose: verbose}
}

// Render writes the chain table
func (r *ChainsRenderer) Render(result *usecase.ListChainsResult) error {
	if len(result.Chains) == 0 {
		fmt.Fprintln(r.out, "No chains found")
		return nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	header := table.Row{"Key", "Name", "Chain ID", "x402 Network", "Testnet", "Checks"}
	if r.verbose {
		header = append(header, "Sub-suites")
	}
	t.AppendHeader(header)

	for _, s := range result.Chains {
		network := s.Chain.X402Network
		if !s.Chain.PaymentsSupported {
			network = "-"
		}
		row := table.Row{
			string(s.Chain.Key),
			s.Chain.Name,
			strconv.FormatUint(s.Chain.ChainID, 10),
			network,
			yesNo(s.Chain.IsTestNetwork),
			len(s.SubSuites),
		}
		if r.verbose {
			row = append(row, strings.Join(s.SubSuites, "\n"))
		}
		t.AppendRow(row)
	}

	fmt.Fprintln(r.out, t.Render())
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

var _ Renderer[*usecase.ListChainsResult] = (*ChainsRenderer)(nil)
