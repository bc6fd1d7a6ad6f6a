package a2a

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed agent-card.schema.json
var agentCardSchema []byte

var compileCardSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(agentCardSchema))
	if err != nil {
		return nil, fmt.Errorf("unmarshal agent card schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("agent-card.schema.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return c.Compile("agent-card.schema.json")
})

// ValidateCard checks a raw discovery document against the card schema.
func ValidateCard(raw []byte) error {
	schema, err := compileCardSchema()
	if err != nil {
		return fmt.Errorf("compile agent card schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to decode agent card: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("agent card does not match schema: %w", err)
	}
	return nil
}
