package crew

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Tool is something an agent can call while working on a task. Schema is a
// JSON schema for the arguments object.
type Tool interface {
	Name() string
	Description() string
	Schema() []byte
	Run(ctx context.Context, args json.RawMessage) (string, error)
}

// ValidateArgs checks args against a tool's JSON schema. An empty schema
// accepts any JSON value.
func ValidateArgs(schema []byte, args json.RawMessage) error {
	if !json.Valid(args) {
		return fmt.Errorf("arguments are not valid JSON")
	}
	if len(schema) == 0 {
		return nil
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(args))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		var problems []string
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return fmt.Errorf("invalid arguments: %s", strings.Join(problems, "; "))
	}

	return nil
}

// invoke validates and runs a tool. Failures are returned as text so the
// agent can see them and correct itself.
func invoke(ctx context.Context, tool Tool, args json.RawMessage) (string, error) {
	if err := ValidateArgs(tool.Schema(), args); err != nil {
		return fmt.Sprintf("Error: %v. Check the arguments schema of %s and try again.", err, tool.Name()), nil
	}

	out, err := tool.Run(ctx, args)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return fmt.Sprintf("Error: %s failed: %v", tool.Name(), err), nil
	}

	if strings.TrimSpace(out) == "" {
		return "No results.", nil
	}
	return out, nil
}
