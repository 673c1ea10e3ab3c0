// Package schema validates the persisted benchmark artifact against an
// embedded JSON schema before it is written, so a malformed artifact fails
// the run instead of surfacing later in whatever consumes the file.
package schema

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

const artifactSchema = `{
  "type": "object",
  "required": ["benchmarks", "summary"],
  "properties": {
    "run_id": {"type": "string"},
    "test_name": {"type": "string"},
    "timestamp": {"type": "string"},
    "environment": {"type": "object"},
    "benchmarks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["operation", "time_ms"],
        "properties": {
          "operation": {"type": "string", "minLength": 1},
          "time_ms": {"type": "number", "minimum": 0}
        }
      }
    },
    "summary": {
      "type": "object",
      "properties": {
        "scaling_factor": {"type": "number", "minimum": 0},
        "classification": {"type": "string"}
      }
    }
  }
}`

var (
	compiled    *gojsonschema.Schema
	compileOnce sync.Once
	compileErr  error
)

// ValidateArtifact checks an encoded artifact against the embedded schema.
func ValidateArtifact(data []byte) error {
	compileOnce.Do(func() {
		compiled, compileErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(artifactSchema))
	})
	if compileErr != nil {
		return fmt.Errorf("failed to compile artifact schema: %w", compileErr)
	}

	result, err := compiled.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("artifact validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			errs[i] = e.String()
		}
		return fmt.Errorf("artifact does not match schema: %s", strings.Join(errs, "; "))
	}
	return nil
}
