package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/corevalidate/middleware/pkg/logger"
)

var schemaLog = logger.New("validate:config:schema")

//go:embed schemas/pipeline_config_schema.json
var pipelineConfigSchema string

var (
	schemaOnce       sync.Once
	compiledSchema   *jsonschema.Schema
	schemaCompileErr error
)

const schemaResourceURL = "https://corevalidate.dev/schemas/pipeline-config.json"

func getCompiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaCompileErr = compileSchema(pipelineConfigSchema)
	})
	return compiledSchema, schemaCompileErr
}

func compileSchema(schemaJSON string) (*jsonschema.Schema, error) {
	schemaLog.Print("compiling pipeline config JSON schema")

	var schemaDoc any
	if err := json.Unmarshal([]byte(schemaJSON), &schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to parse embedded schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResourceURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile(schemaResourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile pipeline config schema: %w", err)
	}
	return schema, nil
}

// validateAgainstSchema validates a raw decoded document (map[string]any
// produced from YAML) against the pipeline config schema.
func validateAgainstSchema(doc any) error {
	schema, err := getCompiledSchema()
	if err != nil {
		return err
	}
	return schema.Validate(doc)
}
