// Package config loads a validation pipeline's configuration and
// validator definitions from YAML, schema-validating the document before
// any of it reaches the registry.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/corevalidate/middleware/pkg/constants"
	"github.com/corevalidate/middleware/pkg/logger"
	"github.com/corevalidate/middleware/pkg/validate"
)

var log = logger.New("validate:config:loader")

// Document is the decoded result of loading a pipeline config file:
// pipeline-level settings plus the validator definitions it declares.
type Document struct {
	Pipeline   validate.Config
	Validators []*validate.ValidatorDefinition
}

// Load reads and parses the pipeline configuration at path. A document
// that fails schema validation returns a *validate.Error of kind
// InvalidValidatorConfig rather than a bare parse error.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline config '%s': %w", path, err)
	}
	return Parse(data)
}

// Parse decodes raw YAML bytes into a Document.
func Parse(data []byte) (*Document, error) {
	var rawDoc any
	if err := yaml.Unmarshal(data, &rawDoc); err != nil {
		line, column, message := ExtractYAMLError(err)
		if line > 0 {
			return nil, validate.NewInvalidConfigError(fmt.Sprintf("pipeline config invalid at line %d, column %d: %s", line, column, message))
		}
		return nil, validate.NewInvalidConfigError(fmt.Sprintf("pipeline config is not valid YAML: %v", err))
	}

	normalized, err := normalizeForSchema(rawDoc)
	if err != nil {
		return nil, validate.NewInvalidConfigError(fmt.Sprintf("failed to normalize pipeline config: %v", err))
	}

	if err := validateAgainstSchema(normalized); err != nil {
		log.Printf("schema validation failed: %v", err)
		return nil, validate.NewInvalidConfigError(err.Error())
	}

	var raw rawDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, validate.NewInvalidConfigError(fmt.Sprintf("failed to decode pipeline config: %v", err))
	}

	doc := &Document{Pipeline: buildPipelineConfig(raw.Pipeline)}

	for _, rv := range raw.Validators {
		def, err := buildValidatorDefinition(rv)
		if err != nil {
			return nil, err
		}
		doc.Validators = append(doc.Validators, def)
	}

	return doc, nil
}

// normalizeForSchema recursively coerces map[any]any nodes (as produced by
// some YAML decoders for nested maps) into map[string]any, which is what
// the jsonschema compiler expects.
func normalizeForSchema(v any) (any, error) {
	return normalizeValue(v), nil
}

func normalizeValue(v any) any {
	switch n := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, val := range n {
			out[k] = normalizeValue(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(n))
		for k, val := range n {
			out[fmt.Sprintf("%v", k)] = normalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, val := range n {
			out[i] = normalizeValue(val)
		}
		return out
	default:
		return v
	}
}

func buildPipelineConfig(p rawPipeline) validate.Config {
	cfg := validate.Config{
		ExecutionModel:   validate.ExecutionModel(p.ExecutionModel),
		DefaultTimeoutMS: p.DefaultTimeoutMS,
		CacheMaxEntries:  p.CacheMaxEntries,
		ContextDir:       p.ContextDir,
		Consensus: validate.ConsensusConfig{
			Strategy:         validate.ConsensusStrategy(p.Consensus.Strategy),
			MinimumResponses: p.Consensus.MinimumResponses,
			EscalateToHuman:  p.Consensus.EscalateToHuman,
		},
	}
	if p.CacheEnabled != nil {
		cfg.CacheEnabled = *p.CacheEnabled
	} else {
		cfg.CacheEnabled = true
	}
	if p.CacheMaxAgeMS > 0 {
		cfg.CacheMaxAge = time.Duration(p.CacheMaxAgeMS) * time.Millisecond
	}
	return cfg
}

func buildValidatorDefinition(rv rawValidatorDef) (*validate.ValidatorDefinition, error) {
	kind := validate.Kind(rv.Kind)

	kindConfig, err := buildKindConfig(kind, rv.Config)
	if err != nil {
		return nil, validate.NewInvalidConfigError(fmt.Sprintf("validator '%s': %v", rv.ID, err))
	}

	triggers := make(map[validate.TriggerKind]struct{}, len(rv.Triggers))
	for _, t := range rv.Triggers {
		triggers[validate.TriggerKind(t)] = struct{}{}
	}

	behavior := validate.Behavior{
		OnFailure:      validate.OnFailure(rv.Behavior.OnFailure),
		BlockOnFailure: rv.Behavior.BlockOnFailure,
		Required:       rv.Behavior.Required,
		TimeoutMS:      rv.Behavior.TimeoutMS,
		OnTimeout:      validate.OnTimeout(rv.Behavior.OnTimeout),
		Cacheable:      rv.Behavior.Cacheable,
	}
	if rv.Behavior.Weight != 0 {
		behavior.Weight = uint32(rv.Behavior.Weight)
		behavior.HasWeight = true
	}

	var contextConfig *validate.ContextConfig
	if rv.Context != nil {
		contextConfig = &validate.ContextConfig{
			IncludeDiff:     rv.Context.IncludeDiff,
			IncludeFullFile: rv.Context.IncludeFullFile,
		}
	}

	enabled := true
	if rv.Enabled != nil {
		enabled = *rv.Enabled
	}

	return &validate.ValidatorDefinition{
		ID:            rv.ID,
		Name:          rv.Name,
		Kind:          kind,
		Enabled:       enabled,
		Priority:      rv.Priority,
		Triggers:      triggers,
		FilePatterns:  rv.FilePatterns,
		ContextConfig: contextConfig,
		Behavior:      behavior,
		KindConfig:    kindConfig,
		Children:      rv.Children,
	}, nil
}

func buildKindConfig(kind validate.Kind, raw map[string]any) (validate.KindConfig, error) {
	switch kind {
	case validate.KindStatic:
		command, _ := raw["command"].(string)
		return validate.StaticConfig{Command: command}, nil

	case validate.KindAiCritic:
		provider, _ := raw["provider"].(string)
		model, _ := raw["model"].(string)
		systemPrompt, _ := raw["system_prompt"].(string)
		maxTokens, _ := asInt(raw["max_tokens"])
		temperature, hasTemp := asFloat(raw["temperature"])
		if !hasTemp {
			temperature = constants.DefaultCriticTemperature
		}
		return validate.AiCriticConfig{
			Provider:     provider,
			Model:        model,
			SystemPrompt: systemPrompt,
			MaxTokens:    maxTokens,
			Temperature:  temperature,
		}, nil

	case validate.KindComposite:
		return validate.CompositeConfig{}, nil

	case validate.KindCustom:
		return nil, fmt.Errorf("custom validators cannot be declared in YAML config; register them in code")

	default:
		return nil, fmt.Errorf("unknown validator kind '%s'", kind)
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case uint64:
		return int(n), true
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

