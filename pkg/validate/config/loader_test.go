package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corevalidate/middleware/pkg/validate"
)

const validDoc = `
pipeline:
  execution_model: turn_based
  default_timeout_ms: 30000
  cache_enabled: true
  cache_max_age_ms: 300000
  cache_max_entries: 500
  context_dir: .
  consensus:
    strategy: majority
    minimum_responses: 1
    escalate_to_human: true

validators:
  - id: eslint
    name: ESLint
    kind: static
    enabled: true
    priority: 10
    triggers: [pre_write, pre_commit]
    file_patterns: ["**/*.ts"]
    behavior:
      on_failure: error
      block_on_failure: true
      timeout_ms: 15000
      on_timeout: warning
      cacheable: true
      weight: 2
    config:
      command: "eslint --format json {{files}}"
  - id: reviewer
    kind: ai_critic
    priority: 20
    triggers: [pre_write]
    behavior:
      timeout_ms: 20000
      on_timeout: skip
    config:
      provider: anthropic
      model: claude-3-5-sonnet
      system_prompt: "Review this diff for correctness."
      max_tokens: 1024
      temperature: 0.2
`

func TestParseValidDocument(t *testing.T) {
	doc, err := Parse([]byte(validDoc))
	require.NoError(t, err)
	require.Equal(t, validate.ExecutionTurnBased, doc.Pipeline.ExecutionModel)
	require.True(t, doc.Pipeline.CacheEnabled)
	require.Len(t, doc.Validators, 2)

	eslint := doc.Validators[0]
	require.Equal(t, "eslint", eslint.ID)
	require.Equal(t, validate.KindStatic, eslint.Kind)
	cfg, ok := eslint.KindConfig.(validate.StaticConfig)
	require.True(t, ok)
	require.Contains(t, cfg.Command, "eslint")
	require.True(t, eslint.Behavior.HasWeight)
	require.Equal(t, uint32(2), eslint.Behavior.Weight)

	reviewer := doc.Validators[1]
	require.Equal(t, validate.KindAiCritic, reviewer.Kind)
	criticCfg, ok := reviewer.KindConfig.(validate.AiCriticConfig)
	require.True(t, ok)
	require.Equal(t, "anthropic", criticCfg.Provider)
	require.InDelta(t, 0.2, criticCfg.Temperature, 0.0001)
}

func TestParseRejectsUnknownTopLevelKey(t *testing.T) {
	_, err := Parse([]byte("bogus: true\n"))
	require.Error(t, err)

	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, validate.ErrInvalidValidatorConfig, verr.Kind)
}

func TestParseRejectsMissingValidatorID(t *testing.T) {
	doc := `
validators:
  - kind: static
    config:
      command: "true"
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
}

func TestParseRejectsCustomKindFromYAML(t *testing.T) {
	doc := `
validators:
  - id: x
    kind: custom
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("validators: [unterminated"))
	require.Error(t, err)
}

func TestParseDefaultsCacheEnabledTrueWhenOmitted(t *testing.T) {
	doc, err := Parse([]byte("validators: []\n"))
	require.NoError(t, err)
	require.True(t, doc.Pipeline.CacheEnabled)
}
