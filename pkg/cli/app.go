package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/corevalidate/middleware/pkg/decision"
	"github.com/corevalidate/middleware/pkg/logger"
	"github.com/corevalidate/middleware/pkg/validate"
	"github.com/corevalidate/middleware/pkg/validate/config"
)

var appLog = logger.New("cli:app")

// App wires together everything a validatectl subcommand needs: the
// pipeline (loaded from config and backed by real runners), its rule
// resolver, and the human-decision handler subcommands can subscribe to.
type App struct {
	Pipeline *validate.Pipeline
	Decision *decision.Handler
}

// NewApp loads configPath and constructs a ready-to-use App. contextDir
// overrides the config's context_dir when non-empty.
func NewApp(configPath, contextDir string) (*App, error) {
	doc, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	pcfg := doc.Pipeline
	if contextDir != "" {
		pcfg.ContextDir = contextDir
	}
	if pcfg.ContextDir == "" {
		pcfg.ContextDir = "."
	}

	staticRunner := validate.NewStaticRunner()
	criticRunner := validate.NewCriticRunner(buildProviders())

	pipeline := validate.New(pcfg, staticRunner, criticRunner)

	for _, def := range doc.Validators {
		if err := pipeline.RegisterValidator(def); err != nil {
			return nil, fmt.Errorf("registering validator '%s': %w", def.ID, err)
		}
	}

	handler := decision.New(nil, false, false)
	pipeline.SetHumanHandler(pipelineHumanHandler{handler})

	appLog.Printf("loaded %d validator(s) from %s", len(doc.Validators), configPath)
	return &App{Pipeline: pipeline, Decision: handler}, nil
}

// buildProviders registers an AI critic Provider for every API key found
// in the environment; a validator configured for a provider with no key
// set falls back to CriticRunner's CLI fallback.
func buildProviders() map[string]validate.Provider {
	providers := map[string]validate.Provider{}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		providers["anthropic"] = validate.NewAnthropicProvider(key, "claude-sonnet-4-5")
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		providers["openai"] = validate.NewOpenAIProvider(key, "gpt-4o")
	}
	if url := os.Getenv("VALIDATECTL_HTTP_PROVIDER_URL"); url != "" {
		providers["http"] = validate.NewHTTPProvider("http", url, os.Getenv("VALIDATECTL_HTTP_PROVIDER_KEY"), os.Getenv("VALIDATECTL_HTTP_PROVIDER_MODEL"))
	}
	return providers
}

// pipelineHumanHandler adapts *decision.Handler to validate.HumanHandler;
// the two packages can't reference each other's concrete types directly
// without an import cycle, since decision.Handler needs validate.Response
// and validate.Pipeline needs the HumanHandler interface.
type pipelineHumanHandler struct {
	h *decision.Handler
}

func (p pipelineHumanHandler) RequestDecision(kind validate.DecisionKind, title, description string, summary *validate.ValidationSummary, relevant []validate.ValidatorResult, requestContext string, opts *validate.RequestOptions) (*validate.Response, error) {
	return p.h.RequestDecision(kind, title, description, summary, relevant, requestContext, opts)
}

func (p pipelineHumanHandler) HasPending() bool {
	return p.h.HasPending()
}

// loadCandidateFiles reads each path from disk into a CandidateFile,
// inferring Language from its extension.
func loadCandidateFiles(paths []string) ([]validate.CandidateFile, error) {
	files := make([]validate.CandidateFile, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading '%s': %w", p, err)
		}
		files = append(files, validate.CandidateFile{
			Path:     p,
			Content:  string(content),
			Language: languageForPath(p),
		})
	}
	return files, nil
}

func languageForPath(path string) string {
	switch {
	case strings.HasSuffix(path, ".go"):
		return "go"
	case strings.HasSuffix(path, ".ts"), strings.HasSuffix(path, ".tsx"):
		return "typescript"
	case strings.HasSuffix(path, ".js"), strings.HasSuffix(path, ".jsx"):
		return "javascript"
	case strings.HasSuffix(path, ".py"):
		return "python"
	case strings.HasSuffix(path, ".md"):
		return "markdown"
	default:
		return ""
	}
}
