package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cenkalti/backoff/v5"
	openai "github.com/openai/openai-go/v3"
	openaioption "github.com/openai/openai-go/v3/option"

	"github.com/corevalidate/middleware/pkg/constants"
	"github.com/corevalidate/middleware/pkg/gitutil"
	"github.com/corevalidate/middleware/pkg/httputil"
	"github.com/corevalidate/middleware/pkg/logger"
	"github.com/corevalidate/middleware/pkg/ratelimit"
	"github.com/corevalidate/middleware/pkg/rules"
)

var criticLog = logger.New("validate:runner:critic")

const reviewerSystemPrompt = "You are an automated code reviewer. Respond only with the requested JSON object, no prose."

// Provider is an AI critic backend the CriticRunner can call over HTTP.
type Provider interface {
	Name() string
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
}

// CriticRunner calls a configured AI provider (HTTP first, CLI fallback)
// to review a set of candidate files against their resolved rules.
type CriticRunner struct {
	Providers map[string]Provider
	// CLIFallback, if set, is invoked as "<binary> <prompt via stdin>" when
	// no HTTP provider is registered for a validator's configured provider
	// name.
	CLIFallback func(ctx context.Context, binary, prompt string) (string, error)
	Limiter     *ratelimit.TokenBucket
}

// NewCriticRunner creates a CriticRunner with the given providers
// pre-registered by name (e.g. "anthropic", "openai").
func NewCriticRunner(providers map[string]Provider) *CriticRunner {
	limiter, err := ratelimit.NewTokenBucket(ratelimit.OperationAICritic, nil)
	if err != nil {
		criticLog.Printf("failed to create AI critic rate limiter, proceeding unthrottled: %v", err)
	}
	return &CriticRunner{Providers: providers, Limiter: limiter, CLIFallback: execCLIProvider}
}

func execCLIProvider(ctx context.Context, binary, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, binary)
	cmd.Stdin = strings.NewReader(prompt)
	out, err := cmd.Output()
	return string(out), err
}

// Run implements the AI Critic Runner contract.
func (r *CriticRunner) Run(ctx context.Context, def *ValidatorDefinition, vctx *ValidationContext) (*ValidatorResult, error) {
	cfg, ok := def.KindConfig.(AiCriticConfig)
	if !ok {
		return nil, newError(ErrInvalidValidatorConfig, "critic runner invoked on non-ai_critic validator", nil)
	}

	start := time.Now()
	prompt := BuildCriticPrompt(def, cfg, vctx)

	raw, err := r.call(ctx, cfg, prompt)
	duration := time.Since(start).Milliseconds()

	if err != nil {
		criticLog.Printf("ai critic %s unreachable: %v", def.ID, err)
		return &ValidatorResult{
			ValidatorID: def.ID,
			Status:      StatusSkipped,
			Severity:    SeverityWarning,
			Message:     fmt.Sprintf("provider %s unreachable: %v", cfg.Provider, err),
			DurationMS:  duration,
		}, nil
	}

	result := ParseCriticResponse(raw)
	result.ValidatorID = def.ID
	result.DurationMS = duration
	return &result, nil
}

func (r *CriticRunner) call(ctx context.Context, cfg AiCriticConfig, prompt string) (string, error) {
	if r.Limiter != nil {
		if err := r.Limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = constants.DefaultCriticTemperature
	}

	if provider, ok := r.Providers[cfg.Provider]; ok {
		operation := func() (string, error) {
			return provider.Complete(ctx, cfg.SystemPrompt, prompt, maxTokens, temperature)
		}
		return backoff.Retry(ctx, operation, backoff.WithMaxTries(3))
	}

	if r.CLIFallback != nil {
		return r.CLIFallback(ctx, cfg.Provider, prompt)
	}

	return "", fmt.Errorf("no provider registered for %q and no CLI fallback configured", cfg.Provider)
}

// BuildCriticPrompt constructs the reviewer prompt: patterns to
// enforce, anti-patterns to flag, conventions, architecture context, the
// diff/content of each changed file, and an optional git diff block.
func BuildCriticPrompt(def *ValidatorDefinition, cfg AiCriticConfig, vctx *ValidationContext) string {
	var b strings.Builder
	b.WriteString(cfg.SystemPrompt)
	b.WriteString("\n\n")

	if merged := mergedRulesOf(vctx.Files); !merged.Empty() {
		writeRuleSections(&b, merged)
	}

	b.WriteString("## Changes to Review\n\n")

	includeDiff := def.ContextConfig != nil && def.ContextConfig.IncludeDiff
	includeFullFile := def.ContextConfig != nil && def.ContextConfig.IncludeFullFile

	var parsedDiffs []gitutil.FileDiff
	if includeDiff && vctx.GitDiff != "" {
		parsedDiffs, _ = gitutil.ParseUnifiedDiff(vctx.GitDiff)
	}

	for _, f := range vctx.Files {
		fmt.Fprintf(&b, "### %s\n\n", f.Path)
		if includeDiff {
			diff := f.Diff
			if diff == "" {
				if fd, ok := gitutil.DiffForPath(parsedDiffs, f.Path); ok {
					diff = strings.Join(fd.Hunks, "\n")
				}
			}
			if diff != "" {
				fmt.Fprintf(&b, "```diff\n%s\n```\n\n", diff)
			}
		}
		if includeFullFile {
			content := f.Content
			if len(content) > constants.CriticFullFileTruncation {
				content = content[:constants.CriticFullFileTruncation] + "\n... [truncated]"
			}
			fmt.Fprintf(&b, "```\n%s\n```\n\n", content)
		}
	}

	if vctx.GitDiff != "" {
		fmt.Fprintf(&b, "## Git Diff\n\n```diff\n%s\n```\n\n", vctx.GitDiff)
	}

	b.WriteString(responseFormatBlock)
	return b.String()
}

const responseFormatBlock = `## Response Format

Respond with strict JSON only, no other text:

{"status": "approved|rejected|needs-revision", "severity": "error|warning|info|suggestion", "message": "...", "approved": true|false, "confidence": 0.0, "reasoning": "...", "suggested_fix": "..."}
`

func mergedRulesOf(files []CandidateFile) *rules.MergedRules {
	merged := &rules.MergedRules{}
	for _, f := range files {
		if f.ResolvedRules == nil {
			continue
		}
		merged.Patterns = append(merged.Patterns, f.ResolvedRules.Patterns...)
		merged.AntiPatterns = append(merged.AntiPatterns, f.ResolvedRules.AntiPatterns...)
		merged.Conventions = append(merged.Conventions, f.ResolvedRules.Conventions...)
		if f.ResolvedRules.ArchitectureNotes != "" {
			if merged.ArchitectureNotes != "" {
				merged.ArchitectureNotes += "\n\n"
			}
			merged.ArchitectureNotes += f.ResolvedRules.ArchitectureNotes
		}
	}
	return merged
}

func writeRuleSections(b *strings.Builder, merged *rules.MergedRules) {
	if len(merged.Patterns) > 0 {
		b.WriteString("## Patterns to Enforce\n\n")
		for _, p := range merged.Patterns {
			fmt.Fprintf(b, "- %s\n", p.Description)
		}
		b.WriteString("\n")
	}
	if len(merged.AntiPatterns) > 0 {
		b.WriteString("## Anti-Patterns to Flag\n\n")
		for _, a := range merged.AntiPatterns {
			fmt.Fprintf(b, "- DO NOT USE: %s — Instead: %s\n", a.Forbidden, a.Alternative)
		}
		b.WriteString("\n")
	}
	if len(merged.Conventions) > 0 {
		b.WriteString("## Conventions\n\n")
		for _, c := range merged.Conventions {
			fmt.Fprintf(b, "- %s\n", c.Description)
		}
		b.WriteString("\n")
	}
	if merged.ArchitectureNotes != "" {
		fmt.Fprintf(b, "## Architecture Context\n\n%s\n\n", merged.ArchitectureNotes)
	}
}

var jsonBlockPattern = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")

type criticResponse struct {
	Status       string   `json:"status"`
	Severity     string   `json:"severity"`
	Message      string   `json:"message"`
	Approved     *bool    `json:"approved"`
	Confidence   *float64 `json:"confidence"`
	Reasoning    string   `json:"reasoning"`
	SuggestedFix string   `json:"suggested_fix"`
}

// ParseCriticResponse implements the response-parsing contract:
// extract a fenced JSON block if present, else parse the whole response;
// on failure fall back to keyword heuristics.
func ParseCriticResponse(raw string) ValidatorResult {
	candidate := raw
	if m := jsonBlockPattern.FindStringSubmatch(raw); m != nil {
		candidate = m[1]
	}

	var resp criticResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(candidate)), &resp); err != nil {
		return keywordFallback(raw)
	}

	status := normalizeStatus(resp.Status)
	if resp.Approved != nil {
		if *resp.Approved {
			status = StatusApproved
		} else if status == StatusApproved {
			status = StatusNeedsRevision
		}
	}

	metadata := map[string]any{}
	if resp.Confidence != nil {
		metadata["confidence"] = *resp.Confidence
	}

	var details *Details
	if resp.Reasoning != "" || resp.SuggestedFix != "" {
		details = &Details{Reasoning: resp.Reasoning, SuggestedFix: resp.SuggestedFix}
	}

	return ValidatorResult{
		Status:   status,
		Severity: normalizeSeverity(resp.Severity),
		Message:  resp.Message,
		Details:  details,
		Metadata: metadata,
	}
}

func normalizeStatus(s string) Status {
	switch strings.ToLower(s) {
	case "approved":
		return StatusApproved
	case "rejected":
		return StatusRejected
	case "needs-revision", "needs_revision":
		return StatusNeedsRevision
	default:
		return StatusNeedsRevision
	}
}

func normalizeSeverity(s string) Severity {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError
	case "info":
		return SeverityInfo
	case "suggestion":
		return SeveritySuggestion
	default:
		return SeverityWarning
	}
}

func keywordFallback(raw string) ValidatorResult {
	lower := strings.ToLower(raw)
	status := StatusNeedsRevision
	switch {
	case containsApprove(lower):
		status = StatusApproved
	case strings.Contains(lower, "reject") || strings.Contains(lower, "error") || strings.Contains(lower, "critical"):
		status = StatusRejected
	}

	severity := SeverityWarning
	if status == StatusRejected {
		severity = SeverityError
	} else if status == StatusApproved {
		severity = SeverityInfo
	}

	return ValidatorResult{Status: status, Severity: severity, Message: strings.TrimSpace(raw)}
}

func containsApprove(lower string) bool {
	if !strings.Contains(lower, "approve") {
		return false
	}
	for _, negator := range []string{"not approve", "don't approve", "do not approve", "cannot approve", "can't approve"} {
		if strings.Contains(lower, negator) {
			return false
		}
	}
	return true
}

// AnthropicProvider adapts github.com/anthropics/anthropic-sdk-go to the
// Provider interface.
type AnthropicProvider struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicProvider creates a provider using the given API key and
// default model (overridable per validator via AiCriticConfig.Model).
func NewAnthropicProvider(apiKey string, model anthropic.Model) *AnthropicProvider {
	return &AnthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: int64(maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}

// OpenAIProvider adapts github.com/openai/openai-go/v3 to the Provider
// interface.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider creates a provider using the given API key and
// default model.
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClient(openaioption.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// HTTPProvider adapts any OpenAI-chat-compatible endpoint (a self-hosted
// model server, e.g. Ollama or vLLM) to the Provider interface, for
// deployments with no official SDK in the corpus. It uses pkg/httputil
// directly rather than an SDK client.
type HTTPProvider struct {
	client   *httputil.Client
	baseURL  string
	model    string
	apiKey   string
	provider string
}

// NewHTTPProvider creates a provider that POSTs chat-completion requests
// to baseURL (e.g. "http://localhost:11434/v1/chat/completions"). name
// identifies the provider in logs and validator config; apiKey may be
// empty for endpoints that don't require auth.
func NewHTTPProvider(name, baseURL, apiKey, model string) *HTTPProvider {
	return &HTTPProvider{
		client:   httputil.NewClient(&httputil.ClientOptions{UserAgent: constants.CLIName}),
		baseURL:  baseURL,
		model:    model,
		apiKey:   apiKey,
		provider: name,
	}
}

func (p *HTTPProvider) Name() string { return p.provider }

type httpChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type httpChatRequest struct {
	Model       string            `json:"model"`
	Messages    []httpChatMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	Temperature float64           `json:"temperature"`
}

type httpChatResponse struct {
	Choices []struct {
		Message httpChatMessage `json:"message"`
	} `json:"choices"`
}

func (p *HTTPProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	body, err := json.Marshal(httpChatRequest{
		Model: p.model,
		Messages: []httpChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%s: encoding request: %w", p.provider, err)
	}

	req, err := p.client.NewRequest(http.MethodPost, p.baseURL)
	if err != nil {
		return "", fmt.Errorf("%s: building request: %w", p.provider, err)
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	req.Body = io.NopCloser(strings.NewReader(string(body)))
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: request failed: %w", p.provider, err)
	}
	defer resp.Body.Close()

	respBody, err := httputil.ReadResponseBody(resp)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.provider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", httputil.FormatHTTPError(resp.StatusCode, respBody, p.provider)
	}

	var parsed httpChatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%s: decoding response: %w", p.provider, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%s: empty choices in response", p.provider)
	}
	return parsed.Choices[0].Message.Content, nil
}
