package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	sarif "github.com/owenrumney/go-sarif/v3/pkg/report"

	"github.com/corevalidate/middleware/pkg/logger"
	"github.com/corevalidate/middleware/pkg/sliceutil"
)

var staticLog = logger.New("validate:runner:static")

// StaticRunner executes a shell command and parses its output into a
// ValidatorResult. The command template's "{{files}}" placeholder is
// replaced with the space-separated candidate file paths; if the template
// has no placeholder and no "--" argument marker, the file paths are
// appended. Paths are not quoted: the expanded command is split on
// whitespace, so a path containing whitespace becomes several arguments.
type StaticRunner struct {
	// Exec runs name with args and returns combined semantics split into
	// stdout/stderr/exit code. Overridable in tests.
	Exec func(ctx context.Context, name string, args []string) (stdout, stderr string, exitCode int, err error)
}

// NewStaticRunner creates a StaticRunner backed by os/exec.
func NewStaticRunner() *StaticRunner {
	return &StaticRunner{Exec: execCommand}
}

func execCommand(ctx context.Context, name string, args []string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
		err = nil
	}
	return stdout.String(), stderr.String(), exitCode, err
}

// Run implements the Static Validator Runner contract.
func (r *StaticRunner) Run(ctx context.Context, def *ValidatorDefinition, vctx *ValidationContext) (*ValidatorResult, error) {
	cfg, ok := def.KindConfig.(StaticConfig)
	if !ok {
		return nil, newError(ErrInvalidValidatorConfig, "static runner invoked on non-static validator", nil)
	}

	start := time.Now()
	name, args := buildCommand(cfg.Command, vctx.Files)

	stdout, stderr, exitCode, err := r.Exec(ctx, name, args)
	duration := time.Since(start).Milliseconds()

	if err != nil {
		staticLog.Printf("static validator %s failed to execute: %v", def.ID, err)
		return &ValidatorResult{
			ValidatorID: def.ID,
			Status:      StatusRejected,
			Severity:    SeverityError,
			Message:     fmt.Sprintf("failed to execute command: %v", err),
			DurationMS:  duration,
			Metadata:    map[string]any{"raw_output": stderr},
		}, nil
	}

	output := stdout
	if strings.TrimSpace(output) == "" {
		output = stderr
	}

	parsed := parseStaticOutput(output, exitCode)
	parsed.ValidatorID = def.ID
	parsed.DurationMS = duration
	if parsed.Metadata == nil {
		parsed.Metadata = map[string]any{}
	}
	parsed.Metadata["raw_output"] = stdout + stderr

	return &parsed, nil
}

// buildCommand splits a command template into an executable name and
// argument list, substituting "{{files}}" with the unquoted file paths, or
// appending them when the template has neither the placeholder nor an
// existing "--" argument marker.
func buildCommand(template string, files []CandidateFile) (string, []string) {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}

	var full string
	if strings.Contains(template, "{{files}}") {
		full = strings.ReplaceAll(template, "{{files}}", strings.Join(paths, " "))
	} else if sliceutil.Contains(strings.Fields(template), "--") {
		full = template
	} else {
		full = strings.TrimSpace(template + " " + strings.Join(paths, " "))
	}

	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0], parts[1:]
}

type staticIssue struct {
	File    string
	Line    int
	Column  int
	Message string
	RuleID  string
}

// parseStaticOutput auto-detects the output format: TypeScript compiler
// lines, ESLint JSON, Jest JSON, TAP, SARIF, or a generic text fallback.
func parseStaticOutput(output string, exitCode int) ValidatorResult {
	if issues, ok := parseESLintJSON(output); ok {
		return buildResult(issues, exitCode, len(issues) == 0)
	}
	if issues, total, ok := parseJestJSON(output); ok {
		return buildJestResult(issues, total, exitCode)
	}
	if issues, ok := parseSARIF(output); ok {
		return buildResult(issues, exitCode, len(issues) == 0)
	}
	if issues, ok := parseTypeScript(output); ok && len(issues) > 0 {
		return buildResult(issues, exitCode, false)
	}
	if status, ok := parseTAP(output, exitCode); ok {
		return status
	}

	issues := parseGenericText(output)
	return buildResult(issues, exitCode, len(issues) == 0)
}

var tsErrorPattern1 = regexp.MustCompile(`^(.+?)\((\d+),(\d+)\): error (TS\d+): (.+)$`)
var tsErrorPattern2 = regexp.MustCompile(`^(.+?):(\d+):(\d+) - error (TS\d+): (.+)$`)

func parseTypeScript(output string) ([]staticIssue, bool) {
	var issues []staticIssue
	found := false
	for _, line := range strings.Split(output, "\n") {
		if m := tsErrorPattern1.FindStringSubmatch(line); m != nil {
			found = true
			issues = append(issues, toIssue(m))
			continue
		}
		if m := tsErrorPattern2.FindStringSubmatch(line); m != nil {
			found = true
			issues = append(issues, toIssue(m))
		}
	}
	return issues, found
}

func toIssue(m []string) staticIssue {
	line, _ := strconv.Atoi(m[2])
	col, _ := strconv.Atoi(m[3])
	return staticIssue{File: m[1], Line: line, Column: col, RuleID: m[4], Message: m[5]}
}

type eslintMessage struct {
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	RuleID   string `json:"ruleId"`
	Message  string `json:"message"`
	Severity int    `json:"severity"`
}

type eslintFile struct {
	FilePath     string          `json:"filePath"`
	Messages     []eslintMessage `json:"messages"`
	ErrorCount   int             `json:"errorCount"`
	WarningCount int             `json:"warningCount"`
}

func parseESLintJSON(output string) ([]staticIssue, bool) {
	trimmed := strings.TrimSpace(output)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	var files []eslintFile
	if err := json.Unmarshal([]byte(trimmed), &files); err != nil {
		return nil, false
	}

	var issues []staticIssue
	for _, f := range files {
		for _, m := range f.Messages {
			issues = append(issues, staticIssue{File: f.FilePath, Line: m.Line, Column: m.Column, RuleID: m.RuleID, Message: m.Message})
		}
	}
	return issues, true
}

type jestResult struct {
	Success        bool `json:"success"`
	NumFailedTests int  `json:"numFailedTests"`
	NumPassedTests int  `json:"numPassedTests"`
	NumTotalTests  int  `json:"numTotalTests"`
	TestResults    []struct {
		Name                 string `json:"name"`
		AssertionResults     []struct {
			Status          string   `json:"status"`
			Title           string   `json:"title"`
			FailureMessages []string `json:"failureMessages"`
		} `json:"assertionResults"`
	} `json:"testResults"`
}

func parseJestJSON(output string) ([]staticIssue, jestResult, bool) {
	trimmed := strings.TrimSpace(output)
	if !strings.HasPrefix(trimmed, "{") || !strings.Contains(trimmed, "numTotalTests") {
		return nil, jestResult{}, false
	}
	var r jestResult
	if err := json.Unmarshal([]byte(trimmed), &r); err != nil {
		return nil, jestResult{}, false
	}

	var issues []staticIssue
	for _, tr := range r.TestResults {
		for _, ar := range tr.AssertionResults {
			if ar.Status == "failed" {
				msg := ar.Title
				if len(ar.FailureMessages) > 0 {
					msg = ar.FailureMessages[0]
				}
				issues = append(issues, staticIssue{File: tr.Name, Message: msg})
			}
		}
	}
	return issues, r, true
}

func buildJestResult(issues []staticIssue, r jestResult, exitCode int) ValidatorResult {
	result := buildResult(issues, exitCode, r.Success)
	result.Metadata["jest_summary"] = fmt.Sprintf("%d/%d passed", r.NumPassedTests, r.NumTotalTests)
	return result
}

var tapOkPattern = regexp.MustCompile(`^ok\s+\d+`)
var tapNotOkPattern = regexp.MustCompile(`^not ok\s+(\d+)(?:\s*-\s*(.*))?$`)

func parseTAP(output string, exitCode int) (ValidatorResult, bool) {
	trimmed := strings.TrimSpace(output)
	if !strings.HasPrefix(trimmed, "TAP version") && !strings.Contains(trimmed, "\nok ") && !strings.HasPrefix(trimmed, "ok ") && !strings.HasPrefix(trimmed, "not ok ") && !strings.HasPrefix(trimmed, "1..") {
		return ValidatorResult{}, false
	}

	var issues []staticIssue
	sawTapLine := false
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if tapOkPattern.MatchString(line) {
			sawTapLine = true
			continue
		}
		if m := tapNotOkPattern.FindStringSubmatch(line); m != nil {
			sawTapLine = true
			issues = append(issues, staticIssue{Message: m[2]})
		}
	}
	if !sawTapLine {
		return ValidatorResult{}, false
	}
	return buildResult(issues, exitCode, len(issues) == 0), true
}

func parseSARIF(output string) ([]staticIssue, bool) {
	trimmed := strings.TrimSpace(output)
	if !strings.HasPrefix(trimmed, "{") || !strings.Contains(trimmed, `"runs"`) {
		return nil, false
	}

	report, err := sarif.Open(strings.NewReader(trimmed))
	if err != nil {
		return nil, false
	}

	var issues []staticIssue
	for _, run := range report.Runs {
		for _, res := range run.Results {
			var issue staticIssue
			if res.Message.Text != nil {
				issue.Message = *res.Message.Text
			}
			if res.RuleID != nil {
				issue.RuleID = *res.RuleID
			}
			if len(res.Locations) > 0 {
				loc := res.Locations[0]
				if loc.PhysicalLocation != nil && loc.PhysicalLocation.ArtifactLocation != nil && loc.PhysicalLocation.ArtifactLocation.URI != nil {
					issue.File = *loc.PhysicalLocation.ArtifactLocation.URI
				}
				if loc.PhysicalLocation != nil && loc.PhysicalLocation.Region != nil {
					if loc.PhysicalLocation.Region.StartLine != nil {
						issue.Line = *loc.PhysicalLocation.Region.StartLine
					}
					if loc.PhysicalLocation.Region.StartColumn != nil {
						issue.Column = *loc.PhysicalLocation.Region.StartColumn
					}
				}
			}
			issues = append(issues, issue)
		}
	}
	return issues, true
}

var genericIssuePattern = regexp.MustCompile(`([^\s:]+\.[a-zA-Z0-9]+):(\d+):(\d+)`)

// thirdPartyPathMarkers identifies dependency directories whose matches in
// generic text output should be ignored rather than surfaced as issues.
var thirdPartyPathMarkers = []string{"node_modules", "vendor/", ".venv", "site-packages", "://"}

func parseGenericText(output string) []staticIssue {
	var issues []staticIssue
	for _, m := range genericIssuePattern.FindAllStringSubmatch(output, -1) {
		path := m[1]
		if sliceutil.ContainsAny(path, thirdPartyPathMarkers...) {
			continue
		}
		line, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		issues = append(issues, staticIssue{File: path, Line: line, Column: col, Message: output})
	}
	return issues
}

func buildResult(issues []staticIssue, exitCode int, success bool) ValidatorResult {
	approved := success || exitCode == 0
	result := ValidatorResult{
		Status:   StatusApproved,
		Severity: SeverityInfo,
		Metadata: map[string]any{},
	}
	if !approved {
		result.Status = StatusRejected
		result.Severity = SeverityError
	}

	if len(issues) > 0 {
		first := issues[0]
		result.Message = first.Message
		result.Details = &Details{File: first.File, Line: first.Line, Column: first.Column}
		result.Metadata["all_issues"] = issues
	} else if result.Message == "" {
		if approved {
			result.Message = "validator passed"
		} else {
			result.Message = fmt.Sprintf("command exited %d", exitCode)
		}
	}

	return result
}
