package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCommand(t *testing.T) {
	files := []CandidateFile{{Path: "a.go"}, {Path: "b.go"}}

	t.Run("placeholder substitution", func(t *testing.T) {
		name, args := buildCommand("golangci-lint run {{files}}", files)
		assert.Equal(t, "golangci-lint", name)
		assert.Equal(t, []string{"run", "a.go", "b.go"}, args)
	})

	t.Run("explicit argument marker is left untouched", func(t *testing.T) {
		name, args := buildCommand("eslint -- --format json", files)
		assert.Equal(t, "eslint", name)
		assert.Equal(t, []string{"--", "--format", "json"}, args)
	})

	t.Run("no placeholder or marker appends files", func(t *testing.T) {
		name, args := buildCommand("gofmt -l", files)
		assert.Equal(t, "gofmt", name)
		assert.Equal(t, []string{"-l", "a.go", "b.go"}, args)
	})

	t.Run("empty template", func(t *testing.T) {
		name, args := buildCommand("", nil)
		assert.Empty(t, name)
		assert.Nil(t, args)
	})
}

func TestBuildResult_ApprovedMapping(t *testing.T) {
	// Mapping per the output contract: exit 0 OR success=true -> Approved.
	cases := []struct {
		name     string
		success  bool
		exitCode int
		want     Status
	}{
		{"exit 0 and success true", true, 0, StatusApproved},
		{"exit 0 and success false", false, 0, StatusApproved},
		{"nonzero exit but success true", true, 1, StatusApproved},
		{"nonzero exit and success false", false, 1, StatusRejected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := buildResult(nil, tc.exitCode, tc.success)
			assert.Equal(t, tc.want, result.Status)
		})
	}
}

func TestBuildResult_IssuesAttachFirstAsDetails(t *testing.T) {
	issues := []staticIssue{
		{File: "a.go", Line: 3, Column: 5, Message: "unused import", RuleID: "unused"},
		{File: "b.go", Line: 9, Column: 1, Message: "missing return", RuleID: "typecheck"},
	}
	result := buildResult(issues, 1, false)

	require.Equal(t, StatusRejected, result.Status)
	require.NotNil(t, result.Details)
	assert.Equal(t, "a.go", result.Details.File)
	assert.Equal(t, 3, result.Details.Line)
	assert.Equal(t, "unused import", result.Message)
	assert.Len(t, result.Metadata["all_issues"], 2)
}

func TestParseESLintJSON(t *testing.T) {
	t.Run("valid eslint output", func(t *testing.T) {
		output := `[{"filePath":"src/a.ts","messages":[{"line":10,"column":2,"ruleId":"no-unused-vars","message":"x is unused","severity":1}],"errorCount":0,"warningCount":1}]`
		issues, ok := parseESLintJSON(output)
		require.True(t, ok)
		require.Len(t, issues, 1)
		assert.Equal(t, "src/a.ts", issues[0].File)
		assert.Equal(t, 10, issues[0].Line)
		assert.Equal(t, "no-unused-vars", issues[0].RuleID)
	})

	t.Run("no issues still recognized as eslint format", func(t *testing.T) {
		issues, ok := parseESLintJSON(`[{"filePath":"src/a.ts","messages":[],"errorCount":0,"warningCount":0}]`)
		require.True(t, ok)
		assert.Empty(t, issues)
	})

	t.Run("non-array input is not eslint", func(t *testing.T) {
		_, ok := parseESLintJSON(`{"not":"an array"}`)
		assert.False(t, ok)
	})
}

func TestParseJestJSON(t *testing.T) {
	t.Run("failing test surfaced as an issue", func(t *testing.T) {
		output := `{"success":false,"numFailedTests":1,"numPassedTests":2,"numTotalTests":3,"testResults":[{"name":"foo.test.ts","assertionResults":[{"status":"failed","title":"does the thing","failureMessages":["expected true, got false"]}]}]}`
		issues, r, ok := parseJestJSON(output)
		require.True(t, ok)
		require.Len(t, issues, 1)
		assert.Equal(t, "foo.test.ts", issues[0].File)
		assert.Equal(t, "expected true, got false", issues[0].Message)
		assert.False(t, r.Success)
		assert.Equal(t, 3, r.NumTotalTests)
	})

	t.Run("not jest output", func(t *testing.T) {
		_, _, ok := parseJestJSON(`{"foo":"bar"}`)
		assert.False(t, ok)
	})
}

func TestBuildJestResult(t *testing.T) {
	issues := []staticIssue{{File: "foo.test.ts", Message: "boom"}}
	r := jestResult{Success: true, NumPassedTests: 2, NumTotalTests: 3}

	// Jest reports success=true despite a nonzero exit code (a real
	// occurrence with some wrapper scripts); the OR mapping approves it.
	result := buildJestResult(issues, r, 1)
	assert.Equal(t, StatusApproved, result.Status)
	assert.Equal(t, "2/3 passed", result.Metadata["jest_summary"])
}

func TestParseTypeScript(t *testing.T) {
	t.Run("tsc-style errors", func(t *testing.T) {
		output := "src/index.ts(12,5): error TS2322: Type 'string' is not assignable to type 'number'."
		issues, found := parseTypeScript(output)
		require.True(t, found)
		require.Len(t, issues, 1)
		assert.Equal(t, "src/index.ts", issues[0].File)
		assert.Equal(t, 12, issues[0].Line)
		assert.Equal(t, "TS2322", issues[0].RuleID)
	})

	t.Run("alternate colon-separated format", func(t *testing.T) {
		output := "src/index.ts:12:5 - error TS2322: Type mismatch"
		issues, found := parseTypeScript(output)
		require.True(t, found)
		require.Len(t, issues, 1)
		assert.Equal(t, 5, issues[0].Column)
	})

	t.Run("no matches", func(t *testing.T) {
		issues, found := parseTypeScript("everything compiled fine")
		assert.False(t, found)
		assert.Empty(t, issues)
	})
}

func TestParseTAP(t *testing.T) {
	t.Run("all ok", func(t *testing.T) {
		output := "TAP version 13\nok 1 - first test\nok 2 - second test\n"
		result, ok := parseTAP(output, 0)
		require.True(t, ok)
		assert.Equal(t, StatusApproved, result.Status)
	})

	t.Run("failure recorded when the process also exits nonzero", func(t *testing.T) {
		output := "TAP version 13\nok 1 - first test\nnot ok 2 - second test\n"
		result, ok := parseTAP(output, 1)
		require.True(t, ok)
		assert.Equal(t, StatusRejected, result.Status)
	})

	t.Run("exit 0 overrides a failing assertion per the exit-0-or-success mapping", func(t *testing.T) {
		output := "TAP version 13\nok 1 - first test\nnot ok 2 - second test\n"
		result, ok := parseTAP(output, 0)
		require.True(t, ok)
		assert.Equal(t, StatusApproved, result.Status)
	})

	t.Run("not tap output", func(t *testing.T) {
		_, ok := parseTAP("plain text with no tap markers", 1)
		assert.False(t, ok)
	})
}

func TestParseSARIF(t *testing.T) {
	output := `{"runs":[{"results":[{"ruleId":"G101","message":{"text":"hardcoded credentials"},"locations":[{"physicalLocation":{"artifactLocation":{"uri":"main.go"},"region":{"startLine":42,"startColumn":3}}}]}]}]}`
	issues, ok := parseSARIF(output)
	require.True(t, ok)
	require.Len(t, issues, 1)
	assert.Equal(t, "main.go", issues[0].File)
	assert.Equal(t, 42, issues[0].Line)
	assert.Equal(t, "G101", issues[0].RuleID)
	assert.Equal(t, "hardcoded credentials", issues[0].Message)
}

func TestParseSARIF_NotSARIF(t *testing.T) {
	_, ok := parseSARIF(`{"just":"json"}`)
	assert.False(t, ok)
}

func TestParseGenericText(t *testing.T) {
	t.Run("matches a file:line:column reference", func(t *testing.T) {
		issues := parseGenericText("main.go:10:4: undefined: foo")
		require.Len(t, issues, 1)
		assert.Equal(t, "main.go", issues[0].File)
		assert.Equal(t, 10, issues[0].Line)
	})

	t.Run("third-party paths are excluded", func(t *testing.T) {
		issues := parseGenericText("node_modules/pkg/index.js:1:1: some notice")
		assert.Empty(t, issues)
	})

	t.Run("no file references", func(t *testing.T) {
		issues := parseGenericText("all good, nothing to report")
		assert.Empty(t, issues)
	})
}

func TestParseStaticOutput_FormatPrecedence(t *testing.T) {
	t.Run("eslint JSON wins over generic text", func(t *testing.T) {
		output := `[{"filePath":"a.ts","messages":[{"line":1,"column":1,"ruleId":"x","message":"bad"}],"errorCount":1,"warningCount":0}]`
		result := parseStaticOutput(output, 1)
		assert.Equal(t, StatusRejected, result.Status)
	})

	t.Run("falls back to generic text", func(t *testing.T) {
		result := parseStaticOutput("plain output with no structure", 0)
		assert.Equal(t, StatusApproved, result.Status)
	})
}

func TestStaticRunner_Run(t *testing.T) {
	def := &ValidatorDefinition{
		ID:         "lint",
		KindConfig: StaticConfig{Command: "golangci-lint run {{files}}"},
	}
	vctx := &ValidationContext{Files: []CandidateFile{{Path: "main.go"}}}

	t.Run("approved via clean exit", func(t *testing.T) {
		runner := &StaticRunner{
			Exec: func(ctx context.Context, name string, args []string) (string, string, int, error) {
				assert.Equal(t, "golangci-lint", name)
				assert.Equal(t, []string{"run", "main.go"}, args)
				return "", "", 0, nil
			},
		}
		result, err := runner.Run(context.Background(), def, vctx)
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, result.Status)
	})

	t.Run("rejected via nonzero exit and issue output", func(t *testing.T) {
		runner := &StaticRunner{
			Exec: func(ctx context.Context, name string, args []string) (string, string, int, error) {
				return "main.go:5:1: error: something broke", "", 1, nil
			},
		}
		result, err := runner.Run(context.Background(), def, vctx)
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, result.Status)
		assert.Equal(t, "lint", result.ValidatorID)
	})

	t.Run("exec failure maps to rejected error", func(t *testing.T) {
		runner := &StaticRunner{
			Exec: func(ctx context.Context, name string, args []string) (string, string, int, error) {
				return "", "", -1, assert.AnError
			},
		}
		result, err := runner.Run(context.Background(), def, vctx)
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, result.Status)
		assert.Equal(t, SeverityError, result.Severity)
	})

	t.Run("non-static config is rejected with an error", func(t *testing.T) {
		runner := NewStaticRunner()
		badDef := &ValidatorDefinition{ID: "x", KindConfig: CustomConfig{}}
		_, err := runner.Run(context.Background(), badDef, vctx)
		assert.Error(t, err)
	})
}
