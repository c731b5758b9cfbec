package rules

import (
	"regexp"
	"strings"

	"github.com/corevalidate/middleware/pkg/logger"
	"github.com/corevalidate/middleware/pkg/stringutil"
)

var parseLog = logger.New("rules:parser")

// section is the classification of a markdown header, in the precedence
// order required by the grammar: anti-patterns must be checked before
// patterns because "anti-pattern" contains "pattern".
type section int

const (
	sectionArchitecture section = iota
	sectionPatterns
	sectionAntiPatterns
	sectionConventions
	sectionExamples
	sectionOverrides
)

var headerRules = []struct {
	section section
	needles []string
}{
	{sectionAntiPatterns, []string{"anti-pattern", "antipattern", "do not", "don't", "avoid"}},
	{sectionPatterns, []string{"required pattern", "pattern", "best practice"}},
	{sectionConventions, []string{"convention", "style"}},
	{sectionExamples, []string{"example"}},
	{sectionOverrides, []string{"override"}},
}

func classifyHeader(text string) section {
	lower := strings.ToLower(text)
	for _, rule := range headerRules {
		for _, needle := range rule.needles {
			if strings.Contains(lower, needle) {
				return rule.section
			}
		}
	}
	return sectionArchitecture
}

var (
	headerPattern     = regexp.MustCompile(`^(#{1,3})\s+(.*)$`)
	listItemPattern   = regexp.MustCompile(`^(?:[-*]\s+|\d+\.\s+)(.*)$`)
	overridePattern   = regexp.MustCompile(`^@(extend|override|disable):\s*"([^"]+)"\s*(.*)$`)
	arrowPattern      = regexp.MustCompile("^`([^`]+)`\\s*(?:→|->|—|–|--)\\s*(.+)$")
	plainArrowPattern = regexp.MustCompile(`^(.+?)\s*(?:→|->|—|–|--)\s*(.+)$`)
	trailingReason    = regexp.MustCompile(`^(.*?)\s*\(([^)]+)\)\s*$`)
)

// item is a single parsed list entry awaiting classification into the
// correct bucket once its section and any trailing examples are known.
type item struct {
	section section
	text    string
	lines   []string // additional lines (reason sentences, wrapped text)
	code    []string // attached code block examples
}

// ParseMarkdown parses a single UTF-8 markdown rule file into a
// ParsedContext. It is purely syntactic: malformed markdown is tolerated,
// unknown headers fall back to architecture notes, and the function never
// fails except on nothing (I/O errors are the caller's concern, not this
// function's — it takes content already read from disk).
func ParseMarkdown(content, sourceFile string) *ParsedContext {
	ctx := &ParsedContext{SourceFile: sourceFile}

	lines := strings.Split(content, "\n")
	current := sectionArchitecture
	var items []item
	var architecture strings.Builder

	var curItem *item
	var inCode bool
	var codeBuf []string

	flush := func() {
		if curItem != nil {
			items = append(items, *curItem)
			curItem = nil
		}
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if inCode {
			if strings.HasPrefix(trimmed, "```") {
				inCode = false
				if curItem != nil {
					curItem.code = append(curItem.code, strings.Join(codeBuf, "\n"))
				}
				codeBuf = nil
				continue
			}
			codeBuf = append(codeBuf, line)
			continue
		}

		if strings.HasPrefix(trimmed, "```") {
			inCode = true
			codeBuf = nil
			continue
		}

		if m := overridePattern.FindStringSubmatch(trimmed); m != nil {
			flush()
			ctx.Overrides = append(ctx.Overrides, Override{
				Kind:       OverrideKind(strings.ToLower(m[1])),
				TargetID:   m[2],
				NewValue:   strings.TrimSpace(m[3]),
				SourceFile: sourceFile,
			})
			continue
		}

		if m := headerPattern.FindStringSubmatch(trimmed); m != nil {
			flush()
			current = classifyHeader(m[2])
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		if m := listItemPattern.FindStringSubmatch(trimmed); m != nil {
			flush()
			if current == sectionExamples {
				// An example item attaches its following code block(s) to
				// the most recently flushed item rather than starting a
				// new rule entry.
				if len(items) > 0 {
					curItem = &items[len(items)-1]
					items = items[:len(items)-1]
				}
			} else {
				curItem = &item{section: current, text: m[1]}
			}
			continue
		}

		// Continuation line (wrapped text or a reason sentence) belonging
		// to the current item.
		if curItem != nil {
			curItem.lines = append(curItem.lines, trimmed)
		} else if current == sectionArchitecture {
			architecture.WriteString(line)
			architecture.WriteString("\n")
		}
	}
	flush()

	ctx.ArchitectureNotes = strings.TrimSpace(architecture.String())

	slugBase := stringutil.Slugify(sourceFile)
	idx := 0
	nextID := func() string {
		idx++
		return slugBase + "-" + itoa(idx)
	}

	for _, it := range items {
		switch it.section {
		case sectionAntiPatterns:
			ctx.AntiPatterns = append(ctx.AntiPatterns, parseAntiPattern(it, nextID(), sourceFile))
		case sectionPatterns:
			ctx.Patterns = append(ctx.Patterns, Pattern{
				ID:          nextID(),
				Description: strings.TrimSpace(strings.Join(append([]string{it.text}, it.lines...), " ")),
				SourceFile:  sourceFile,
				Examples:    it.code,
			})
		case sectionConventions:
			ctx.Conventions = append(ctx.Conventions, Convention{
				ID:          nextID(),
				Description: strings.TrimSpace(strings.Join(append([]string{it.text}, it.lines...), " ")),
				SourceFile:  sourceFile,
				Examples:    it.code,
			})
		default:
			// Items under an unrecognized or architecture header are
			// folded into the architecture notes rather than discarded.
			architecture.WriteString(it.text)
			architecture.WriteString("\n")
		}
	}
	ctx.ArchitectureNotes = strings.TrimSpace(architecture.String())

	parseLog.Printf("parsed %s: %d patterns, %d anti-patterns, %d conventions, %d overrides",
		sourceFile, len(ctx.Patterns), len(ctx.AntiPatterns), len(ctx.Conventions), len(ctx.Overrides))

	return ctx
}

func parseAntiPattern(it item, id, sourceFile string) AntiPattern {
	ap := AntiPattern{ID: id, SourceFile: sourceFile, Examples: it.code}

	if m := arrowPattern.FindStringSubmatch(it.text); m != nil {
		ap.Forbidden = strings.TrimSpace(m[1])
		alt, reason := splitAlternativeReason(m[2])
		ap.Alternative = alt
		ap.Reason = reason
		return ap
	}
	if m := plainArrowPattern.FindStringSubmatch(it.text); m != nil {
		ap.Forbidden = strings.TrimSpace(m[1])
		alt, reason := splitAlternativeReason(m[2])
		ap.Alternative = alt
		ap.Reason = reason
		return ap
	}

	ap.Forbidden = it.text
	ap.Alternative = "(see context for alternatives)"
	ap.Reason = strings.TrimSpace(strings.Join(it.lines, " "))
	return ap
}

// splitAlternativeReason splits "Y (reason)" or "Y. Reason sentence." into
// the alternative and an optional trailing reason.
func splitAlternativeReason(s string) (alternative, reason string) {
	s = strings.TrimSpace(s)
	if m := trailingReason.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	if idx := strings.Index(s, ". "); idx >= 0 {
		return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+2:])
	}
	return s, ""
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
