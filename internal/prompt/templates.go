package prompt

import (
	"fmt"
	"strings"

	"github.com/hyperjump/ragd/internal/models"
)

// Template selects the instruction text wrapped around the query and retrieved context.
type Template int

const (
	// Diagnostic asks the model to act as an SRE diagnosing log-related results.
	Diagnostic Template = iota
	// Concise asks the model to answer directly from the context.
	Concise
)

// String returns the configuration name of the template.
func (t Template) String() string {
	switch t {
	case Diagnostic:
		return "diagnostic"
	case Concise:
		return "concise"
	default:
		return fmt.Sprintf("template(%d)", int(t))
	}
}

// ParseTemplate maps a configuration or request value to a Template. The empty string is Diagnostic.
func ParseTemplate(s string) (Template, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "diagnostic":
		return Diagnostic, nil
	case "concise":
		return Concise, nil
	default:
		return 0, models.NewInvalidArgument("template", "unknown template %q (supported: diagnostic, concise)", s)
	}
}

// sections holds the fixed text of a template. The rendered prompt is
// intro + query + "\n\n" + resultsHeading + context lines + outro.
type sections struct {
	intro          string
	resultsHeading string
	outro          string
}

var templates = map[Template]sections{
	Diagnostic: {
		intro: `# TASK DEFINITION
You are an expert log consultant, analyzer, and debugging specialist. Your task is to analyze the query and log-related search results provided, then deliver a clear diagnostic assessment and actionable solutions.

## QUERY
`,
		resultsHeading: "## SEARCH RESULTS\n",
		outro: `
## INSTRUCTIONS
1. ANALYZE: First, understand the log patterns, error messages, and system behaviors described in the search results
2. IDENTIFY: Detect anomalies, error patterns, root causes, or system bottlenecks in the logs
3. DIAGNOSE: Determine the most likely underlying issues based on the log evidence
4. SOLVE: Provide specific solutions to address the identified problems
5. PREVENT: Suggest monitoring, alerting, or code improvements to prevent similar issues
6. EXPLAIN: Clarify complex log patterns or technical concepts when necessary

## RESPONSE FORMAT
- Start with a clear summary of the log analysis findings
- Include specific log entries that indicate problems, with explanation
- Provide concrete debugging steps or solutions
- When applicable, include code snippets for fixes or improved logging
- Prioritize issues by severity/impact when multiple problems exist
- End with preventative recommendations

## IMPORTANT NOTES
- Recognize common log patterns across different technologies (web servers, databases, containers, etc.)
- Interpret timestamps, sequence of events, and correlation between different log entries
- Be aware that logs may be incomplete or misleading; account for gaps in information
- If log information is insufficient, acknowledge limitations and suggest what additional logs would help
- Consider environmental factors (load, memory, network, etc.) that might contribute to issues

Respond as an experienced SRE/DevOps engineer helping diagnose and resolve production issues.
`,
	},
	Concise: {
		intro: `Answer the question using only the context below. If the context does not contain the answer, say so.

Question: `,
		resultsHeading: "Context:\n",
		outro: `
Answer:
`,
	},
}
