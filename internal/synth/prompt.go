package synth

import (
	"fmt"
	"strings"
)

const promptHeader = `You are a meta-reviewer producing an executive summary of feedback from several reviewer personas.

Your output is a triage list, not a second review. Readers drill into the individual comments for detail; your job is to say what matters and what to fix.

Rules:
- Merge similar criticisms across all groups into single findings.
- One sentence per finding, two at most for critical issues.
- Aim for 3-7 findings for the whole document. Fewer is better.
- Be clinical: verdict, location, action.
- Skip pure style preferences and nitpicks.

Categories: security, technical, clarity, structure, accessibility, style
Priorities: critical, high, medium, low

Answer with a JSON array. Each element has:
- "content": the finding
- "category": one category
- "priority": one priority
- "contributing_personas": names of the personas whose comments support it
- "line_ranges": array of [start, end] line pairs the finding covers, using the line numbers shown below
- "group_index": the group number, only when the finding belongs to exactly one group and line_ranges is omitted

Return ONLY the JSON array.
`

// buildPrompt lists every group with 1-based line numbers and persona
// attributions under the output contract.
func buildPrompt(groups []CommentGroup) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	for i, g := range groups {
		fmt.Fprintf(&b, "\n--- GROUP %d (lines %d-%d) ---\n", i, g.StartLine+1, g.EndLine+1)
		for _, c := range g.Comments {
			fmt.Fprintf(&b, "[%s]: %s\n", c.PersonaName, c.Content)
		}
	}
	return b.String()
}
