package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/critics/internal/synth"
)

// GenerateMermaid produces a Mermaid graph LR diagram linking each persona to
// the findings it contributed to. Findings are grouped by category.
func GenerateMermaid(exp *ReviewExport) string {
	// Node IDs must be alphanumeric for Mermaid.
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(key string) string {
		if id, ok := nodeIDs[key]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[key] = id
		return id
	}

	var sb strings.Builder
	sb.WriteString("graph LR\n")

	// Personas in order of first appearance.
	var personas []string
	names := make(map[string]string)
	for _, m := range exp.MetaComments {
		for _, s := range m.Sources {
			if _, ok := names[s.PersonaID]; !ok {
				names[s.PersonaID] = s.PersonaName
				personas = append(personas, s.PersonaID)
			}
		}
	}
	for _, id := range personas {
		sb.WriteString(fmt.Sprintf("  %s([\"%s\"])\n", getID("persona:"+id), label(names[id], 40)))
	}

	// One subgraph per category, in first-seen order.
	var categories []synth.Category
	byCategory := make(map[synth.Category][]int)
	for i, m := range exp.MetaComments {
		if _, ok := byCategory[m.Category]; !ok {
			categories = append(categories, m.Category)
		}
		byCategory[m.Category] = append(byCategory[m.Category], i)
	}
	for _, cat := range categories {
		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%s\"]\n", getID("category:"+string(cat)), cat))
		for _, i := range byCategory[cat] {
			m := exp.MetaComments[i]
			sb.WriteString(fmt.Sprintf("    %s[\"%s: %s\"]\n", getID("finding:"+m.ID), m.Priority, label(m.Content, 40)))
		}
		sb.WriteString("  end\n")
	}

	seen := make(map[string]bool)
	for _, m := range exp.MetaComments {
		for _, s := range m.Sources {
			edge := s.PersonaID + "->" + m.ID
			if seen[edge] {
				continue
			}
			seen[edge] = true
			sb.WriteString(fmt.Sprintf("  %s --> %s\n", getID("persona:"+s.PersonaID), getID("finding:"+m.ID)))
		}
	}

	return sb.String()
}

// label shortens s to n runes and strips characters Mermaid treats as syntax.
func label(s string, n int) string {
	s = strings.NewReplacer(`"`, "'", "\n", " ", "[", "(", "]", ")").Replace(oneLine(s))
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
