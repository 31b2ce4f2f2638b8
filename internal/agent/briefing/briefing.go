// Package briefing renders the dataset into the natural-language grounding
// context attached to every assistant request.
package briefing

import (
	"strings"

	"github.com/proposal-review/advisor/internal/agent/model"
)

const prosSeparator = "; "

// Serialize renders one paragraph per record in list order. Only the name,
// concept, pros and summary are included. The output depends on nothing but
// records.
func Serialize(records []model.CandidateRecord) string {
	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteString("\n")
		}
		writeRecord(&b, r)
	}
	return b.String()
}

func writeRecord(b *strings.Builder, r model.CandidateRecord) {
	b.WriteString("=== ")
	b.WriteString(r.Name)
	b.WriteString(" (")
	b.WriteString(r.Abbr)
	b.WriteString(") ===\n")

	b.WriteString("[Concept]\n")
	b.WriteString(r.Concept)
	b.WriteString("\n")

	b.WriteString("[Strengths]\n")
	b.WriteString(strings.Join(r.Pros, prosSeparator))
	b.WriteString("\n")

	b.WriteString("[Summary]\n")
	b.WriteString(r.Summary)
	b.WriteString("\n")
}
