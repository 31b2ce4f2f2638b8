package briefing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/proposal-review/advisor/internal/agent/model"
)

func record() model.CandidateRecord {
	return model.CandidateRecord{
		ID:       "nit",
		Name:     "Northlake Institute of Technology",
		Abbr:     "NIT",
		Concept:  "Haptic road feel.",
		Extracts: []string{"EXTRACT-TEXT"},
		Pros:     []string{"Strong lab", "Fast delivery"},
		Cons:     []string{"CONS-TEXT"},
		Summary:  "Technically strongest.",
		Assets: model.Assets{
			Images:   []model.ImageAsset{{Label: "IMAGE-LABEL", URL: "blob:image"}},
			Document: &model.DocumentAsset{Name: "DOC-NAME.pdf"},
		},
	}
}

func TestSerializeSingleRecord(t *testing.T) {
	want := "=== Northlake Institute of Technology (NIT) ===\n" +
		"[Concept]\nHaptic road feel.\n" +
		"[Strengths]\nStrong lab; Fast delivery\n" +
		"[Summary]\nTechnically strongest.\n"

	assert.Equal(t, want, Serialize([]model.CandidateRecord{record()}))
}

func TestSerializeExcludesConsExtractsAndAssets(t *testing.T) {
	out := Serialize([]model.CandidateRecord{record()})

	for _, hidden := range []string{"CONS-TEXT", "EXTRACT-TEXT", "IMAGE-LABEL", "blob:image", "DOC-NAME"} {
		assert.NotContains(t, out, hidden)
	}
}

func TestSerializeKeepsRecordOrder(t *testing.T) {
	a := record()
	b := record()
	b.Name, b.Abbr = "Eastharbor University", "EHU"

	out := Serialize([]model.CandidateRecord{b, a})

	assert.Less(t, strings.Index(out, "(EHU)"), strings.Index(out, "(NIT)"))
	assert.Contains(t, out, "Technically strongest.\n\n=== Northlake")
}

func TestSerializeIsDeterministic(t *testing.T) {
	records := []model.CandidateRecord{record(), record()}
	assert.Equal(t, Serialize(records), Serialize(records))
}

func TestSerializeEmpty(t *testing.T) {
	assert.Equal(t, "", Serialize(nil))
}

