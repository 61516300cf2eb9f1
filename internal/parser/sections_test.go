package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"codeberg.org/snonux/lughat/internal/prompt"
)

const omnibusReply = `Here you go!
### Translation
ثابت قدم
### Pronunciation Guide
re-ZIL-yent
### Definition
Able to recover quickly.
### Vocabulary Analysis
Intermediate, neutral register.
### Grammar and Structure
Adjective.
### Corrections
None.
`

func TestExtractSection(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		section string
		want    string
	}{
		{"first section", "### Translation\nثابت قدم\n### Pronunciation Guide\n...\n", "Translation", "Translation\nثابت قدم"},
		{"later section", omnibusReply, "Grammar and Structure", "Grammar and Structure\nAdjective."},
		{"case insensitive", omnibusReply, "pronunciation guide", "Pronunciation Guide\nre-ZIL-yent"},
		{"trimmed", "###   Corrections   \n\n  None.  \n\n", "Corrections", "Corrections   \n\n  None."},
		{"missing", omnibusReply, "Conversation", SectionNotFound},
		{"empty text", "", "Translation", SectionNotFound},
		{"empty name", omnibusReply, "  ", SectionNotFound},
		{"no headings", "ثابت قدم means resilient", "Translation", SectionNotFound},
		{"substring match picks first fragment", "Translation notes follow\n### Translation\nx", "translation", "Translation notes follow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSection(tt.text, tt.section))
		})
	}
}

func TestExtractSection_Idempotent(t *testing.T) {
	first := ExtractSection(omnibusReply, "Definition")
	assert.Equal(t, first, ExtractSection(omnibusReply, "Definition"))
	assert.Equal(t, "Definition\nAble to recover quickly.", first)
}

func TestFieldFor(t *testing.T) {
	tests := map[prompt.Category]string{
		prompt.Translation:         FieldTranslation,
		prompt.PronunciationGuide:  FieldPronunciation,
		prompt.Definition:          FieldDefinition,
		prompt.VocabularyAnalysis:  FieldVocabulary,
		prompt.GrammarAndStructure: FieldGrammar,
		prompt.Corrections:         FieldCorrections,
		prompt.SynonymsAndAntonyms: FieldDefinition,
		prompt.Conversation:        FieldTranslation,
		prompt.Category(99):        "",
	}
	for category, want := range tests {
		assert.Equal(t, want, FieldFor(category), "category %d", int(category))
	}
}
