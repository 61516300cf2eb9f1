package parser

import (
	"strings"

	"codeberg.org/snonux/lughat/internal/prompt"
)

const (
	// SectionNotFound is returned when no fragment matches the section name
	SectionNotFound = "Section not found."
	// NotAvailable fills structured fields the reply left out
	NotAvailable = "Not available."

	headingMarker = "###"
)

// Field names of the structured reply, in display order
const (
	FieldTranslation   = "translation"
	FieldPronunciation = "pronunciation"
	FieldDefinition    = "definition"
	FieldVocabulary    = "vocabulary"
	FieldGrammar       = "grammar"
	FieldCorrections   = "corrections"
)

// Fields lists the six structured fields in display order
func Fields() []string {
	return []string{
		FieldTranslation,
		FieldPronunciation,
		FieldDefinition,
		FieldVocabulary,
		FieldGrammar,
		FieldCorrections,
	}
}

// ParsedSections maps every field name to its text
type ParsedSections map[string]string

// FieldFor returns the structured field that holds a category. Categories
// without a field of their own share the closest one.
func FieldFor(category prompt.Category) string {
	switch category {
	case prompt.Translation, prompt.Conversation:
		return FieldTranslation
	case prompt.PronunciationGuide:
		return FieldPronunciation
	case prompt.Definition, prompt.SynonymsAndAntonyms:
		return FieldDefinition
	case prompt.VocabularyAnalysis:
		return FieldVocabulary
	case prompt.GrammarAndStructure:
		return FieldGrammar
	case prompt.Corrections:
		return FieldCorrections
	}
	return ""
}

// ExtractSection splits text on "###" and returns the first fragment that
// mentions name, ignoring case, trimmed. The match is a plain substring test
// so a section name quoted inside an earlier fragment wins over the real
// heading.
func ExtractSection(text, name string) string {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return SectionNotFound
	}

	for _, fragment := range strings.Split(text, headingMarker) {
		if strings.Contains(strings.ToLower(fragment), needle) {
			return strings.TrimSpace(fragment)
		}
	}
	return SectionNotFound
}
