package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned for categories outside the fixed list
var ErrUnknownCategory = errors.New("unknown category")

// ErrEmptyText is returned when the input is empty after trimming
var ErrEmptyText = errors.New("text cannot be empty")

// Category selects which section of the learning response is shown
type Category int

const (
	Translation Category = iota
	PronunciationGuide
	Definition
	VocabularyAnalysis
	GrammarAndStructure
	Corrections
	SynonymsAndAntonyms
	Conversation
)

var categoryTitles = [...]string{
	Translation:         "Translation",
	PronunciationGuide:  "Pronunciation Guide",
	Definition:          "Definition",
	VocabularyAnalysis:  "Vocabulary Analysis",
	GrammarAndStructure: "Grammar and Structure",
	Corrections:         "Corrections",
	SynonymsAndAntonyms: "Synonyms and Antonyms",
	Conversation:        "Conversation",
}

var categoryKeys = [...]string{
	Translation:         "translation",
	PronunciationGuide:  "pronunciation",
	Definition:          "definition",
	VocabularyAnalysis:  "vocabulary",
	GrammarAndStructure: "grammar",
	Corrections:         "corrections",
	SynonymsAndAntonyms: "synonyms",
	Conversation:        "conversation",
}

// Categories returns all categories in menu order
func Categories() []Category {
	return []Category{
		Translation,
		PronunciationGuide,
		Definition,
		VocabularyAnalysis,
		GrammarAndStructure,
		Corrections,
		SynonymsAndAntonyms,
		Conversation,
	}
}

// Valid reports whether c is one of the enumerated categories
func (c Category) Valid() bool {
	return c >= Translation && c <= Conversation
}

// Title returns the section heading for the category
func (c Category) Title() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryTitles[c]
}

// Key returns the short lowercase name used in flags and config
func (c Category) Key() string {
	if !c.Valid() {
		return ""
	}
	return categoryKeys[c]
}

func (c Category) String() string {
	return c.Title()
}

// ParseCategory accepts a title ("Grammar and Structure"), a key ("grammar")
// or a hyphenated title ("grammar-and-structure"), case-insensitively.
func ParseCategory(s string) (Category, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", " ")
	norm = strings.ReplaceAll(norm, "_", " ")

	for _, c := range Categories() {
		if norm == categoryKeys[c] || norm == strings.ToLower(categoryTitles[c]) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Request is one validated user submission
type Request struct {
	rawText  string
	category Category
}

// NewRequest trims rawText and validates both fields
func NewRequest(rawText string, category Category) (Request, error) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return Request{}, ErrEmptyText
	}
	if !category.Valid() {
		return Request{}, fmt.Errorf("%w: %d", ErrUnknownCategory, int(category))
	}
	return Request{rawText: text, category: category}, nil
}

// RawText returns the trimmed user input
func (r Request) RawText() string {
	return r.rawText
}

// Category returns the requested category
func (r Request) Category() Category {
	return r.category
}
