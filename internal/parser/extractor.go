package parser

import (
	"strings"

	"codeberg.org/snonux/lughat/internal/prompt"
)

// Extractor pulls the text of one category out of a completion reply
type Extractor interface {
	Section(text string, category prompt.Category) (string, error)
}

// SectionsExtractor is implemented by extractors that can return every
// section of a reply at once.
type SectionsExtractor interface {
	Extractor
	Sections(text string) (ParsedSections, error)
}

// ForStrategy returns the extractor matching the reply shape a prompt
// strategy asks for.
func ForStrategy(strategy prompt.Strategy) Extractor {
	switch strategy {
	case prompt.StrategyJSON:
		return StructuredJSONExtractor{}
	case prompt.StrategyPerCategory:
		return WholeReplyExtractor{}
	}
	return HeadingSplitExtractor{}
}

// HeadingSplitExtractor reads replies with "###" section headings
type HeadingSplitExtractor struct{}

// Section never fails; a missing section yields SectionNotFound
func (HeadingSplitExtractor) Section(text string, category prompt.Category) (string, error) {
	if !category.Valid() {
		return "", prompt.ErrUnknownCategory
	}
	return ExtractSection(text, category.Title()), nil
}

// Sections extracts the six omnibus sections keyed by field name
func (HeadingSplitExtractor) Sections(text string) (ParsedSections, error) {
	sections := make(ParsedSections, len(Fields()))
	for _, category := range prompt.OmnibusSections() {
		sections[FieldFor(category)] = ExtractSection(text, category.Title())
	}
	return sections, nil
}

// StructuredJSONExtractor reads replies holding one JSON object
type StructuredJSONExtractor struct{}

// Section returns a *ParseError when the reply cannot be decoded
func (StructuredJSONExtractor) Section(text string, category prompt.Category) (string, error) {
	field := FieldFor(category)
	if field == "" {
		return "", prompt.ErrUnknownCategory
	}

	sections, err := ParseStructured(text)
	if err != nil {
		return "", err
	}
	return sections[field], nil
}

// Sections decodes every field of the reply
func (StructuredJSONExtractor) Sections(text string) (ParsedSections, error) {
	return ParseStructured(text)
}

// WholeReplyExtractor is for single-category prompts where the whole reply
// is the section.
type WholeReplyExtractor struct{}

// Section returns the trimmed reply, or SectionNotFound when it is blank
func (WholeReplyExtractor) Section(text string, category prompt.Category) (string, error) {
	if !category.Valid() {
		return "", prompt.ErrUnknownCategory
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return SectionNotFound, nil
	}
	return text, nil
}
