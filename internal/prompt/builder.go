package prompt

import (
	"fmt"
	"strings"
)

// Strategy selects the shape of the prompt and therefore of the reply
type Strategy string

const (
	// StrategyOmnibus asks for every section under "###" headings in one reply
	StrategyOmnibus Strategy = "omnibus"
	// StrategyPerCategory asks only for the selected category
	StrategyPerCategory Strategy = "category"
	// StrategyJSON asks for a single JSON object with six fixed fields
	StrategyJSON Strategy = "json"
)

// ParseStrategy validates a strategy name from flags or config
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyOmnibus:
		return StrategyOmnibus, nil
	case StrategyPerCategory, "per-category":
		return StrategyPerCategory, nil
	case StrategyJSON:
		return StrategyJSON, nil
	}
	return "", fmt.Errorf("unknown prompt strategy: %s", s)
}

// Builder renders prompts for one strategy
type Builder struct {
	strategy Strategy
}

// NewBuilder creates a builder; an empty strategy means omnibus
func NewBuilder(strategy Strategy) *Builder {
	if strategy == "" {
		strategy = StrategyOmnibus
	}
	return &Builder{strategy: strategy}
}

// Strategy returns the builder's strategy
func (b *Builder) Strategy() Strategy {
	return b.strategy
}

// Build renders the prompt for req
func (b *Builder) Build(req Request) (string, error) {
	if req.RawText() == "" {
		return "", ErrEmptyText
	}

	tmpl, err := b.template(req.Category())
	if err != nil {
		return "", err
	}
	return render(tmpl, req.RawText()), nil
}

// BuildText validates rawText and category and renders the prompt
func (b *Builder) BuildText(rawText string, category Category) (string, error) {
	req, err := NewRequest(rawText, category)
	if err != nil {
		return "", err
	}
	return b.Build(req)
}

func (b *Builder) template(category Category) (string, error) {
	switch b.strategy {
	case StrategyOmnibus:
		return omnibusTemplate, nil
	case StrategyJSON:
		return jsonTemplate, nil
	case StrategyPerCategory:
		tmpl, ok := perCategoryTemplates[category]
		if !ok {
			return "", fmt.Errorf("%w: %d", ErrUnknownCategory, int(category))
		}
		return tmpl, nil
	}
	return "", fmt.Errorf("unknown prompt strategy: %s", b.strategy)
}

// render substitutes the placeholder once. Braces in the user's text are
// left untouched.
func render(tmpl, text string) string {
	return strings.Replace(tmpl, placeholder, text, 1)
}

// OmnibusSections lists the headings the omnibus prompt asks for, in order
func OmnibusSections() []Category {
	return []Category{
		Translation,
		PronunciationGuide,
		Definition,
		VocabularyAnalysis,
		GrammarAndStructure,
		Corrections,
	}
}
