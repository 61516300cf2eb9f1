package parser

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/invopop/jsonschema"
)

// invalidJSONMessage is what the user sees for an undecodable reply
const invalidJSONMessage = "AI model returned an invalid JSON format. Please try again."

// Payload is the JSON object the structured prompt asks for
type Payload struct {
	Translation   string `json:"translation" jsonschema:"description=Urdu translation of the input"`
	Pronunciation string `json:"pronunciation" jsonschema:"description=Pronunciation guide for the English input"`
	Definition    string `json:"definition" jsonschema:"description=Simple definition with Urdu meanings and an example sentence"`
	Vocabulary    string `json:"vocabulary" jsonschema:"description=Usage notes with formality and difficulty level"`
	Grammar       string `json:"grammar" jsonschema:"description=Notable grammatical structures and their Urdu equivalents"`
	Corrections   string `json:"corrections" jsonschema:"description=Grammar or spelling corrections or a note that there are none"`
}

// ParseError reports a structured reply that could not be decoded. Its
// message is meant for the user; the cause and the raw reply are kept for
// logging.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return invalidJSONMessage
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is a ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// ParseStructured decodes the JSON object embedded in text. Markdown fences
// are dropped and everything outside the first "{" and the last "}" is
// ignored, which only works for a single flat object. Missing or blank
// fields are filled with NotAvailable.
func ParseStructured(text string) (ParsedSections, error) {
	raw, ok := cleanJSON(text)
	if !ok {
		return nil, &ParseError{Raw: text, Err: errNoObject}
	}

	var payload Payload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}

	sections := ParsedSections{
		FieldTranslation:   payload.Translation,
		FieldPronunciation: payload.Pronunciation,
		FieldDefinition:    payload.Definition,
		FieldVocabulary:    payload.Vocabulary,
		FieldGrammar:       payload.Grammar,
		FieldCorrections:   payload.Corrections,
	}
	for field, value := range sections {
		if strings.TrimSpace(value) == "" {
			sections[field] = NotAvailable
		}
	}
	return sections, nil
}

var errNoObject = errors.New("no JSON object in reply")

// cleanJSON returns the span from the first "{" to the last "}" after
// dropping fences; ok is false when there is no such span.
func cleanJSON(content string) (string, bool) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}

// Schema returns the JSON schema of Payload as a plain map, the form the
// completion backends send along with a structured request.
func Schema() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&Payload{})

	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}

	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, err
	}
	return schemaMap, nil
}
