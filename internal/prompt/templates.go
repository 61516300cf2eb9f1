package prompt

// placeholder is substituted with the user's text exactly once
const placeholder = "{text}"

const omnibusTemplate = `You are an English language translation expert. Your goal is to provide accurate, context-sensitive Urdu translation of English words and sentences while helping learners understand and apply the content effectively.

The learner's input is:
"{text}"

Answer in exactly six sections, in this order. Start every section with a line of the form "### <section name>" using these names verbatim and no others:

### Translation
Translate the input into Urdu. Keep the meaning, match the tone of the original and use culturally appropriate expressions.

### Pronunciation Guide
Explain how to pronounce the English input, syllable by syllable, for a learner who reads Urdu.

### Definition
Give a simple definition with Urdu meanings, two or three synonyms and antonyms with Urdu meanings, one example sentence, and a Roman Urdu transliteration.

### Vocabulary Analysis
Describe usage, formality and difficulty level (beginner, intermediate or advanced).

### Grammar and Structure
Identify notable grammatical structures in the input and explain how they are expressed in Urdu.

### Corrections
Point out grammar, spelling or sentence structure errors in the input and suggest improvements. Say so if there are none.

Do not use "###" anywhere except at the start of the six section headings. Keep the language simple and the tone encouraging.`

const jsonTemplate = `You are an English language translation expert helping a learner whose first language is Urdu.

The learner's input is:
"{text}"

Return ONLY a single JSON object, with no markdown fences and no text before or after it, using exactly these string fields:
{
  "translation": "Urdu translation of the input",
  "pronunciation": "pronunciation guide for the English input",
  "definition": "simple definition with Urdu meanings, synonyms, antonyms and an example sentence",
  "vocabulary": "usage, formality and difficulty level",
  "grammar": "notable grammatical structures and how they appear in Urdu",
  "corrections": "grammar or spelling corrections, or a note that there are none"
}`

var perCategoryTemplates = map[Category]string{
	Translation: `Translate the following English text into Urdu. Return only the Urdu translation, nothing else.

"{text}"`,
	PronunciationGuide: `Give a short pronunciation guide for the following English text: split it into syllables, mark the stressed syllable and describe each sound for an Urdu speaker. Return only the guide, without introductions.

"{text}"`,
	Definition: `Define the following English text in simple English, then give its Urdu meaning and one example sentence. Return only that content, without introductions.

"{text}"`,
	VocabularyAnalysis: `Analyse the vocabulary of the following English text: usage, formality and difficulty level (beginner, intermediate or advanced). Return only the analysis, without introductions.

"{text}"`,
	GrammarAndStructure: `Identify the notable grammatical structures in the following English text and explain how each is expressed in Urdu. Return only the explanation, without introductions.

"{text}"`,
	Corrections: `Check the following English text for grammar, spelling and sentence structure errors and list corrected versions. If it has no errors, say "No corrections needed." Return nothing else.

"{text}"`,
	SynonymsAndAntonyms: `List three synonyms and three antonyms of the following English text, each with its Urdu meaning. Return only the two lists.

"{text}"`,
	Conversation: `Write a short, natural three-line English dialogue that uses the following English text, followed by its Urdu translation. Return only the dialogue and translation.

"{text}"`,
}
