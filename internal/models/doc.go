// Package models lists the completion and speech models an API key can use,
// for Gemini, OpenAI and Anthropic.
package models
