// Package completion wraps the external text-completion service. A Backend
// talks to one provider (Gemini, OpenAI or Anthropic); a Gateway puts the
// throttle, a per-call timeout and a circuit breaker in front of it.
package completion
