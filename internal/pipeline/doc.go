// Package pipeline runs one learner request end to end: prompt, cached or
// throttled completion, section extraction and, for the pronunciation
// guide, speech synthesis.
package pipeline
