// Package audio renders English text to speech. OpenAI TTS is the primary
// provider; espeak-ng can serve as a local fallback. A Renderer normalizes
// the text and writes one clip per request.
package audio
