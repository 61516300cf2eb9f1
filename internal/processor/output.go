package processor

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"codeberg.org/snonux/lughat/internal/completion"
	"codeberg.org/snonux/lughat/internal/parser"
	"codeberg.org/snonux/lughat/internal/pipeline"
)

func printOutput(w io.Writer, out *pipeline.Output) {
	heading := out.Category.Title()
	if out.Cached {
		heading += " (cached)"
	}
	fmt.Fprintf(w, "\n### %s\n%s\n", heading, out.Section)

	if out.AudioErr != nil {
		fmt.Fprintf(w, "\nAudio unavailable: %s\n", userMessage(out.AudioErr))
	} else if out.AudioPath != "" {
		fmt.Fprintf(w, "\nAudio: %s\n", out.AudioPath)
	}
}

// userMessage turns pipeline errors into something a learner can act on
func userMessage(err error) string {
	var upstream *completion.UpstreamError
	var parseErr *parser.ParseError
	switch {
	case errors.As(err, &parseErr):
		return parseErr.Error()
	case errors.As(err, &upstream) && upstream.Timeout():
		return "the language model did not answer in time, please try again"
	case errors.As(err, &upstream):
		return "the language model is unavailable: " + upstream.Message
	}
	return strings.TrimSpace(err.Error())
}
