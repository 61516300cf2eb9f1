package processor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"codeberg.org/snonux/lughat/internal/audio"
	"codeberg.org/snonux/lughat/internal/pipeline"
	"codeberg.org/snonux/lughat/internal/prompt"
)

const interactiveHelp = `Type English text to get the selected section. Commands:
  :category <name>   switch section (translation, pronunciation, definition,
                     vocabulary, grammar, corrections, synonyms, conversation)
  :speed <speed>     narration speed for the pronunciation guide (normal or slow)
  :help              show this help
  end                finish the session`

// RunInteractive reads texts line by line from in until "end" or EOF.
// Failed requests are reported and the session continues.
func (p *Processor) RunInteractive(ctx context.Context, in io.Reader) error {
	category := p.settings.Category
	speed := p.settings.Speed

	fmt.Fprintf(p.out, "lughat: English to Urdu learning assistant\n%s\n", interactiveHelp)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(p.out, "\n[%s] > ", category.Title())
		if !scanner.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, ":"):
			p.command(line, &category, &speed)
			continue
		}

		out, err := p.runner.Run(ctx, pipeline.Input{Text: line, Category: category, Speed: speed})
		if errors.Is(err, pipeline.ErrSessionEnded) {
			fmt.Fprintln(p.out, "Goodbye!")
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(p.out, "Error: %s\n", userMessage(err))
			continue
		}
		printOutput(p.out, out)
	}

	fmt.Fprintln(p.out)
	return scanner.Err()
}

func (p *Processor) command(line string, category *prompt.Category, speed *audio.Speed) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "category", "c":
		c, err := prompt.ParseCategory(arg)
		if err != nil {
			fmt.Fprintf(p.out, "Error: %v\n", err)
			return
		}
		*category = c
		fmt.Fprintf(p.out, "Category: %s\n", c.Title())
	case "speed", "s":
		s, err := audio.ParseSpeed(arg)
		if err != nil {
			fmt.Fprintf(p.out, "Error: %v\n", err)
			return
		}
		*speed = s
		fmt.Fprintf(p.out, "Speed: %s\n", s)
	case "help", "h":
		fmt.Fprintln(p.out, interactiveHelp)
	default:
		fmt.Fprintf(p.out, "Unknown command %q, type :help\n", line)
	}
}
