// Package batch reads learner inputs from a file, one request per line.
package batch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"codeberg.org/snonux/lughat/internal/audio"
	"codeberg.org/snonux/lughat/internal/pipeline"
	"codeberg.org/snonux/lughat/internal/prompt"
)

// Entry is one line of a batch file
type Entry struct {
	Line     int
	Text     string
	Category prompt.Category
}

// ReadBatchFile reads entries from a file. Supported line formats:
//   - "text" uses defaultCategory
//   - "text = category" where category is a title or key ("grammar")
//
// Blank lines and lines starting with "#" are skipped. The category is taken
// after the last "=", so text may contain "=" as long as a category follows.
func ReadBatchFile(filename string, defaultCategory prompt.Category) ([]Entry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := parseLine(line, defaultCategory)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", filename, lineNo, err)
		}
		entry.Line = lineNo
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	return entries, nil
}

func parseLine(line string, defaultCategory prompt.Category) (Entry, error) {
	idx := strings.LastIndex(line, "=")
	if idx < 0 {
		return Entry{Text: line, Category: defaultCategory}, nil
	}

	text := strings.TrimSpace(line[:idx])
	if text == "" {
		return Entry{}, prompt.ErrEmptyText
	}
	category, err := prompt.ParseCategory(line[idx+1:])
	if err != nil {
		return Entry{}, err
	}
	return Entry{Text: text, Category: category}, nil
}

// Summary counts the outcome of a batch run
type Summary struct {
	Total     int
	Processed int
	Failed    int
}

// Runner runs one pipeline request. *pipeline.Pipeline implements it.
type Runner interface {
	Run(ctx context.Context, in pipeline.Input) (*pipeline.Output, error)
}

// Handler receives the output or error of one entry
type Handler func(entry Entry, out *pipeline.Output, err error)

// Run sends every entry through the pipeline in order. Failed entries are
// reported to handle and counted; the run continues. Cancelling ctx stops
// before the next entry and returns ctx.Err().
func Run(ctx context.Context, p Runner, entries []Entry, speed audio.Speed, handle Handler) (Summary, error) {
	summary := Summary{Total: len(entries)}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		out, err := p.Run(ctx, pipeline.Input{Text: entry.Text, Category: entry.Category, Speed: speed})
		if errors.Is(err, pipeline.ErrSessionEnded) {
			// "end" only ends interactive sessions
			err = fmt.Errorf("line %d: %q is reserved for ending a session", entry.Line, entry.Text)
		}
		if err != nil {
			summary.Failed++
		} else {
			summary.Processed++
		}
		if handle != nil {
			handle(entry, out, err)
		}
	}
	return summary, nil
}
