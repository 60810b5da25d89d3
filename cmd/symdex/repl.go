package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/symdex"
	"github.com/fwojciec/symdex/session"
	"github.com/peterh/liner"
)

// Prompter reads one line of input.
type Prompter interface {
	Prompt(prompt string) (string, error)
}

// Run executes the repl command.
func (c *ReplCmd) Run(deps *Dependencies) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	return RunREPL(deps, line, c.Limit)
}

// RunREPL reads queries from p until EOF or ":q". Each line is fed to one
// session a character at a time, as if typed, and the results for the full
// line are printed.
func RunREPL(deps *Dependencies, p Prompter, limit int) error {
	if limit > 0 {
		ranker := *deps.Ranker
		ranker.Limit = limit
		deps.Ranker = &ranker
	}

	s := deps.NewSession(deps.Config.Search.Debounce)
	defer s.Close()

	results := make(chan session.Results, 1)
	failures := make(chan error, 1)
	s.OnResultsReady = func(r session.Results) { offer(results, r) }
	s.OnSearchFailed = func(err error) { offer(failures, err) }

	fmt.Fprintf(deps.Stdout, "Type an identifier to search, :q to quit.\n")
	for {
		text, err := p.Prompt("symdex> ")
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return nil
		}
		if err != nil {
			return err
		}
		if text == ":q" || text == ":quit" {
			return nil
		}
		if h, ok := p.(interface{ AppendHistory(string) }); ok && strings.TrimSpace(text) != "" {
			h.AppendHistory(text)
		}

		typeInto(s, text)

		if err := awaitLine(deps, s, text, results, failures); err != nil {
			return err
		}
	}
}

// typeInto feeds text to the session one character at a time.
func typeInto(s *session.Session, text string) {
	if text == "" {
		s.QueryChanged("")
		return
	}
	for i := range text {
		if i > 0 {
			s.QueryChanged(text[:i])
		}
	}
	s.QueryChanged(text)
}

// awaitLine prints the results or failure of the query for text. Outcomes
// of earlier prefixes are skipped.
func awaitLine(deps *Dependencies, s *session.Session, text string, results <-chan session.Results, failures <-chan error) error {
	for {
		select {
		case <-deps.Ctx.Done():
			return deps.Ctx.Err()
		case res := <-results:
			if res.Query != text {
				continue
			}
			printRows(deps.Stdout, res.Rows)
			return nil
		case err := <-failures:
			if snap := s.Snapshot(); snap.Query != text || snap.State != session.Failed {
				continue
			}
			fmt.Fprintf(deps.Stdout, "error: %s\n", symdex.ErrorMessage(err))
			return nil
		}
	}
}
