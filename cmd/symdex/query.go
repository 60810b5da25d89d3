package main

import (
	"fmt"

	"github.com/fwojciec/symdex"
	"github.com/fwojciec/symdex/session"
)

// Run executes the query command.
func (c *QueryCmd) Run(deps *Dependencies) error {
	if c.Limit > 0 {
		ranker := *deps.Ranker
		ranker.Limit = c.Limit
		deps.Ranker = &ranker
	}

	s := deps.NewSession(0)
	defer s.Close()

	results := make(chan session.Results, 1)
	failures := make(chan error, 1)
	s.OnResultsReady = func(r session.Results) { offer(results, r) }
	s.OnSearchFailed = func(err error) { offer(failures, err) }

	s.QueryChanged(c.Query)

	select {
	case <-deps.Ctx.Done():
		return deps.Ctx.Err()
	case err := <-failures:
		fmt.Fprintf(deps.Stderr, "error: %s\n", symdex.ErrorMessage(err))
		return err
	case res := <-results:
		deps.Logger.Debug("query",
			"session", s.ID,
			"query", res.Query,
			"generation", res.Generation,
			"rows", len(res.Rows),
		)
		if c.JSON {
			return printRowsJSON(deps.Stdout, res.Rows)
		}
		printRows(deps.Stdout, res.Rows)
		return nil
	}
}
