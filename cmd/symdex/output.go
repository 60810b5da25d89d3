package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fwojciec/symdex"
	"golang.org/x/net/html"
)

// printRows writes one line per row: label, target URL and signature.
// Labels and signatures carry HTML entities in generated shards.
func printRows(w io.Writer, rows []symdex.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No matches.")
		return
	}
	for _, r := range rows {
		label := html.UnescapeString(r.Occurrence.Label)
		if r.Occurrence.Tooltip == "" {
			fmt.Fprintf(w, "%s\t%s\n", label, r.Occurrence.URL)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", label, r.Occurrence.URL, html.UnescapeString(r.Occurrence.Tooltip))
	}
}

// jsonRow is the JSON shape of a result row.
type jsonRow struct {
	Key       string           `json:"key"`
	Kind      symdex.MatchKind `json:"kind"`
	Label     string           `json:"label"`
	URL       string           `json:"url"`
	Signature string           `json:"signature,omitempty"`
}

func printRowsJSON(w io.Writer, rows []symdex.Row) error {
	out := make([]jsonRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, jsonRow{
			Key:       r.Key,
			Kind:      r.Kind,
			Label:     html.UnescapeString(r.Occurrence.Label),
			URL:       r.Occurrence.URL,
			Signature: html.UnescapeString(r.Occurrence.Tooltip),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// offer replaces any undelivered value in ch with v, so a slow reader
// only ever sees the latest value.
func offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
