// Package doxygen reads and writes the search index shards Doxygen
// generates (search/<index>_<n>.js). A shard is a named table literal:
//
//	var searchData=
//	[
//	  ['cut_5fpath',['cut_path',['../namespacevg.html#a0456e',1,'vg::cut_path(...)']]],
//	  ...
//	];
//
// Entries may also use the flat layout [key,[[label,url,tooltip],...]].
package doxygen

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/symdex"
)

// DefaultName is the variable Doxygen assigns shard tables to.
const DefaultName = "searchData"

// Ensure Codec implements symdex.ShardDecoder at compile time.
var _ symdex.ShardDecoder = (*Codec)(nil)

// Codec decodes shard files.
type Codec struct{}

// NewCodec creates a new Codec.
func NewCodec() *Codec {
	return &Codec{}
}

// DecodeShard implements symdex.ShardDecoder.
func (c *Codec) DecodeShard(id symdex.BucketID, data []byte) (*symdex.Shard, error) {
	return Decode(id, string(data))
}

// Table is a decoded shard file before shard invariants are applied.
type Table struct {
	Name    string
	Entries []symdex.Entry

	// Records holds the file record index of each entry.
	Records     []int
	Diagnostics []symdex.Diagnostic
}

// Parse reads a shard file into a Table. Records of the wrong shape are
// skipped and reported as diagnostics. Input that is not a named table
// literal returns EINVALID.
func Parse(id symdex.BucketID, src string) (*Table, error) {
	s := &scanner{src: src}

	kw, err := s.ident()
	if err != nil || (kw != "var" && kw != "let" && kw != "const") {
		return nil, symdex.Errorf(symdex.EINVALID, "%s: not a table literal", id)
	}
	name, err := s.ident()
	if err != nil {
		return nil, symdex.Errorf(symdex.EINVALID, "%s: %v", id, err)
	}
	if err := s.expect('='); err != nil {
		return nil, symdex.Errorf(symdex.EINVALID, "%s: %v", id, err)
	}
	records, err := s.array()
	if err != nil {
		return nil, symdex.Errorf(symdex.EINVALID, "%s: %v", id, err)
	}
	s.skipSpace()
	if s.peek() == ';' {
		s.pos++
	}
	s.skipSpace()
	if s.pos != len(s.src) {
		return nil, symdex.Errorf(symdex.EINVALID, "%s: trailing data at offset %d", id, s.pos)
	}

	t := &Table{Name: name, Entries: make([]symdex.Entry, 0, len(records))}
	for i, rec := range records {
		entry, reason := parseRecord(rec)
		if reason != "" {
			t.Diagnostics = append(t.Diagnostics, symdex.Diagnostic{
				Bucket: id,
				Index:  i,
				Key:    entry.Key,
				Reason: reason,
			})
			continue
		}
		t.Entries = append(t.Entries, entry)
		t.Records = append(t.Records, i)
	}
	return t, nil
}

// Decode parses a shard file and builds a shard from it.
func Decode(id symdex.BucketID, src string) (*symdex.Shard, error) {
	t, err := Parse(id, src)
	if err != nil {
		return nil, err
	}
	return t.Shard(id), nil
}

// Shard builds a shard from the table. Diagnostics refer to file records.
func (t *Table) Shard(id symdex.BucketID) *symdex.Shard {
	return symdex.NewShardWithDiagnostics(id, t.Entries, t.Records, t.Diagnostics)
}

// parseRecord converts one [key, body] record. A non-empty reason means
// the record is malformed.
func parseRecord(rec any) (symdex.Entry, string) {
	pair, ok := rec.([]any)
	if !ok || len(pair) != 2 {
		return symdex.Entry{}, "record is not a [key, occurrences] pair"
	}
	if pair[0] == nil {
		return symdex.Entry{}, "missing key"
	}
	key, ok := pair[0].(string)
	if !ok {
		return symdex.Entry{}, "key is not a string"
	}
	entry := symdex.Entry{Key: key}

	body, ok := pair[1].([]any)
	if !ok || len(body) == 0 {
		return entry, "occurrences are not a list"
	}

	// Grouped layout: [label, [url, flag, tooltip?], ...]
	if label, ok := body[0].(string); ok {
		for _, item := range body[1:] {
			occ, reason := parseGrouped(label, item)
			if reason != "" {
				return entry, reason
			}
			entry.Occurrences = append(entry.Occurrences, occ)
		}
		return entry, ""
	}

	// Flat layout: [[label, url, tooltip?], ...]
	for _, item := range body {
		occ, reason := parseFlat(item)
		if reason != "" {
			return entry, reason
		}
		entry.Occurrences = append(entry.Occurrences, occ)
	}
	return entry, ""
}

func parseGrouped(label string, item any) (symdex.Occurrence, string) {
	fields, ok := item.([]any)
	if !ok || len(fields) < 2 || len(fields) > 3 {
		return symdex.Occurrence{}, "occurrence is not [url, flag, tooltip?]"
	}
	url, ok := fields[0].(string)
	if !ok || url == "" {
		return symdex.Occurrence{}, "occurrence url is not a string"
	}
	flag, ok := fields[1].(int)
	if !ok {
		return symdex.Occurrence{}, "occurrence flag is not a number"
	}
	occ := symdex.Occurrence{Label: label, URL: url, TargetParent: flag != 0}
	if len(fields) == 3 {
		if occ.Tooltip, ok = fields[2].(string); !ok {
			return symdex.Occurrence{}, "occurrence tooltip is not a string"
		}
	}
	return occ, ""
}

func parseFlat(item any) (symdex.Occurrence, string) {
	fields, ok := item.([]any)
	if !ok || len(fields) < 2 || len(fields) > 3 {
		return symdex.Occurrence{}, "occurrence is not [label, url, tooltip?]"
	}
	var occ symdex.Occurrence
	if occ.Label, ok = fields[0].(string); !ok {
		return symdex.Occurrence{}, "occurrence label is not a string"
	}
	if occ.URL, ok = fields[1].(string); !ok || occ.URL == "" {
		return symdex.Occurrence{}, "occurrence url is not a string"
	}
	if len(fields) == 3 {
		if occ.Tooltip, ok = fields[2].(string); !ok {
			return symdex.Occurrence{}, "occurrence tooltip is not a string"
		}
	}
	return occ, ""
}

// Encode writes entries in Doxygen's grouped layout, byte for byte as the
// generator does. Entries are written in the order given. The grouped
// layout has one label per record, so an entry whose occurrences change
// label is written as one record per run of equal labels. An empty name
// means DefaultName.
func Encode(w io.Writer, name string, entries []symdex.Entry) error {
	if name == "" {
		name = DefaultName
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "var %s=\n[\n", name)
	first := true
	for _, e := range entries {
		if len(e.Occurrences) == 0 {
			return symdex.Errorf(symdex.EINVALID, "entry %q has no occurrences", e.Key)
		}
		for start := 0; start < len(e.Occurrences); {
			end := start + 1
			for end < len(e.Occurrences) && e.Occurrences[end].Label == e.Occurrences[start].Label {
				end++
			}
			if !first {
				bw.WriteString(",\n")
			}
			first = false
			writeRecord(bw, e.Key, e.Occurrences[start:end])
			start = end
		}
	}
	if !first {
		bw.WriteByte('\n')
	}
	bw.WriteString("];\n")
	return bw.Flush()
}

// writeRecord writes occs, which share one label, as a grouped record.
func writeRecord(bw *bufio.Writer, key string, occs []symdex.Occurrence) {
	bw.WriteString("  [")
	writeString(bw, key)
	bw.WriteString(",[")
	writeString(bw, occs[0].Label)
	for _, o := range occs {
		bw.WriteString(",[")
		writeString(bw, o.URL)
		if o.TargetParent {
			bw.WriteString(",1")
		} else {
			bw.WriteString(",0")
		}
		if o.Tooltip != "" {
			bw.WriteByte(',')
			writeString(bw, o.Tooltip)
		}
		bw.WriteByte(']')
	}
	bw.WriteString("]]")
}

var stringEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)

func writeString(w *bufio.Writer, s string) {
	w.WriteByte('\'')
	stringEscaper.WriteString(w, s)
	w.WriteByte('\'')
}
