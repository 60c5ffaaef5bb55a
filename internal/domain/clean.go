package domain

import (
	"sort"
	"strings"
)

// CleanResult holds the rows that survive cleaning plus what was dropped.
type CleanResult struct {
	Records    []Record
	Failures   []Failure
	Duplicates int
}

// Clean drops failed parses and rows that repeat an earlier row in every field.
// Surviving rows keep their input order.
func Clean(results []Result) CleanResult {
	var out CleanResult
	seen := make(map[string]struct{}, len(results))

	for _, res := range results {
		if !res.OK() {
			out.Failures = append(out.Failures, *res.Failure)
			continue
		}
		key := rowKey(res.Record)
		if _, dup := seen[key]; dup {
			out.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		out.Records = append(out.Records, res.Record)
	}
	return out
}

// rowKey builds a stable identity for a record from its sorted fields.
func rowKey(r Record) string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('\x1f')
		b.WriteString(r[k])
		b.WriteByte('\x1e')
	}
	return b.String()
}
