package importer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/angelcm/horizon-crm/internal/apperr"
)

// ParseCSV reads a lead sheet. Fields are split on commas outside double
// quotes; a quote only toggles quoting and is never kept, so escaped quotes
// ("") are not supported. The first line is the header row.
func ParseCSV(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var rows [][]string
	line := 0
	for sc.Scan() {
		line++
		fields, ok := splitLine(sc.Text())
		if !ok {
			return nil, apperr.New(apperr.CodeMalformedImport, fmt.Sprintf("line %d: unterminated quote", line))
		}
		rows = append(rows, fields)
	}
	if err := sc.Err(); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeMalformedImport, "read csv")
	}
	return fromRows(rows)
}

func splitLine(s string) ([]string, bool) {
	var (
		out      []string
		cur      strings.Builder
		inQuotes bool
	)
	for _, ch := range s {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(ch)
		}
	}
	out = append(out, strings.TrimSpace(cur.String()))
	return out, !inQuotes
}
