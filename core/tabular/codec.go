package tabular

import (
	"fmt"
	"io"
	"strings"
)

const (
	separator = ','
	quote     = '"'
)

// Decode parses CSV text into a Table. The first row is the header; every later row
// is zipped against it positionally. Short rows are padded with "" and extra cells
// are dropped. Decode never fails.
func Decode(text string) Table {
	rows := scan(text)
	if len(rows) == 0 {
		return Table{}
	}

	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(header))
		for i, field := range header {
			if i < len(row) {
				rec[field] = row[i]
			} else {
				rec[field] = ""
			}
		}
		records = append(records, rec)
	}

	return Table{Header: header, Records: records}
}

// DecodeReader reads all of r and decodes it.
func DecodeReader(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read table: %w", err)
	}
	return Decode(string(data)), nil
}

// scan splits text into rows of cells using a two-mode (quoted / unquoted) scanner.
func scan(text string) [][]string {
	var (
		rows    [][]string
		row     []string
		cell    strings.Builder
		quoted  bool
		pending bool // a cell or row has been started and not yet flushed
	)

	endCell := func() {
		row = append(row, cell.String())
		cell.Reset()
	}
	endRow := func() {
		endCell()
		rows = append(rows, row)
		row = nil
		pending = false
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if quoted {
			if ch == quote {
				if i+1 < len(text) && text[i+1] == quote {
					cell.WriteByte(quote)
					i++
					continue
				}
				quoted = false
				continue
			}
			cell.WriteByte(ch)
			continue
		}

		switch ch {
		case quote:
			quoted = true
			pending = true
		case separator:
			endCell()
			pending = true
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRow()
		case '\n':
			endRow()
		default:
			cell.WriteByte(ch)
			pending = true
		}
	}

	// Unterminated quotes close implicitly at end of input.
	if pending || cell.Len() > 0 || len(row) > 0 {
		endRow()
	}

	return rows
}

// Encode renders header and records as CSV text with a single trailing line break.
// Values are looked up by header name; absent values encode as "".
func Encode(header []string, records []Record) string {
	var b strings.Builder
	writeRow(&b, header)
	for _, rec := range records {
		values := make([]string, len(header))
		for i, field := range header {
			values[i] = rec[field]
		}
		writeRow(&b, values)
	}
	return b.String()
}

// EncodeWriter writes the encoded table to w.
func EncodeWriter(w io.Writer, header []string, records []Record) error {
	if _, err := io.WriteString(w, Encode(header, records)); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

func writeRow(b *strings.Builder, values []string) {
	for i, v := range values {
		if i > 0 {
			b.WriteByte(separator)
		}
		b.WriteString(escape(v))
	}
	b.WriteByte('\n')
}

// escape quotes v if and only if it contains the separator, a quote or a line break.
func escape(v string) string {
	if !strings.ContainsAny(v, ",\"\r\n") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
