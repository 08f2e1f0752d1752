package migration

import (
	"bytes"
	"strings"
)

// The dialect is fixed: comma separator, double-quote quoting, doubled quotes
// inside quoted fields, "\n" between records and no trailing newline.

// SerializeCSV encodes rows, preceded by Header. Output is deterministic.
func SerializeCSV(rows []Row) []byte {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, Header)
	for _, r := range rows {
		records = append(records, r.fields())
	}
	return encodeRecords(records)
}

func encodeRecords(records [][]string) []byte {
	var buf bytes.Buffer
	for i, rec := range records {
		if i > 0 {
			buf.WriteByte('\n')
		}
		for j, field := range rec {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(escapeField(field))
		}
	}
	return buf.Bytes()
}

func escapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ParseCSV splits text into records. Quoted fields may span lines and contain
// doubled quotes; CRLF line endings are accepted and blank lines are skipped.
func ParseCSV(text string) [][]string {
	var (
		records  [][]string
		record   []string
		field    strings.Builder
		inQuotes bool
		quoted   bool // current record contained a quoted field
	)

	endField := func() {
		record = append(record, field.String())
		field.Reset()
	}
	endRecord := func() {
		endField()
		if len(record) == 1 && record[0] == "" && !quoted {
			// blank line
		} else {
			records = append(records, record)
		}
		record = nil
		quoted = false
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inQuotes {
			if c == '"' {
				if i+1 < len(text) && text[i+1] == '"' {
					field.WriteByte('"')
					i++
				} else {
					inQuotes = false
				}
				continue
			}
			field.WriteByte(c)
			continue
		}

		switch c {
		case '"':
			inQuotes = true
			quoted = true
		case ',':
			endField()
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRecord()
		case '\n':
			endRecord()
		default:
			field.WriteByte(c)
		}
	}

	if field.Len() > 0 || len(record) > 0 || quoted {
		endRecord()
	}

	return records
}
