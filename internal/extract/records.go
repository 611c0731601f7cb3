package extract

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// field is one CSV value plus whether the extract quoted it. COPY (FORMAT csv)
// reads a quoted empty field as an empty string and an unquoted one as NULL,
// so the flag has to survive the rewrite.
type field struct {
	value  string
	quoted bool
}

var (
	errBareQuote  = errors.New(`bare " in non-quoted field`)
	errExtraQuote = errors.New(`extraneous or missing " in quoted field`)
	errUnclosed   = errors.New("quoted field is never closed")
)

// recordReader splits RFC 4180 CSV into records of fields. Blank lines are
// skipped and every record must have as many fields as the first one.
type recordReader struct {
	br     *bufio.Reader
	width  int
	record []field
	sb     strings.Builder
}

func newRecordReader(r io.Reader) *recordReader {
	return &recordReader{br: bufio.NewReader(r), width: -1}
}

// Read returns the next record; the slice is reused by the following call.
func (r *recordReader) Read() ([]field, error) {
	if err := r.skipBlankLines(); err != nil {
		return nil, err
	}

	r.record = r.record[:0]
	for {
		f, last, err := r.readField()
		if err != nil {
			return nil, err
		}
		r.record = append(r.record, f)
		if last {
			break
		}
	}

	if r.width < 0 {
		r.width = len(r.record)
	} else if len(r.record) != r.width {
		return nil, fmt.Errorf("wrong number of fields: got %d, want %d", len(r.record), r.width)
	}
	return r.record, nil
}

func (r *recordReader) skipBlankLines() error {
	for {
		b, err := r.br.Peek(1)
		if err != nil {
			return err
		}
		switch b[0] {
		case '\n':
			r.br.Discard(1)
		case '\r':
			if next, _ := r.br.Peek(2); len(next) == 2 && next[1] == '\n' {
				r.br.Discard(2)
				continue
			}
			return nil
		default:
			return nil
		}
	}
}

// readField reads one field and reports whether it ended the record.
func (r *recordReader) readField() (field, bool, error) {
	c, err := r.br.ReadByte()
	if errors.Is(err, io.EOF) {
		return field{}, true, nil
	}
	if err != nil {
		return field{}, false, err
	}
	if c == '"' {
		return r.readQuoted()
	}
	r.br.UnreadByte()
	return r.readPlain()
}

func (r *recordReader) readPlain() (field, bool, error) {
	r.sb.Reset()
	for {
		c, err := r.br.ReadByte()
		if errors.Is(err, io.EOF) {
			return field{value: strings.TrimSuffix(r.sb.String(), "\r")}, true, nil
		}
		if err != nil {
			return field{}, false, err
		}
		switch c {
		case ',':
			return field{value: r.sb.String()}, false, nil
		case '\n':
			return field{value: strings.TrimSuffix(r.sb.String(), "\r")}, true, nil
		case '"':
			return field{}, false, errBareQuote
		default:
			r.sb.WriteByte(c)
		}
	}
}

func (r *recordReader) readQuoted() (field, bool, error) {
	r.sb.Reset()
	for {
		c, err := r.br.ReadByte()
		if errors.Is(err, io.EOF) {
			return field{}, false, errUnclosed
		}
		if err != nil {
			return field{}, false, err
		}
		if c != '"' {
			r.sb.WriteByte(c)
			continue
		}

		next, err := r.br.ReadByte()
		if errors.Is(err, io.EOF) {
			return field{value: r.sb.String(), quoted: true}, true, nil
		}
		if err != nil {
			return field{}, false, err
		}
		switch next {
		case '"':
			r.sb.WriteByte('"')
		case ',':
			return field{value: r.sb.String(), quoted: true}, false, nil
		case '\n':
			return field{value: r.sb.String(), quoted: true}, true, nil
		case '\r':
			if lf, err := r.br.ReadByte(); err == nil && lf == '\n' {
				return field{value: r.sb.String(), quoted: true}, true, nil
			}
			return field{}, false, errExtraQuote
		default:
			return field{}, false, errExtraQuote
		}
	}
}

// recordWriter writes records in the CSV dialect COPY expects. Values are
// quoted when they contain a delimiter, quote or line break, when they are the
// end-of-data marker \. and when an empty value was quoted in the extract.
type recordWriter struct {
	bw *bufio.Writer
}

func newRecordWriter(w io.Writer) *recordWriter {
	return &recordWriter{bw: bufio.NewWriter(w)}
}

func (w *recordWriter) Write(record []field) error {
	for i, f := range record {
		if i > 0 {
			w.bw.WriteByte(',')
		}
		if !needsQuotes(f) {
			w.bw.WriteString(f.value)
			continue
		}
		w.bw.WriteByte('"')
		w.bw.WriteString(strings.ReplaceAll(f.value, `"`, `""`))
		w.bw.WriteByte('"')
	}
	return w.bw.WriteByte('\n')
}

func (w *recordWriter) Flush() error {
	return w.bw.Flush()
}

func needsQuotes(f field) bool {
	if f.value == "" {
		return f.quoted
	}
	if f.value == `\.` {
		return true
	}
	if f.value[0] == ' ' || f.value[0] == '\t' {
		return true
	}
	return strings.ContainsAny(f.value, ",\"\r\n")
}
