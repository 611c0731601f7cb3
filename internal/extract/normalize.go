package extract

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vvka-141/dwload/internal/catalog"
	"github.com/vvka-141/dwload/pkg/dwload"
)

const utf8BOM = "\ufeff"

// Project writes a header of columns followed by each src row projected by
// header name into that order, applying rules on the way. Extract columns not
// listed in columns are dropped. Values without a rule keep their quoting, so
// a quoted empty string stays distinct from a missing value.
func Project(src io.Reader, dst io.Writer, columns []string, rules []catalog.Rule) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("no destination columns: %w", dwload.ErrInvalidConfig)
	}

	r := newRecordReader(src)
	record, err := r.Read()
	if errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("extract is empty, a header row is required: %w", dwload.ErrMalformedExtract)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read header: %v: %w", err, dwload.ErrMalformedExtract)
	}

	position := make(map[string]int, len(record))
	for i, f := range record {
		name := f.value
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if _, dup := position[name]; !dup {
			position[name] = i
		}
	}

	var missing []string
	index := make([]int, len(columns))
	for i, col := range columns {
		pos, ok := position[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		index[i] = pos
	}
	if len(missing) > 0 {
		return 0, fmt.Errorf("header lacks column(s) %s: %w", strings.Join(missing, ", "), dwload.ErrMalformedExtract)
	}

	fix := make([]coercer, len(columns))
	for _, rule := range rules {
		c, err := coercerFor(rule.Coercion)
		if err != nil {
			return 0, fmt.Errorf("rule for %s: %v: %w", rule.Column, err, dwload.ErrInvalidConfig)
		}
		applied := false
		for i, col := range columns {
			if col == rule.Column {
				fix[i] = c
				applied = true
			}
		}
		if !applied {
			return 0, fmt.Errorf("rule column %s is not a destination column: %w", rule.Column, dwload.ErrInvalidConfig)
		}
	}

	w := newRecordWriter(dst)
	out := make([]field, len(columns))
	for i, col := range columns {
		out[i] = field{value: col}
	}
	if err := w.Write(out); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	var rows int64
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("row %d: %v: %w", rows+1, err, dwload.ErrMalformedExtract)
		}
		for i, pos := range index {
			f := record[pos]
			if fix[i] != nil {
				// coerced values are bare so Absent stays NULL
				f = field{value: fix[i](f.value)}
			}
			out[i] = f
		}
		if err := w.Write(out); err != nil {
			return rows, fmt.Errorf("failed to write row %d: %w", rows+1, err)
		}
		rows++
	}

	if err := w.Flush(); err != nil {
		return rows, fmt.Errorf("failed to flush output: %w", err)
	}
	return rows, nil
}
