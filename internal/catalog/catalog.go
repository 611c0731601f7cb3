package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/dwload/pkg/dwload"
)

// Kind distinguishes dimension tables from fact tables.
type Kind string

const (
	KindDimension Kind = "dimension"
	KindFact      Kind = "fact"
)

// Coercion names a value rewrite the normalizer applies to one column.
type Coercion string

// NullableInt truncates finite numbers to integers and blanks everything else.
const NullableInt Coercion = "nullable-int"

// Rule binds a coercion to an extract column.
type Rule struct {
	Column   string
	Coercion Coercion
}

// Table is one destination table and its ordered column mapping.
type Table struct {
	Name    string
	Kind    Kind
	Columns []string
	Rules   []Rule
}

// FileName is the extract file name for the table.
func (t Table) FileName() string {
	return t.Name + dwload.ExtractExtension
}

// Domain is a group of tables replaced together in one transaction.
type Domain struct {
	Name       string
	Dimensions []Table
	Facts      []Table
}

// Tables returns dimensions followed by facts, the load order.
func (d Domain) Tables() []Table {
	out := make([]Table, 0, len(d.Dimensions)+len(d.Facts))
	out = append(out, d.Dimensions...)
	return append(out, d.Facts...)
}

// TruncateOrder returns facts before dimensions so dependents are listed
// ahead of the tables they reference.
func (d Domain) TruncateOrder() []Table {
	out := make([]Table, 0, len(d.Dimensions)+len(d.Facts))
	out = append(out, d.Facts...)
	return append(out, d.Dimensions...)
}

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidIdentifier reports whether name is safe to use as a SQL identifier.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// Qualified returns the quoted schema.table reference.
func Qualified(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}

// QuotedColumns returns the table's columns quoted and comma separated.
func (t Table) QuotedColumns() string {
	quoted := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}

// Validate checks every identifier and structural constraint of the domain.
func (d Domain) Validate() error {
	var errs []error

	if !ValidIdentifier(d.Name) {
		errs = append(errs, fmt.Errorf("domain name %q: %w", d.Name, dwload.ErrInvalidConfig))
	}

	seen := make(map[string]bool)
	for _, t := range d.Tables() {
		if !ValidIdentifier(t.Name) {
			errs = append(errs, fmt.Errorf("table name %q: %w", t.Name, dwload.ErrInvalidConfig))
		}
		if seen[t.Name] {
			errs = append(errs, fmt.Errorf("table %s listed twice: %w", t.Name, dwload.ErrInvalidConfig))
		}
		seen[t.Name] = true

		if len(t.Columns) == 0 {
			errs = append(errs, fmt.Errorf("table %s has no columns: %w", t.Name, dwload.ErrInvalidConfig))
		}
		cols := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			if !ValidIdentifier(c) {
				errs = append(errs, fmt.Errorf("column %s.%q: %w", t.Name, c, dwload.ErrInvalidConfig))
			}
			if cols[c] {
				errs = append(errs, fmt.Errorf("column %s.%s listed twice: %w", t.Name, c, dwload.ErrInvalidConfig))
			}
			cols[c] = true
		}
		for _, r := range t.Rules {
			if !cols[r.Column] {
				errs = append(errs, fmt.Errorf("rule column %s.%s is not mapped: %w", t.Name, r.Column, dwload.ErrInvalidConfig))
			}
			if r.Coercion != NullableInt {
				errs = append(errs, fmt.Errorf("rule %s.%s has unknown coercion %q: %w", t.Name, r.Column, r.Coercion, dwload.ErrInvalidConfig))
			}
		}
	}

	for _, t := range d.Dimensions {
		if t.Kind != KindDimension {
			errs = append(errs, fmt.Errorf("table %s listed as dimension has kind %s: %w", t.Name, t.Kind, dwload.ErrInvalidConfig))
		}
	}
	for _, t := range d.Facts {
		if t.Kind != KindFact {
			errs = append(errs, fmt.Errorf("table %s listed as fact has kind %s: %w", t.Name, t.Kind, dwload.ErrInvalidConfig))
		}
	}

	return errors.Join(errs...)
}

// Lookup returns the named domain from Domains.
func Lookup(name string) (Domain, error) {
	for _, d := range Domains() {
		if d.Name == name {
			return d, nil
		}
	}
	return Domain{}, fmt.Errorf("%q (expected one of %s): %w", name, strings.Join(Names(), ", "), dwload.ErrUnknownDomain)
}

// Names returns domain names in run order.
func Names() []string {
	ds := Domains()
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.Name
	}
	return names
}

// Validate checks the whole catalog, including identifiers shared across domains.
func Validate(schema string) error {
	var errs []error
	if !ValidIdentifier(schema) {
		errs = append(errs, fmt.Errorf("schema %q: %w", schema, dwload.ErrInvalidConfig))
	}
	owner := make(map[string]string)
	for _, d := range Domains() {
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
		}
		for _, t := range d.Tables() {
			if prev, ok := owner[t.Name]; ok {
				errs = append(errs, fmt.Errorf("table %s owned by both %s and %s: %w", t.Name, prev, d.Name, dwload.ErrInvalidConfig))
			}
			owner[t.Name] = d.Name
		}
	}
	return errors.Join(errs...)
}
