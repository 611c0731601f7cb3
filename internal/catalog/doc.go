// Package catalog declares the warehouse tables each domain owns.
//
// The catalog is the only source of SQL identifiers in dwload. Every schema,
// table and column name is checked against a strict lowercase pattern when
// the package is validated, and statements are assembled from these names
// only, quoted with pgx.Identifier.
package catalog
