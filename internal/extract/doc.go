// Package extract reads raw CSV extracts and rewrites them into the form the
// bulk loader streams to PostgreSQL.
//
// Two passes are combined into one streaming copy:
//   - projection: columns are picked by header name into the destination order,
//     extra extract columns are dropped
//   - coercion: columns with a rule are cleaned, e.g. "2.0" becomes "2" and
//     "nan" becomes the absence marker
//
// The absence marker is an unquoted empty field, which COPY ... (FORMAT csv)
// reads as NULL. A quoted empty field in the extract is an empty string and is
// written back quoted.
package extract
