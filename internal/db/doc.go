// Package db connects dwload to PostgreSQL.
//
// It resolves connection parameters with PostgreSQL-standard precedence,
// opens a single-connection pgx pool through one of several authentication
// connectors (password, AWS RDS IAM, Azure Entra ID, Google Cloud SQL IAM),
// and adapts that connection to the dwload.Store and dwload.Tx interfaces
// the loaders write through. Driver errors are classified into dwload
// sentinels by SQLSTATE.
package db
