// Package loader moves extracts into warehouse tables.
//
// TableLoader streams one extract into one table with COPY. DomainLoader owns
// a domain's single transaction and walks it through
//
//	START → TRUNCATE → LOAD_DIMENSIONS → LOAD_FACTS → COMMIT
//
// with ROLLBACK reachable from every non-terminal state. Nothing is retried
// inside a domain load; a failure rolls the whole domain back.
package loader
