package testing

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/dwload/internal/catalog"
	"github.com/vvka-141/dwload/internal/db"
	"github.com/vvka-141/dwload/internal/logging"
	"github.com/vvka-141/dwload/internal/testinfra"
	"github.com/vvka-141/dwload/pkg/dwload"
)

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		ctx := context.Background()
		container, err := testinfra.StartPostgres(ctx)
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: DWLOAD_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv("DWLOAD_TEST_CONN"); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("DWLOAD_TEST_CONN not set and Docker unavailable: %v", err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString for convenience.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// Warehouse is an isolated schema holding every catalog table.
type Warehouse struct {
	Schema     string
	ConnString string
	Pool       *pgxpool.Pool
}

// CreateWarehouse creates a uniquely named schema with every catalog table
// and drops it when the test completes. Columns are text, except those
// with a nullable-int rule, which are bigint.
func CreateWarehouse(t *testing.T, connString string) *Warehouse {
	t.Helper()

	ctx := context.Background()
	schema := "dw_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect for warehouse creation: %v", err)
	}

	if _, err := pool.Exec(ctx, WarehouseDDL(schema)); err != nil {
		pool.Close()
		t.Fatalf("Failed to create warehouse schema %s: %v", schema, err)
	}
	t.Logf("Created warehouse schema %s", schema)

	t.Cleanup(func() {
		defer pool.Close()
		drop := fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", pgx.Identifier{schema}.Sanitize())
		if _, err := pool.Exec(context.Background(), drop); err != nil {
			t.Logf("Warning: Failed to drop schema %s: %v", schema, err)
		}
	})

	return &Warehouse{Schema: schema, ConnString: connString, Pool: pool}
}

// WarehouseDDL renders CREATE statements for every catalog table in schema.
func WarehouseDDL(schema string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE SCHEMA %s;\n", pgx.Identifier{schema}.Sanitize())
	for _, domain := range catalog.Domains() {
		for _, table := range domain.Tables() {
			ints := make(map[string]bool)
			for _, rule := range table.Rules {
				if rule.Coercion == catalog.NullableInt {
					ints[rule.Column] = true
				}
			}
			cols := make([]string, len(table.Columns))
			for i, col := range table.Columns {
				typ := "text"
				if ints[col] {
					typ = "bigint"
				}
				cols[i] = pgx.Identifier{col}.Sanitize() + " " + typ
			}
			fmt.Fprintf(&b, "CREATE TABLE %s (%s);\n", catalog.Qualified(schema, table.Name), strings.Join(cols, ", "))
		}
	}
	return b.String()
}

// CountRows returns the number of rows in schema.table.
func (w *Warehouse) CountRows(t *testing.T, table string) int64 {
	t.Helper()

	var n int64
	query := "SELECT count(*) FROM " + catalog.Qualified(w.Schema, table)
	if err := w.Pool.QueryRow(context.Background(), query).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// Exec runs sql against the warehouse database, failing the test on error.
func (w *Warehouse) Exec(t *testing.T, sql string, args ...any) {
	t.Helper()

	if _, err := w.Pool.Exec(context.Background(), sql, args...); err != nil {
		t.Fatalf("Failed to execute %q: %v", sql, err)
	}
}

// StoreOpener returns a dwload.StoreOpener connecting to the warehouse
// database through the standard connector.
func (w *Warehouse) StoreOpener(t *testing.T) dwload.StoreOpener {
	t.Helper()

	config, err := db.ParseConnectionString(w.ConnString)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}
	return func(ctx context.Context) (dwload.Store, error) {
		store, err := db.OpenStore(ctx, db.NewStandardConnector(config, logging.NewNullLogger()))
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}
