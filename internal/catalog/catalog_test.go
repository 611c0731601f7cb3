package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dwload/pkg/dwload"
)

func TestCatalogIsValid(t *testing.T) {
	require.NoError(t, Validate(dwload.DefaultSchema))
}

func TestNames_FixedRunOrder(t *testing.T) {
	assert.Equal(t, []string{Sales, Operations, Finance}, Names())
}

func TestDomain_TablesLoadDimensionsFirst(t *testing.T) {
	sales, err := Lookup(Sales)
	require.NoError(t, err)

	tables := sales.Tables()
	require.Len(t, tables, 9)
	assert.Equal(t, "dimdate", tables[0].Name)
	assert.Equal(t, "dimsalesrep", tables[5].Name)
	assert.Equal(t, "factsales", tables[6].Name)

	for i, tbl := range tables {
		if tbl.Kind == KindFact {
			for _, later := range tables[i:] {
				assert.Equal(t, KindFact, later.Kind, "dimension %s after a fact", later.Name)
			}
			break
		}
	}
}

func TestDomain_TruncateOrderListsFactsFirst(t *testing.T) {
	finance, err := Lookup(Finance)
	require.NoError(t, err)

	order := finance.TruncateOrder()
	names := make([]string, len(order))
	for i, tbl := range order {
		names[i] = tbl.Name
	}
	assert.Equal(t, []string{"factfinancepl", "factfinancebs", "factfinancecf", "dimglaccount"}, names)
}

func TestOperationsOwnsOnlyFacts(t *testing.T) {
	ops, err := Lookup(Operations)
	require.NoError(t, err)
	assert.Empty(t, ops.Dimensions)
	assert.Len(t, ops.Facts, 2)
}

func TestFinanceFactsCoerceRegionKey(t *testing.T) {
	finance, err := Lookup(Finance)
	require.NoError(t, err)
	for _, f := range finance.Facts {
		require.Len(t, f.Rules, 1, f.Name)
		assert.Equal(t, Rule{Column: "regionkey", Coercion: NullableInt}, f.Rules[0])
	}
}

func TestLookup_UnknownDomain(t *testing.T) {
	_, err := Lookup("marketing")
	assert.True(t, errors.Is(err, dwload.ErrUnknownDomain))
}

func TestValidIdentifier(t *testing.T) {
	tests := map[string]bool{
		"factsales":        true,
		"_staging":         true,
		"dim2":             true,
		"":                 false,
		"2dim":             false,
		"FactSales":        false,
		"fact sales":       false,
		`x"; drop table y`: false,
	}
	for name, want := range tests {
		assert.Equal(t, want, ValidIdentifier(name), name)
	}
}

func TestDomain_ValidateRejectsBadDeclarations(t *testing.T) {
	d := Domain{
		Name: "bad",
		Dimensions: []Table{
			{Name: "dimx", Kind: KindFact, Columns: []string{"a"}},
		},
		Facts: []Table{
			{Name: "Fact", Kind: KindFact, Columns: []string{"a", "a"}},
			{Name: "facty", Kind: KindFact, Columns: []string{"a"}, Rules: []Rule{{Column: "b", Coercion: NullableInt}}},
			{Name: "factz", Kind: KindFact},
		},
	}

	err := d.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, dwload.ErrInvalidConfig)
	for _, fragment := range []string{"dimx listed as dimension", `table name "Fact"`, "Fact.a listed twice", "facty.b is not mapped", "factz has no columns"} {
		assert.Contains(t, err.Error(), fragment)
	}
}

func TestValidate_RejectsBadSchema(t *testing.T) {
	assert.ErrorIs(t, Validate("Analytics"), dwload.ErrInvalidConfig)
}

func TestQualifiedAndQuotedColumns(t *testing.T) {
	assert.Equal(t, `"analytics"."factsales"`, Qualified("analytics", "factsales"))

	tbl := Table{Name: "t", Columns: []string{"a", "b"}}
	assert.Equal(t, `"a", "b"`, tbl.QuotedColumns())
	assert.Equal(t, "t.csv", tbl.FileName())
}
