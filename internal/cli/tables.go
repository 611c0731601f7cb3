package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/vvka-141/dwload/internal/catalog"
	"github.com/vvka-141/dwload/internal/logging"
)

var tablesCmd = &cobra.Command{
	Use:   "tables [domain]",
	Short: "List the tables each domain loads",
	Long: `Tables prints the catalog: every domain's tables in load order, their
kind, the mapped columns copied from each extract, and column rules.`,
	Args:              OptionalDomain,
	ValidArgsFunction: completeDomainNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		domains := catalog.Domains()
		if len(args) == 1 {
			d, err := catalog.Lookup(args[0])
			if err != nil {
				return err
			}
			domains = []catalog.Domain{d}
		}
		writeCatalog(os.Stdout, domains, logging.UseColor(os.Stdout))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func writeCatalog(w io.Writer, domains []catalog.Domain, color bool) {
	t := table.New().
		Headers("DOMAIN", "KIND", "TABLE", "COLUMNS", "RULES").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	if !color {
		t = t.Border(lipgloss.ASCIIBorder())
	}

	for _, d := range domains {
		for _, tbl := range d.Tables() {
			t.Row(d.Name, string(tbl.Kind), tbl.Name, strings.Join(tbl.Columns, ", "), formatRules(tbl.Rules))
		}
	}
	fmt.Fprintln(w, t.Render())
}

func formatRules(rules []catalog.Rule) string {
	parts := make([]string, len(rules))
	for i, r := range rules {
		parts[i] = fmt.Sprintf("%s: %s", r.Column, r.Coercion)
	}
	return strings.Join(parts, ", ")
}
