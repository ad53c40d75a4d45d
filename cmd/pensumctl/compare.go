package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/EnmanuelReynoso23/el-pensum/app"
	"github.com/EnmanuelReynoso23/el-pensum/config"
	"github.com/EnmanuelReynoso23/el-pensum/services/comparison"
	"github.com/spf13/cobra"
)

var (
	compareFieldSet string
	compareXLSXDir  string
)

var compareCmd = &cobra.Command{
	Use:   "compare <university-slug-1> <university-slug-2> <program-slug>",
	Short: "Compare a program between two universities",
	Example: `  pensumctl compare pontificia-universidad-catolica-madre-y-maestra \
    instituto-tecnologico-de-santo-domingo ingenieria-en-sistemas`,
	Args: cobra.ExactArgs(3),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareFieldSet, "field-set", "", "Field set to compare (default: COMPARISON_FIELD_SET)")
	compareCmd.Flags().StringVar(&compareXLSXDir, "xlsx", "", "Also write the comparison workbook into this directory")
}

func runCompare(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	setName := compareFieldSet
	if setName == "" {
		setName = e.cfg.Comparison.FieldSet
	}
	defs, err := config.LoadFieldSet(setName)
	if err != nil {
		return err
	}
	fields, err := comparison.FieldsFromConfig(defs)
	if err != nil {
		return err
	}

	catalog := app.OpenCatalog(e.cfg, e.store, nil, e.logger)
	service := comparison.NewService(catalog, fields, e.cfg.Comparison.StoreTimeout, e.logger)

	ctx, cancel := commandContext(cmd)
	defer cancel()

	view, err := service.RunComparison(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}

	if err := printView(cmd.OutOrStdout(), view); err != nil {
		return err
	}

	if compareXLSXDir != "" {
		buf, filename, err := comparison.Export(view)
		if err != nil {
			return err
		}
		path := filepath.Join(compareXLSXDir, filename)
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nWorkbook written to %s\n", path)
	}
	return nil
}

// printView renders view as an aligned table, one row per field plus the total cost
func printView(w io.Writer, view *comparison.View) error {
	fmt.Fprintf(w, "%s\n\n", view.ProgramName)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Campo\t%s\t%s\n", view.UniversityName1, view.UniversityName2)
	for _, f := range view.Fields {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Label, cellText(f.Formatted1, f.Classification1), cellText(f.Formatted2, f.Classification2))
	}
	fmt.Fprintf(tw, "Costo Total\t%s\t%s\n", view.TotalCost1, view.TotalCost2)
	return tw.Flush()
}

func cellText(formatted string, class comparison.Classification) string {
	switch class {
	case comparison.ClassBetter:
		return formatted + " (+)"
	case comparison.ClassWorse:
		return formatted + " (-)"
	case comparison.ClassEqual:
		return formatted + " (=)"
	default:
		return formatted
	}
}
