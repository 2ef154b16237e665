package main

import (
	"fmt"
	"strings"

	"careerbot/pkg/catalog"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the intent catalog",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate every catalog record",
	Long: `validate checks each record in lenient mode and prints every problem found,
then exits non-zero if any record is invalid. The path defaults to
model.catalog_path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalogValidate,
}

func init() {
	catalogCmd.AddCommand(catalogValidateCmd)
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	path := cfg.Model.CatalogPath
	if len(args) == 1 {
		path = args[0]
	}

	cat, err := catalog.Load(path, catalog.Lenient, log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, issue := range cat.Issues() {
		tag := issue.Tag
		if tag == "" {
			tag = "-"
		}
		fmt.Fprintf(out, "record %d (tag %s): %s\n", issue.Index, tag, strings.Join(issue.Errors, "; "))
	}
	fmt.Fprintf(out, "%s: %d valid intents, %d invalid records\n", path, cat.Len(), len(cat.Issues()))

	if len(cat.Issues()) > 0 {
		return fmt.Errorf("catalog %s has %d invalid records", path, len(cat.Issues()))
	}
	return nil
}
