package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/solatis/codematch/internal/core/db"
	"github.com/solatis/codematch/internal/types"
)

var scansCmd = &cobra.Command{
	Use:   "scans",
	Short: "Show the scan journal for a project",
	Args:  cobra.NoArgs,
	RunE:  runScans,
}

func init() {
	rootCmd.AddCommand(scansCmd)
	scansCmd.Flags().String("project", "", "project to show scans for")
	scansCmd.Flags().Int("limit", db.DefaultScanLimit, "maximum scans to show")
	scansCmd.Flags().Bool("by-template", false, "show per-template counts instead of individual scans")
	_ = scansCmd.MarkFlagRequired("project")
}

func runScans(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	project, _ := cmd.Flags().GetString("project")
	limit, _ := cmd.Flags().GetInt("limit")
	byTemplate, _ := cmd.Flags().GetBool("by-template")

	database, queries, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	journal := db.NewJournal(queries)
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

	if byTemplate {
		counts, err := journal.CountByTemplate(ctx, types.ProjectID(project))
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "TEMPLATE\tSCANS")
		for _, c := range counts {
			fmt.Fprintf(tw, "%s\t%d\n", c.TemplateID, c.ScanCount)
		}
		return tw.Flush()
	}

	scans, err := journal.List(ctx, types.ProjectID(project), limit)
	if err != nil {
		return err
	}
	fmt.Fprintln(tw, "SCANNED AT\tCODE\tMATCHES\tTEMPLATE\tLOOKUP\tEMBEDDED")
	for _, s := range scans {
		template, lookup, embedded := "-", "-", "-"
		if s.TemplateID.Valid {
			template, lookup = s.TemplateID.String, s.LookupCode.String
		}
		if s.EmbeddedData.Valid {
			embedded = fmt.Sprint(s.EmbeddedData.Int64)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			s.ScannedAt.UTC().Format(time.RFC3339), s.Code, s.MatchCount, template, lookup, embedded)
	}
	return tw.Flush()
}
