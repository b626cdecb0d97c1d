package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List active templates in matching order",
	Args:  cobra.NoArgs,
	RunE:  runTemplates,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(cmd *cobra.Command, args []string) error {
	registry, _, err := loadRegistry()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROJECT\tLENGTH\tTEMPLATE")
	for _, t := range registry.Templates() {
		project := string(t.Project)
		if project == "" {
			project = "-"
		}
		length := "any"
		if t.ExpectedLength > 0 {
			length = fmt.Sprint(t.ExpectedLength)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, project, length, t.Source)
	}
	return tw.Flush()
}
