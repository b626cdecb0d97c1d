package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/solatis/codematch/internal/templates"
)

var matchCmd = &cobra.Command{
	Use:   "match <code>...",
	Short: "Classify scanned codes against the active templates",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().Bool("json", false, "print results as JSON lines")
}

type matchOutput struct {
	Code         string `json:"code"`
	TemplateID   string `json:"template_id"`
	ProjectID    string `json:"project_id,omitempty"`
	LookupCode   string `json:"lookup_code"`
	EmbeddedData *int   `json:"embedded_data,omitempty"`
	PriceData    *int   `json:"price_data,omitempty"`
}

func newMatchOutput(code string, r *templates.ParseResult) matchOutput {
	out := matchOutput{
		Code:       code,
		TemplateID: r.Template.ID,
		ProjectID:  string(r.Template.Project),
		LookupCode: r.LookupCode(),
	}
	if v, ok := r.EmbeddedData(); ok {
		out.EmbeddedData = &v
	}
	if v, ok := r.PriceData(); ok {
		out.PriceData = &v
	}
	return out
}

func runMatch(cmd *cobra.Command, args []string) error {
	registry, _, err := loadRegistry()
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	var rows []matchOutput
	for _, code := range args {
		for _, r := range registry.Match(code) {
			rows = append(rows, newMatchOutput(code, r))
		}
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, row := range rows {
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil
	}
	return printMatches(cmd.OutOrStdout(), rows)
}

func printMatches(w io.Writer, rows []matchOutput) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tTEMPLATE\tLOOKUP\tEMBEDDED\tPRICE")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			row.Code, row.TemplateID, row.LookupCode, optInt(row.EmbeddedData), optInt(row.PriceData))
	}
	return tw.Flush()
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
