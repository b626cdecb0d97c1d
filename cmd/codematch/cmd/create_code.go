package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var createCodeCmd = &cobra.Command{
	Use:   "create-code <template-id> <base-code> <value>",
	Short: "Render a code with an embedded value",
	Args:  cobra.ExactArgs(3),
	RunE:  runCreateCode,
}

func init() {
	rootCmd.AddCommand(createCodeCmd)
}

func runCreateCode(cmd *cobra.Command, args []string) error {
	value, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", args[2], err)
	}

	registry, _, err := loadRegistry()
	if err != nil {
		return err
	}

	code, err := registry.CreateCode(args[0], args[1], value)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), code)
	return nil
}
