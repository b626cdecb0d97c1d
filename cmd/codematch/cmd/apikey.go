package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/solatis/codematch/internal/core/auth"
	"github.com/solatis/codematch/internal/core/config"
	"github.com/solatis/codematch/internal/core/db"
	"github.com/solatis/codematch/internal/types"
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage code API keys",
}

var apikeyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Issue an API key for a project",
	Args:  cobra.NoArgs,
	RunE:  runAPIKeyCreate,
}

var apikeyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List API keys for a project",
	Args:  cobra.NoArgs,
	RunE:  runAPIKeyList,
}

var apikeyRevokeCmd = &cobra.Command{
	Use:   "revoke <api-key-id>",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runAPIKeyRevoke,
}

func init() {
	rootCmd.AddCommand(apikeyCmd)
	apikeyCmd.AddCommand(apikeyCreateCmd, apikeyListCmd, apikeyRevokeCmd)

	apikeyCreateCmd.Flags().String("project", "", "project the key belongs to")
	apikeyCreateCmd.Flags().String("name", "", "human readable key name")
	apikeyCreateCmd.Flags().String("secret-id", "", "HMAC secret to sign with (default: first configured)")
	_ = apikeyCreateCmd.MarkFlagRequired("project")

	apikeyListCmd.Flags().String("project", "", "project to list keys for")
	_ = apikeyListCmd.MarkFlagRequired("project")
}

func runAPIKeyCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	project, _ := cmd.Flags().GetString("project")
	name, _ := cmd.Flags().GetString("name")
	secretID, _ := cmd.Flags().GetString("secret-id")
	if name == "" {
		name = project
	}

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	secretID, secret, err := auth.SelectSecret(secrets, secretID)
	if err != nil {
		return err
	}

	database, queries, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	key, hash, err := auth.GenerateAPIKey(secretID, secret)
	if err != nil {
		return err
	}

	record := &db.APIKey{
		APIKeyID:  types.NewAPIKeyID(),
		ProjectID: types.ProjectID(project),
		Name:      name,
		SecretID:  secretID,
		KeyHash:   hash,
	}
	if err := db.NewAPIKeys(queries).Insert(ctx, record); err != nil {
		return err
	}

	log.Info().Str("api_key_id", record.APIKeyID).Str("project_id", project).Msg("api key issued")
	fmt.Fprintln(cmd.OutOrStdout(), key)
	return nil
}

func runAPIKeyList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	project, _ := cmd.Flags().GetString("project")

	database, queries, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	keys, err := db.NewAPIKeys(queries).ListByProject(ctx, types.ProjectID(project))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCREATED\tLAST USED\tSTATUS")
	for _, k := range keys {
		lastUsed, state := "-", "active"
		if k.LastUsedAt.Valid {
			lastUsed = k.LastUsedAt.Time.UTC().Format(time.RFC3339)
		}
		if k.RevokedAt.Valid {
			state = "revoked"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			k.APIKeyID, k.Name, k.CreatedAt.UTC().Format(time.RFC3339), lastUsed, state)
	}
	return tw.Flush()
}

func runAPIKeyRevoke(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	database, queries, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.NewAPIKeys(queries).Revoke(ctx, args[0]); err != nil {
		return err
	}
	log.Info().Str("api_key_id", args[0]).Msg("api key revoked")
	return nil
}
