package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	silostore "github.com/doodlesbykumbi/conjur-authn/pkg/slosilo/store"
)

// accountDeleteCmd represents the account delete command
var accountDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an organization account",
	Long: `Delete an organization account and all its associated data.

This command deletes the account's signing key, all roles, resources,
credentials, secrets, and permissions associated with the account.

Example:
  authnctl account delete myorg`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		if err := deleteAccount(name); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to delete account: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Deleted account '%s'\n", name)
	},
}

func init() {
	accountCmd.AddCommand(accountDeleteCmd)
}

func deleteAccount(accountName string) error {
	database, err := connectWithDataKey()
	if err != nil {
		return err
	}

	keystore := silostore.NewKeyStore(database)
	if _, err := keystore.ByAccount(accountName); err != nil {
		return fmt.Errorf("account '%s' does not exist", accountName)
	}

	// Deletion order respects the foreign key constraints.
	prefix := accountName + ":%"
	statements := []struct {
		query string
		args  []interface{}
	}{
		{`DELETE FROM credentials WHERE role_id LIKE ?`, []interface{}{prefix}},
		{`DELETE FROM secrets WHERE resource_id LIKE ?`, []interface{}{prefix}},
		{`DELETE FROM permissions WHERE role_id LIKE ? OR resource_id LIKE ?`, []interface{}{prefix, prefix}},
		{`DELETE FROM role_memberships WHERE role_id LIKE ? OR member_id LIKE ?`, []interface{}{prefix, prefix}},
		{`DELETE FROM annotations WHERE resource_id LIKE ?`, []interface{}{prefix}},
		{`DELETE FROM authenticator_configs WHERE resource_id LIKE ?`, []interface{}{prefix}},
		{`DELETE FROM resources WHERE resource_id LIKE ?`, []interface{}{prefix}},
		{`DELETE FROM roles WHERE role_id LIKE ?`, []interface{}{prefix}},
	}
	for _, stmt := range statements {
		if err := database.Exec(stmt.query, stmt.args...).Error; err != nil {
			return fmt.Errorf("failed to delete account data: %w", err)
		}
	}

	if err := keystore.Delete("authn:" + accountName); err != nil {
		return fmt.Errorf("failed to delete signing key: %w", err)
	}

	return nil
}
