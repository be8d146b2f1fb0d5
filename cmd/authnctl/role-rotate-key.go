package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/conjur-authn/pkg/model"
)

// roleRotateKeyCmd represents the role rotate-key command
var roleRotateKeyCmd = &cobra.Command{
	Use:   "rotate-key <role_id>",
	Short: "Rotate a role's API key",
	Long: `Generate a new API key for a role, invalidating the old one.

The role_id should be in the format: account:kind:identifier
For example: myorg:user:admin or myorg:host:myapp

The new API key will be printed to stdout.

Example:
  authnctl role rotate-key myorg:user:admin`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		roleID := args[0]

		apiKey, err := rotateKey(roleID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to rotate key for %s: %v\n", roleID, err)
			os.Exit(1)
		}
		fmt.Println(apiKey)
	},
}

func init() {
	roleCmd.AddCommand(roleRotateKeyCmd)
}

func rotateKey(roleID string) (string, error) {
	database, err := connectWithDataKey()
	if err != nil {
		return "", err
	}

	var credential model.Credential
	if err := database.Where("role_id = ?", roleID).First(&credential).Error; err != nil {
		return "", fmt.Errorf("role not found: %s", roleID)
	}

	newAPIKey, err := model.GenerateAPIKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate API key: %w", err)
	}

	credential.ApiKey = newAPIKey
	if err := database.Save(&credential).Error; err != nil {
		return "", fmt.Errorf("failed to update credentials: %w", err)
	}

	return string(newAPIKey), nil
}
