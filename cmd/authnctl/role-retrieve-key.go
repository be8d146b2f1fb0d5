package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/conjur-authn/pkg/model"
)

// roleRetrieveKeyCmd represents the role retrieve-key command
var roleRetrieveKeyCmd = &cobra.Command{
	Use:   "retrieve-key <role_id>",
	Short: "Retrieve a role's API key",
	Long: `Retrieve the API key for a role.

The role_id should be in the format: account:kind:identifier
For example: myorg:user:admin or myorg:host:myapp

Example:
  authnctl role retrieve-key myorg:user:admin
  authnctl role retrieve-key myorg:host:myapp`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, roleID := range args {
			apiKey, err := retrieveKey(roleID)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to retrieve key for %s: %v\n", roleID, err)
				os.Exit(1)
			}
			fmt.Println(apiKey)
		}
	},
}

func init() {
	roleCmd.AddCommand(roleRetrieveKeyCmd)
}

func retrieveKey(roleID string) (string, error) {
	database, err := connectWithDataKey()
	if err != nil {
		return "", err
	}

	// The silo plugin decrypts the api_key column on the way out.
	var credential model.Credential
	if err := database.Where("role_id = ?", roleID).First(&credential).Error; err != nil {
		return "", fmt.Errorf("role not found: %s", roleID)
	}

	if len(credential.ApiKey) == 0 {
		return "", fmt.Errorf("no API key found for role: %s", roleID)
	}

	return string(credential.ApiKey), nil
}
