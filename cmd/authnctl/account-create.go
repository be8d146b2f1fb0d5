package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/conjur-authn/pkg/model"
	"github.com/doodlesbykumbi/conjur-authn/pkg/slosilo"
	silostore "github.com/doodlesbykumbi/conjur-authn/pkg/slosilo/store"
)

// accountCreateCmd represents the account create command
var accountCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create an organization account",
	Long: `Create an organization account.

This command creates a new account with a 2048-bit RSA private key for signing
auth tokens. The CONJUR_DATA_KEY must be available in the environment since it's
used to encrypt the token-signing key in the database.

If no account name is provided, 'default' will be used.

The admin user's API key will be output to STDOUT.

Example:
  authnctl account create
  authnctl account create myorg
  authnctl account create --name myorg`,
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("name")
		if name == "" && len(args) > 0 {
			name = args[0]
		}
		if name == "" {
			name = "default"
		}

		apiKey, publicKey, err := createAccount(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create account: %v\n", err)
			os.Exit(1)
		}

		fmt.Fprintf(os.Stderr, "Created new account '%s'\n", name)
		fmt.Printf("Token-Signing Public Key: %s", publicKey)
		fmt.Printf("API key for admin: %s\n", apiKey)
	},
}

func init() {
	accountCmd.AddCommand(accountCreateCmd)
	accountCreateCmd.Flags().StringP("name", "n", "", "Account name (default: 'default')")
}

func createAccount(accountName string) (apiKey string, publicKey string, err error) {
	database, err := connectWithDataKey()
	if err != nil {
		return "", "", err
	}

	keystore := silostore.NewKeyStore(database)
	keyId := "authn:" + accountName

	if _, err := keystore.ByAccount(accountName); err == nil {
		return "", "", fmt.Errorf("account '%s' already exists", accountName)
	}

	key, err := slosilo.GenerateKey()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate signing key: %w", err)
	}

	if err := keystore.Put(keyId, key); err != nil {
		return "", "", fmt.Errorf("failed to store signing key: %w", err)
	}

	adminRoleId := fmt.Sprintf("%s:user:admin", accountName)
	policyRoleId := fmt.Sprintf("%s:policy:root", accountName)
	for _, roleId := range []string{adminRoleId, policyRoleId} {
		if err := database.Create(&model.Role{RoleID: roleId}).Error; err != nil {
			return "", "", fmt.Errorf("failed to create role %s: %w", roleId, err)
		}
	}

	for _, resourceId := range []string{adminRoleId, policyRoleId} {
		resource := model.Resource{ResourceID: resourceId, OwnerID: adminRoleId}
		if err := database.Create(&resource).Error; err != nil {
			return "", "", fmt.Errorf("failed to create resource %s: %w", resourceId, err)
		}
	}

	generatedAPIKey, err := model.GenerateAPIKey()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate API key: %w", err)
	}

	// The silo plugin encrypts the api_key column on the way in.
	credential := model.Credential{RoleId: adminRoleId, ApiKey: generatedAPIKey}
	if err := database.Create(&credential).Error; err != nil {
		return "", "", fmt.Errorf("failed to create admin credentials: %w", err)
	}

	return string(generatedAPIKey), string(key.PublicPem()), nil
}
