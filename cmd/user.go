package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// userCmd represents the user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Show the authenticated user",
	RunE:  runUser,
}

func runUser(cmd *cobra.Command, args []string) error {
	user, err := client.User(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Login: %s\n", user.Login)
	return nil
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to the broker",
	Long:  `Test the connection to the broker and display basic information about your account.`,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	fmt.Printf("Testing connection to %s...\n", cfg.Server.URL)

	// Connection is already tested during client creation
	fmt.Println("✓ Connection successful!")

	ctx := cmd.Context()
	user, err := client.User(ctx)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	domains, err := client.Domains(ctx)
	if err != nil {
		return err
	}

	keys, err := client.Keys(ctx)
	if err != nil {
		return fmt.Errorf("failed to get keys: %w", err)
	}

	fmt.Printf("\nAccount:\n")
	fmt.Printf("- Login: %s\n", user.Login)
	fmt.Printf("- Domains: %d\n", len(domains))
	fmt.Printf("- SSH keys: %d\n", len(keys))
	fmt.Printf("- API version: %s\n", cfg.Server.APIVersion)
	fmt.Printf("- Strict errors: %s\n", boolToStatus(cfg.Server.StrictErrors))

	return nil
}
