package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var keyType string

// keyCmd groups the SSH key subcommands
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage SSH keys",
}

var keyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your SSH keys",
	Args:  cobra.NoArgs,
	RunE:  runKeyList,
}

var keyAddCmd = &cobra.Command{
	Use:   "add <name> <public-key-file>",
	Short: "Register an SSH public key",
	Args:  cobra.ExactArgs(2),
	RunE:  runKeyAdd,
}

var keyUpdateCmd = &cobra.Command{
	Use:   "update <name> <public-key-file>",
	Short: "Replace the content of an SSH key",
	Args:  cobra.ExactArgs(2),
	RunE:  runKeyUpdate,
}

var keyDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove an SSH key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeyDelete,
}

func init() {
	keyAddCmd.Flags().StringVar(&keyType, "type", "", "key type (default is read from the key file)")
	keyUpdateCmd.Flags().StringVar(&keyType, "type", "", "key type (default is read from the key file)")

	keyCmd.AddCommand(keyListCmd, keyAddCmd, keyUpdateCmd, keyDeleteCmd)
}

func runKeyList(cmd *cobra.Command, args []string) error {
	keys, err := client.Keys(cmd.Context())
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		fmt.Println("No SSH keys registered.")
		return nil
	}

	for _, k := range keys {
		fmt.Printf("• %s (%s)\n", k.Name, k.Type)
	}
	return nil
}

func runKeyAdd(cmd *cobra.Command, args []string) error {
	kind, content, err := readPublicKey(args[1], keyType)
	if err != nil {
		return err
	}

	k, err := client.AddKey(cmd.Context(), args[0], content, kind)
	if err != nil {
		return err
	}

	logger.Info().Str("key", k.Name).Str("type", k.Type).Msg("Added SSH key")
	return nil
}

func runKeyUpdate(cmd *cobra.Command, args []string) error {
	kind, content, err := readPublicKey(args[1], keyType)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	k, err := client.FindKey(ctx, args[0])
	if err != nil {
		return err
	}

	if _, err := client.UpdateKey(ctx, k, kind, content); err != nil {
		return err
	}

	logger.Info().Str("key", k.Name).Msg("Updated SSH key")
	return nil
}

func runKeyDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	k, err := client.FindKey(ctx, args[0])
	if err != nil {
		return err
	}

	if err := client.DeleteKey(ctx, k); err != nil {
		return err
	}

	logger.Info().Str("key", k.Name).Msg("Deleted SSH key")
	return nil
}

// readPublicKey reads an OpenSSH public key file ("<type> <base64> [comment]")
func readPublicKey(path, override string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read key file: %w", err)
	}
	return parsePublicKey(string(data), override)
}

// parsePublicKey splits an OpenSSH public key line into type and content
func parsePublicKey(line, override string) (string, string, error) {
	fields := strings.Fields(line)
	switch {
	case len(fields) >= 2:
		kind := fields[0]
		if override != "" {
			kind = override
		}
		return kind, fields[1], nil
	case len(fields) == 1 && override != "":
		return override, fields[0], nil
	default:
		return "", "", fmt.Errorf("invalid public key: expected '<type> <content>'")
	}
}
