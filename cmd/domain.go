package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var forceDelete bool

// domainCmd groups the domain subcommands
var domainCmd = &cobra.Command{
	Use:   "domain",
	Short: "Manage domains",
}

var domainListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your domains",
	Args:  cobra.NoArgs,
	RunE:  runDomainList,
}

var domainCreateCmd = &cobra.Command{
	Use:   "create <namespace>",
	Short: "Create a domain",
	Args:  cobra.ExactArgs(1),
	RunE:  runDomainCreate,
}

var domainUpdateCmd = &cobra.Command{
	Use:   "update <namespace> <new-namespace>",
	Short: "Rename a domain",
	Args:  cobra.ExactArgs(2),
	RunE:  runDomainUpdate,
}

var domainDeleteCmd = &cobra.Command{
	Use:   "delete <namespace>",
	Short: "Delete a domain",
	Args:  cobra.ExactArgs(1),
	RunE:  runDomainDelete,
}

func init() {
	domainDeleteCmd.Flags().BoolVar(&forceDelete, "force", false, "also delete the domain's applications")

	domainCmd.AddCommand(domainListCmd, domainCreateCmd, domainUpdateCmd, domainDeleteCmd)
}

func runDomainList(cmd *cobra.Command, args []string) error {
	domains, err := client.Domains(cmd.Context())
	if err != nil {
		return err
	}

	if len(domains) == 0 {
		fmt.Println("No domains found.")
		return nil
	}

	for _, d := range domains {
		fmt.Printf("• %s\n", d.ID)
	}
	return nil
}

func runDomainCreate(cmd *cobra.Command, args []string) error {
	d, err := client.AddDomain(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	logger.Info().Str("domain", d.ID).Msg("Created domain")
	return nil
}

func runDomainUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	d, err := client.FindDomain(ctx, args[0])
	if err != nil {
		return err
	}

	updated, err := client.UpdateDomain(ctx, d, args[1])
	if err != nil {
		return err
	}

	logger.Info().Str("from", d.ID).Str("to", updated.ID).Msg("Renamed domain")
	return nil
}

func runDomainDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	d, err := client.FindDomain(ctx, args[0])
	if err != nil {
		return err
	}

	if err := client.DeleteDomain(ctx, d, forceDelete); err != nil {
		return err
	}

	logger.Info().Str("domain", d.ID).Bool("force", forceDelete).Msg("Deleted domain")
	return nil
}
