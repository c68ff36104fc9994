package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/rhc/rest"
)

var appName string

// cartridgeCmd groups the cartridge subcommands
var cartridgeCmd = &cobra.Command{
	Use:     "cartridge",
	Aliases: []string{"cart"},
	Short:   "Manage cartridges",
}

var cartridgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available cartridges, or those embedded in --app",
	Args:  cobra.NoArgs,
	RunE:  runCartridgeList,
}

var cartridgeAddCmd = &cobra.Command{
	Use:   "add <app> <cartridge>",
	Short: "Embed a cartridge in an application",
	Args:  cobra.ExactArgs(2),
	RunE:  runCartridgeAdd,
}

func init() {
	cartridgeListCmd.Flags().StringVar(&appName, "app", "", "list cartridges embedded in this application")

	cartridgeCmd.AddCommand(cartridgeListCmd, cartridgeAddCmd)

	actions := []struct {
		use, verb string
		fn        func(cmd *cobra.Command, cart *rest.Cartridge) error
	}{
		{"start", "Started", func(cmd *cobra.Command, cart *rest.Cartridge) error { return client.StartCartridge(cmd.Context(), cart) }},
		{"stop", "Stopped", func(cmd *cobra.Command, cart *rest.Cartridge) error { return client.StopCartridge(cmd.Context(), cart) }},
		{"restart", "Restarted", func(cmd *cobra.Command, cart *rest.Cartridge) error { return client.RestartCartridge(cmd.Context(), cart) }},
		{"reload", "Reloaded", func(cmd *cobra.Command, cart *rest.Cartridge) error { return client.ReloadCartridge(cmd.Context(), cart) }},
		{"remove", "Removed", func(cmd *cobra.Command, cart *rest.Cartridge) error { return client.DeleteCartridge(cmd.Context(), cart) }},
	}
	for _, a := range actions {
		cartridgeCmd.AddCommand(&cobra.Command{
			Use:   a.use + " <app> <cartridge>",
			Short: fmt.Sprintf("%s an embedded cartridge", a.use),
			Args:  cobra.ExactArgs(2),
			RunE:  cartridgeAction(a.verb, a.fn),
		})
	}
}

func runCartridgeList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var (
		carts []*rest.Cartridge
		err   error
	)
	if appName != "" {
		app, findErr := client.FindApplication(ctx, appName)
		if findErr != nil {
			return findErr
		}
		carts, err = client.ApplicationCartridges(ctx, app)
	} else {
		carts, err = client.Cartridges(ctx)
	}
	if err != nil {
		return err
	}

	if len(carts) == 0 {
		fmt.Println("No cartridges found.")
		return nil
	}

	for _, cart := range carts {
		fmt.Printf("• %s (%s)\n", cart.Name, cart.Type)
	}
	return nil
}

func runCartridgeAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := client.FindApplication(ctx, args[0])
	if err != nil {
		return err
	}

	cart, err := client.AddCartridge(ctx, app, args[1])
	if err != nil {
		return err
	}

	logger.Info().Str("app", app.Name).Str("cartridge", cart.Name).Msg("Added cartridge")
	return nil
}

// cartridgeAction resolves an embedded cartridge of an application and runs fn against it
func cartridgeAction(verb string, fn func(*cobra.Command, *rest.Cartridge) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := client.FindApplication(ctx, args[0])
		if err != nil {
			return err
		}

		carts, err := client.ApplicationCartridges(ctx, app)
		if err != nil {
			return err
		}

		for _, cart := range carts {
			if cart.Name != args[1] {
				continue
			}
			if err := fn(cmd, cart); err != nil {
				return err
			}
			logger.Info().Str("app", app.Name).Str("cartridge", cart.Name).Msgf("%s cartridge", verb)
			return nil
		}

		return fmt.Errorf("%w: cartridge %s in %s", rest.ErrResourceNotFound, args[1], app.Name)
	}
}
