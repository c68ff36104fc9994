package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/rhc/filter"
	"github.com/s0up4200/rhc/rest"
)

var (
	domainName string
	filterExpr string
	preset      string
	listPresets bool
	forceStop   bool
)

// appCmd groups the application subcommands
var appCmd = &cobra.Command{
	Use:   "app",
	Short: "Manage applications",
}

var appListCmd = &cobra.Command{
	Use:   "list",
	Short: "List applications matching the filter criteria",
	Long: `List applications across your domains. Narrow the list with --domain,
an expression given with --filter, or a preset from the config file.
Use --list-presets to show the presets the config file defines.`,
	Args: cobra.NoArgs,
	RunE: runAppList,
}

var appCreateCmd = &cobra.Command{
	Use:   "create <domain> <name> <cartridge>",
	Short: "Create an application",
	Args:  cobra.ExactArgs(3),
	RunE:  runAppCreate,
}

var appStartCmd = &cobra.Command{
	Use:   "start <name>",
	Short: "Start an application",
	Args:  cobra.ExactArgs(1),
	RunE: appAction("Started", func(cmd *cobra.Command, app *rest.Application) error {
		return client.StartApplication(cmd.Context(), app)
	}),
}

var appStopCmd = &cobra.Command{
	Use:   "stop <name>",
	Short: "Stop an application",
	Args:  cobra.ExactArgs(1),
	RunE: appAction("Stopped", func(cmd *cobra.Command, app *rest.Application) error {
		return client.StopApplication(cmd.Context(), app, forceStop)
	}),
}

var appRestartCmd = &cobra.Command{
	Use:   "restart <name>",
	Short: "Restart an application",
	Args:  cobra.ExactArgs(1),
	RunE: appAction("Restarted", func(cmd *cobra.Command, app *rest.Application) error {
		return client.RestartApplication(cmd.Context(), app)
	}),
}

var appDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an application",
	Args:  cobra.ExactArgs(1),
	RunE: appAction("Deleted", func(cmd *cobra.Command, app *rest.Application) error {
		return client.DeleteApplication(cmd.Context(), app)
	}),
}

func init() {
	appListCmd.Flags().StringVar(&domainName, "domain", "", "only list applications of this domain")
	appListCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	appListCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	appListCmd.Flags().BoolVar(&listPresets, "list-presets", false, "show the configured filter presets and exit")
	appStopCmd.Flags().BoolVar(&forceStop, "force", false, "stop without a graceful shutdown")

	appCmd.AddCommand(appListCmd, appCreateCmd, appStartCmd, appStopCmd, appRestartCmd, appDeleteCmd)
}

func runAppList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if listPresets {
		return writePresets(os.Stdout, filters)
	}

	f, err := getFilter()
	if err != nil {
		return err
	}

	domains, err := client.Domains(ctx)
	if err != nil {
		return err
	}

	var apps []*rest.Application
	for _, d := range domains {
		if domainName != "" && d.ID != domainName {
			continue
		}
		domainApps, err := client.Applications(ctx, d)
		if err != nil {
			return err
		}
		apps = append(apps, domainApps...)
	}

	if f != nil {
		logger.Debug().Str("filter", f.String()).Msg("Filtering applications")
		if apps, err = f.Apply(apps); err != nil {
			return err
		}
	}

	if len(apps) == 0 {
		fmt.Println("No applications found matching the filter criteria.")
		return nil
	}

	fmt.Printf("\nFound %d applications:\n", len(apps))
	fmt.Println(strings.Repeat("-", 80))

	for _, app := range apps {
		fmt.Printf("• %s (%s) [%s]\n", app.Name, app.DomainID, app.Framework)
		if len(app.Aliases) > 0 {
			fmt.Printf("  Aliases: %s\n", strings.Join(app.Aliases, ", "))
		}
		if created := app.Created(); !created.IsZero() {
			fmt.Printf("  Created: %s\n", created.Format("2006-01-02"))
		}
	}

	return nil
}

func runAppCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	d, err := client.FindDomain(ctx, args[0])
	if err != nil {
		return err
	}

	app, err := client.AddApplication(ctx, d, args[1], args[2])
	if err != nil {
		return err
	}

	logger.Info().Str("app", app.Name).Str("domain", d.ID).Str("framework", app.Framework).Msg("Created application")
	return nil
}

// appAction looks up the named application and runs fn against it
func appAction(verb string, fn func(*cobra.Command, *rest.Application) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := client.FindApplication(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if err := fn(cmd, app); err != nil {
			return err
		}

		logger.Info().Str("app", app.Name).Msgf("%s application", verb)
		return nil
	}
}

// writePresets prints every configured preset with its expression
func writePresets(w io.Writer, m *filter.Manager) error {
	names := m.Presets()
	if len(names) == 0 {
		fmt.Fprintln(w, "No filter presets configured.")
		return nil
	}

	for _, name := range names {
		f, err := m.Preset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %s\n", name, f.String())
	}
	return nil
}

// getFilter determines the filter to use, if any
func getFilter() (*filter.ExprFilter, error) {
	// Priority: command line filter > preset
	if filterExpr != "" {
		f, err := filters.Compile(filterExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		return f, nil
	}

	if preset != "" {
		return filters.Preset(preset)
	}

	return nil, nil
}
