package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/s0up4200/rhc/config"
	"github.com/s0up4200/rhc/filter"
	"github.com/s0up4200/rhc/rest"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	client  rest.API
	filters *filter.Manager

	verbose bool

	version   = "dev"
	buildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rhc",
	Short: "Manage domains, applications, cartridges and keys on the platform",
	Long: `rhc is a command line client for the platform-management REST API.
It lists and changes your domains, applications, cartridges and SSH keys.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// SetVersion records build information shown by --version
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(domainCmd)
	rootCmd.AddCommand(appCmd)
	rootCmd.AddCommand(cartridgeCmd)
	rootCmd.AddCommand(keyCmd)
}

// initializeApp initializes the configuration and client
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if verbose {
		cfg.Logging.Level = "debug"
	}
	logger = setupLogger(cfg.Logging)

	filters = filter.NewManager()
	if err := filters.RegisterPresets(cfg.Filter.Presets); err != nil {
		return err
	}

	password := cfg.Server.Password
	if password == "" {
		password, err = promptPassword(cfg.Server.Login)
		if err != nil {
			return err
		}
	}

	opts := []rest.Option{
		rest.WithTimeout(cfg.Server.Timeout),
		rest.WithAPIVersion(cfg.Server.APIVersion),
	}
	if cfg.Server.StrictErrors {
		opts = append(opts, rest.WithStrictErrors())
	}

	client, err = rest.NewClient(cfg.Server.URL, cfg.Server.Login, password, logger, opts...)
	if err != nil {
		return err
	}

	return nil
}

// promptPassword reads the password from the terminal without echoing it
func promptPassword(login string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("server.password is not set and stdin is not a terminal")
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", login)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// describeError adds a hint for the error kinds a user can act on
func describeError(err error) string {
	var apiErr *rest.APIError
	switch {
	case errors.Is(err, rest.ErrUnauthorized):
		return fmt.Sprintf("%v\nCheck server.login and server.password.", err)
	case errors.As(err, &apiErr) && apiErr.Attribute != "":
		return fmt.Sprintf("Invalid %s: %s", apiErr.Attribute, apiErr.Message)
	case errors.Is(err, rest.ErrResourceAccess):
		return fmt.Sprintf("%v\nIs server.url reachable?", err)
	case errors.Is(err, rest.ErrServiceUnavailable):
		return fmt.Sprintf("%v\nThe service is temporarily unavailable, try again later.", err)
	default:
		return err.Error()
	}
}

func boolToStatus(b bool) string {
	if b {
		return "Enabled"
	}
	return "Disabled"
}
