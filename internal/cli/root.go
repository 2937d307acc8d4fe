package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/hackscout/internal/app"
	"github.com/law-makers/hackscout/internal/config"
	"github.com/law-makers/hackscout/internal/ui"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hackscout",
	Short: "Discover hackathons from Devpost and MLH",
	Long: `HackScout crawls hackathon listings, filters them by domain and location,
and delivers enriched events as a batch file or a live NDJSON stream.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with ctx, which is cancelled on interrupt.
// The application is initialized lazily in PersistentPreRunE.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.Error("Error:"), err)
		return 1
	}
	return 0
}

// active is the application of the running command, closed by closeApp
var active *app.Application

func init() {
	// Avoid starting the app for -h/help
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetAppFromCmd(cmd) != nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		appCtx, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		SetApp(cmd, appCtx)
		active = appCtx
		return nil
	}

	// Close the app after every command, including ones that returned an error
	cobra.OnFinalize(closeApp)
}

func init() {
	// Register centralized flags
	config.RegisterFlags(rootCmd)

	// Customize help and version flag descriptions
	rootCmd.Flags().BoolP("help", "h", false, "Help for HackScout")
	rootCmd.Flags().Bool("version", false, "Version for HackScout")
}

func init() {
	// Disable the default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Set custom help function
	rootCmd.SetHelpFunc(customHelpFunc)
	rootCmd.SetUsageFunc(customUsageFunc)
}

func closeApp() {
	if active == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), active.Config.HTTPTimeout)
	defer cancel()
	if err := active.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("Application close failed")
	}
	active = nil
}
