package cli

import (
	"fmt"
	"strings"

	"teamdeck/internal/api"
	"teamdeck/internal/config"
	"teamdeck/internal/format"
	"teamdeck/internal/logging"
	"teamdeck/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	APIURL     string
	StateDir   string
	Format     string
	PrettyJSON bool

	cfg config.Config
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "teamdeck",
		Short:        "Terminal console for a users/projects backend",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive console
  teamdeck

  # Scriptable commands
  teamdeck users list
  teamdeck projects create --name Apollo --users 1,2

  # Run the bundled reference backend
  teamdeck serve --addr :3000
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup()
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if app.log != nil {
			_ = app.log.Sync()
		}
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api", "", "Base API URL (default: $TEAMDECK_API_URL or http://localhost:3000/api)")
	cmd.PersistentFlags().StringVar(&app.StateDir, "state-dir", "", "Local state dir for channels and logs (default: $TEAMDECK_STATE_DIR or ~/.teamdeck)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", "json", "Output format (json|table)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newServeCmd(app))

	return cmd
}

// setup resolves configuration once per invocation: environment first, flags
// override.
func (app *App) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if strings.TrimSpace(app.APIURL) != "" {
		cfg.APIURL = strings.TrimRight(strings.TrimSpace(app.APIURL), "/")
	}
	if strings.TrimSpace(app.StateDir) != "" {
		cfg.StateDir = strings.TrimSpace(app.StateDir)
	}
	app.cfg = cfg

	log, err := logging.New(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	app.log = log
	return nil
}

func (app *App) client() *api.Client {
	return api.NewClient(app.cfg.APIURL, api.WithLogger(app.log))
}

func runTUI(app *App) error {
	return tui.Run(tui.Config{
		Client:      app.client(),
		ChannelsDir: app.cfg.ChannelsDir(),
		Log:         app.log,
	})
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
