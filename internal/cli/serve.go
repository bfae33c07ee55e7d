package cli

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"teamdeck/internal/server"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bundled reference backend",
		Long: strings.TrimSpace(`
Run a local HTTP backend backed by a SQLite database.

The backend speaks the same contract the console consumes:
- Routes mounted under /api (users, projects)
- Success bodies as {"data": ..., "message": ...}
- Error bodies as {"message": ...}
`),
		Example: strings.TrimSpace(`
# Serve on the default console port
teamdeck serve --addr :3000

# Keep the database somewhere specific
teamdeck serve --db /tmp/teamdeck.db
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("serve: missing --addr"))
			}

			path := strings.TrimSpace(dbPath)
			if path == "" {
				path = filepath.Join(app.cfg.StateDir, "teamdeck.db")
			}

			srv, err := server.New(cmd.Context(), path, server.WithLogger(app.log))
			if err != nil {
				return writeErr(cmd, err)
			}
			defer srv.Close()

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}

			actualAddr := ln.Addr().String()
			url := "http://" + actualAddr + "/api"

			mux := http.NewServeMux()
			mux.Handle("/api/", http.StripPrefix("/api", srv.Handler()))

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      actualAddr,
					"url":       url,
					"db":        path,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "teamdeck backend running at %s (db=%s)\n", url, path)

			return http.Serve(ln, mux)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3000", "Bind address (host:port or :port)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default: <state-dir>/teamdeck.db)")
	return cmd
}
