package cli

import (
	"fmt"
	"strconv"
	"strings"

	"teamdeck/internal/api"
	"teamdeck/internal/broadcast"
	"teamdeck/internal/format"
	"teamdeck/internal/model"
	"teamdeck/internal/store"

	"github.com/spf13/cobra"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Project commands",
	}
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsCreateCmd(app))
	cmd.AddCommand(newProjectsUpdateCmd(app))
	cmd.AddCommand(newProjectsDeleteCmd(app))
	return cmd
}

func (app *App) projectsStore() (*store.Projects, func(), error) {
	ch, err := broadcast.Open(app.cfg.ChannelsDir(), "projects", broadcast.WithLogger(app.log))
	if err != nil {
		return nil, nil, err
	}
	s := store.NewProjects(app.client(),
		store.WithPublisher[model.Project, model.ProjectDraft](ch),
		store.WithLogger[model.Project, model.ProjectDraft](app.log))
	return s, func() { _ = ch.Close() }, nil
}

type projectListResult struct {
	Data  []model.Project `json:"data"`
	names map[int]string
}

func (r projectListResult) Table() format.Table {
	t := format.Table{Headers: []string{"ID", "NAME", "DESCRIPTION", "MEMBERS"}}
	for _, p := range r.Data {
		labels := make([]string, 0, len(p.UserIDs))
		for _, id := range p.UserIDs {
			labels = append(labels, model.UserLabel(r.names, id))
		}
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(p.ID), p.Name, p.Description, strings.Join(labels, ", "),
		})
	}
	return t
}

type projectResult struct {
	Data    model.Project `json:"data"`
	Message string        `json:"message,omitempty"`
	names   map[int]string
}

func (r projectResult) Table() format.Table {
	return projectListResult{Data: []model.Project{r.Data}, names: r.names}.Table()
}

// memberNames resolves user ids to display names for table output. A failed
// lookup is not fatal: labels fall back to "User <id>".
func memberNames(cmd *cobra.Command, app *App) map[int]string {
	if app.Format != "table" {
		return nil
	}
	users, err := api.Users(app.client()).List(cmd.Context())
	if err != nil {
		return nil
	}
	return model.UserNameIndex(users)
}

func newProjectsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := api.Projects(app.client()).List(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, projectListResult{Data: projects, names: memberNames(cmd, app)})
		},
	}
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	var (
		name        string
		description string
		users       string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDList(users)
			if err != nil {
				return writeErr(cmd, err)
			}

			s, cleanup, err := app.projectsStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cleanup()

			p, msg, err := s.Create(cmd.Context(), model.ProjectDraft{
				Name: name, Description: description, UserIDs: ids,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, projectResult{Data: p, Message: msg, names: memberNames(cmd, app)})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&description, "description", "", "Project description (markdown)")
	cmd.Flags().StringVar(&users, "users", "", "Comma-separated member user ids, e.g. 1,2,3")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newProjectsUpdateCmd(app *App) *cobra.Command {
	var (
		name        string
		description string
		users       string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return writeErr(cmd, fmt.Errorf("invalid project id: %s", args[0]))
			}

			s, cleanup, err := app.projectsStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cleanup()

			current, err := findProject(cmd, app, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			draft := model.ProjectDraft{
				Name:        current.Name,
				Description: current.Description,
				UserIDs:     current.UserIDs,
			}
			if cmd.Flags().Changed("name") {
				draft.Name = name
			}
			if cmd.Flags().Changed("description") {
				draft.Description = description
			}
			if cmd.Flags().Changed("users") {
				ids, err := parseIDList(users)
				if err != nil {
					return writeErr(cmd, err)
				}
				draft.UserIDs = ids
			}

			p, msg, err := s.Update(cmd.Context(), id, draft)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, projectResult{Data: p, Message: msg, names: memberNames(cmd, app)})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&description, "description", "", "Project description (markdown)")
	cmd.Flags().StringVar(&users, "users", "", "Comma-separated member user ids, e.g. 1,2,3")
	return cmd
}

func newProjectsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return writeErr(cmd, fmt.Errorf("invalid project id: %s", args[0]))
			}

			s, cleanup, err := app.projectsStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cleanup()

			msg, err := s.Remove(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"id": id, "message": msg})
		},
	}
}

func findProject(cmd *cobra.Command, app *App, id int) (model.Project, error) {
	projects, err := api.Projects(app.client()).List(cmd.Context())
	if err != nil {
		return model.Project{}, err
	}
	for _, p := range projects {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Project{}, fmt.Errorf("project not found: %d", id)
}

func parseIDList(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []int{}, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid user id: %s", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
