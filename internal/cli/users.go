package cli

import (
	"fmt"
	"strconv"

	"teamdeck/internal/api"
	"teamdeck/internal/broadcast"
	"teamdeck/internal/format"
	"teamdeck/internal/model"
	"teamdeck/internal/store"

	"github.com/spf13/cobra"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User commands",
	}
	cmd.AddCommand(newUsersListCmd(app))
	cmd.AddCommand(newUsersCreateCmd(app))
	cmd.AddCommand(newUsersUpdateCmd(app))
	cmd.AddCommand(newUsersDeleteCmd(app))
	return cmd
}

// usersStore builds a publishing store for one short-lived invocation. The
// returned cleanup closes the broadcast channel.
func (app *App) usersStore() (*store.Users, func(), error) {
	ch, err := broadcast.Open(app.cfg.ChannelsDir(), "users", broadcast.WithLogger(app.log))
	if err != nil {
		return nil, nil, err
	}
	s := store.NewUsers(app.client(),
		store.WithPublisher[model.User, model.UserDraft](ch),
		store.WithLogger[model.User, model.UserDraft](app.log))
	return s, func() { _ = ch.Close() }, nil
}

type userListResult struct {
	Data []model.User `json:"data"`
}

func (r userListResult) Table() format.Table {
	t := format.Table{Headers: []string{"ID", "NAME", "EMAIL", "AGE"}}
	for _, u := range r.Data {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(u.ID), u.Name, u.Email, strconv.Itoa(u.Age),
		})
	}
	return t
}

type userResult struct {
	Data    model.User `json:"data"`
	Message string     `json:"message,omitempty"`
}

func (r userResult) Table() format.Table {
	return userListResult{Data: []model.User{r.Data}}.Table()
}

func newUsersListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := api.Users(app.client()).List(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, userListResult{Data: users})
		},
	}
}

func newUsersCreateCmd(app *App) *cobra.Command {
	var (
		name  string
		email string
		age   int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := app.usersStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cleanup()

			u, msg, err := s.Create(cmd.Context(), model.UserDraft{
				Name: name, Email: email, Age: age,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, userResult{Data: u, Message: msg})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "User name")
	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().IntVar(&age, "age", 0, "User age")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newUsersUpdateCmd(app *App) *cobra.Command {
	var (
		name  string
		email string
		age   int
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return writeErr(cmd, fmt.Errorf("invalid user id: %s", args[0]))
			}

			s, cleanup, err := app.usersStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer cleanup()

			// Updates send the full draft; start from the current server
			// state so unset flags keep their value.
			current, err := findUser(cmd, app, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			draft := model.UserDraft{Name: current.Name, Email: current.Email, Age: current.Age}
			if cmd.Flags().Changed("name") {
				draft.Name = name
			}
			if cmd.Flags().Changed("email") {
				draft.Email = email
			}
			if cmd.Flags().Changed("age") {
				draft.Age = age
			}

			u, msg, err := s.Update(cmd.Context(), id, draft)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, userResult{Data: u, Message: msg})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "User name")
	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().IntVar(&age, "age", 0, "User age")
	return cmd
}

func newUsersDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return writeErr(cmd, fmt.Errorf("invalid user id: %s", args[0]))
			}

			s, cleanup, err := app.usersStore()
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
	return cmd
}

func findUser(cmd *cobra.Command, app *App, id int) (model.User, error) {
	users, err := api.Users(app.client()).List(cmd.Context())
	if err != nil {
		return model.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("user not found: %d", id)
}
