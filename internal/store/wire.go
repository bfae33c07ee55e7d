package store

import (
	"teamdeck/internal/api"
	"teamdeck/internal/model"
)

// Concrete store shapes for the two entity types. There is one instance of
// each per process, created at startup and passed explicitly to consumers.

type Users = Store[model.User, model.UserDraft]
type Projects = Store[model.Project, model.ProjectDraft]

func NewUsers(client *api.Client, opts ...Option[model.User, model.UserDraft]) *Users {
	return New[model.User, model.UserDraft]("user", api.Users(client), opts...)
}

func NewProjects(client *api.Client, opts ...Option[model.Project, model.ProjectDraft]) *Projects {
	return New[model.Project, model.ProjectDraft]("project", api.Projects(client), opts...)
}
