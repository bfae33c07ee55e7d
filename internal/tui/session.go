package tui

import (
	"teamdeck/internal/broadcast"
	"teamdeck/internal/model"
	"teamdeck/internal/store"
)

// session owns the per-page stores and their broadcast channels. A page's
// channel is opened when the page becomes active and closed when the user
// switches away, so only the visible page reacts to other console instances.
type session struct {
	cfg Config

	users    *store.Users
	projects *store.Projects

	usersCh    *broadcast.Channel
	projectsCh *broadcast.Channel

	usersStopListen    func()
	projectsStopListen func()

	usersWatch    <-chan struct{}
	projectsWatch <-chan struct{}

	usersStopWatch    func()
	projectsStopWatch func()
}

func newSession(cfg Config) *session {
	return &session{cfg: cfg}
}

func (s *session) mount(p page) error {
	switch p {
	case pageUsers:
		if s.usersCh != nil {
			return nil
		}
		ch, err := broadcast.Open(s.cfg.ChannelsDir, "users", broadcast.WithLogger(s.cfg.Log))
		if err != nil {
			return err
		}
		s.usersCh = ch
		s.users = store.NewUsers(s.cfg.Client,
			store.WithPublisher[model.User, model.UserDraft](ch),
			store.WithLogger[model.User, model.UserDraft](s.cfg.Log))
		s.usersStopListen = store.Listen(s.users, ch)
		s.usersWatch, s.usersStopWatch = s.users.Watch()

	case pageProjects:
		if s.projectsCh != nil {
			return nil
		}
		ch, err := broadcast.Open(s.cfg.ChannelsDir, "projects", broadcast.WithLogger(s.cfg.Log))
		if err != nil {
			return err
		}
		s.projectsCh = ch
		s.projects = store.NewProjects(s.cfg.Client,
			store.WithPublisher[model.Project, model.ProjectDraft](ch),
			store.WithLogger[model.Project, model.ProjectDraft](s.cfg.Log))
		s.projectsStopListen = store.Listen(s.projects, ch)
		s.projectsWatch, s.projectsStopWatch = s.projects.Watch()
	}
	return nil
}

func (s *session) unmount(p page) {
	switch p {
	case pageUsers:
		if s.usersCh == nil {
			return
		}
		s.usersStopWatch()
		s.usersStopListen()
		_ = s.usersCh.Close()
		s.usersCh = nil
		s.users = nil
		s.usersWatch = nil

	case pageProjects:
		if s.projectsCh == nil {
			return
		}
		s.projectsStopWatch()
		s.projectsStopListen()
		_ = s.projectsCh.Close()
		s.projectsCh = nil
		s.projects = nil
		s.projectsWatch = nil
	}
}

func (s *session) close() {
	s.unmount(pageUsers)
	s.unmount(pageProjects)
}
