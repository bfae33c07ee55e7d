package tui

import (
	"context"
	"time"

	"teamdeck/internal/model"
	"teamdeck/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

type storeChangedMsg struct{ p page }

type opDoneMsg struct {
	p   page
	op  string
	msg string
	err error
}

type userNamesMsg struct{ names map[int]string }

type toastExpireMsg struct{ seq int }

const toastDuration = 3 * time.Second

// watchCmd blocks until the store signals a state transition, then re-arms
// from Update. A closed watch channel (page unmounted) produces no message.
func watchCmd(p page, ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{p: p}
	}
}

func toastExpireCmd(seq int) tea.Cmd {
	return tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastExpireMsg{seq: seq} })
}

// Mutation commands capture the store pointer up front: a pending command
// must not chase the session after its page was unmounted.
func (m appModel) fetchCmd(p page) tea.Cmd {
	users, projects := m.sess.users, m.sess.projects
	return func() tea.Msg {
		var err error
		switch {
		case p == pageUsers && users != nil:
			err = users.Fetch(context.Background())
		case p == pageProjects && projects != nil:
			err = projects.Fetch(context.Background())
		}
		return opDoneMsg{p: p, op: "fetch", err: err}
	}
}

func (m appModel) createUserCmd(draft model.UserDraft) tea.Cmd {
	s := m.sess.users
	return func() tea.Msg {
		_, msg, err := s.Create(context.Background(), draft)
		return opDoneMsg{p: pageUsers, op: "create", msg: msg, err: err}
	}
}

func (m appModel) updateUserCmd(id int, draft model.UserDraft) tea.Cmd {
	s := m.sess.users
	return func() tea.Msg {
		_, msg, err := s.Update(context.Background(), id, draft)
		return opDoneMsg{p: pageUsers, op: "update", msg: msg, err: err}
	}
}

func (m appModel) deleteUserCmd(id int) tea.Cmd {
	s := m.sess.users
	return func() tea.Msg {
		msg, err := s.Remove(context.Background(), id)
		return opDoneMsg{p: pageUsers, op: "delete", msg: msg, err: err}
	}
}

func (m appModel) createProjectCmd(draft model.ProjectDraft) tea.Cmd {
	s := m.sess.projects
	return func() tea.Msg {
		_, msg, err := s.Create(context.Background(), draft)
		return opDoneMsg{p: pageProjects, op: "create", msg: msg, err: err}
	}
}

func (m appModel) updateProjectCmd(id int, draft model.ProjectDraft) tea.Cmd {
	s := m.sess.projects
	return func() tea.Msg {
		_, msg, err := s.Update(context.Background(), id, draft)
		return opDoneMsg{p: pageProjects, op: "update", msg: msg, err: err}
	}
}

func (m appModel) deleteProjectCmd(id int) tea.Cmd {
	s := m.sess.projects
	return func() tea.Msg {
		msg, err := s.Remove(context.Background(), id)
		return opDoneMsg{p: pageProjects, op: "delete", msg: msg, err: err}
	}
}

// userNamesCmd resolves user names for the projects page's member labels out
// of a user store fetch. The projects page has no user store mounted, so a
// fetch-only store stands in; it never publishes. A failed lookup keeps the
// previous index and labels fall back to "User <id>".
func (m appModel) userNamesCmd() tea.Cmd {
	s := m.sess.users
	if s == nil {
		s = store.NewUsers(m.sess.cfg.Client)
	}
	return func() tea.Msg {
		if err := s.Fetch(context.Background()); err != nil {
			return nil
		}
		return userNamesMsg{names: model.UserNameIndex(s.Snapshot().Items)}
	}
}
