package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	header := m.viewHeader()
	footer := m.viewFooter()

	bodyH := m.height - lipgloss.Height(header) - lipgloss.Height(footer) - 2
	if bodyH < 8 {
		bodyH = 8
	}

	var body string
	if m.modal != modalNone {
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, m.viewModal())
	} else if m.page == pageProjects {
		body = m.viewProjectsPage(bodyH)
	} else {
		body = m.viewUsersPage(bodyH)
	}

	return strings.Join([]string{header, body, footer}, "\n\n")
}

func (m appModel) viewHeader() string {
	tabBase := lipgloss.NewStyle().Padding(0, 2)
	tabActive := tabBase.
		Bold(true).
		Foreground(colorAccentFg).
		Background(colorAccent)

	var tabs []string
	for _, p := range []page{pageUsers, pageProjects} {
		st := tabBase
		if p == m.page {
			st = tabActive
		}
		tabs = append(tabs, st.Render(p.String()))
	}

	title := lipgloss.NewStyle().Bold(true).Render("teamdeck")
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", strings.Join(tabs, " "))
}

func (m appModel) viewUsersPage(bodyH int) string {
	return m.viewTablePage(&m.usersTable, m.usersStatus(), bodyH)
}

func (m appModel) viewProjectsPage(bodyH int) string {
	leftW := m.splitLeftWidth()
	rightW := m.width - leftW - 2
	if rightW < 24 {
		rightW = 24
	}

	left := m.viewTablePage(&m.projectsTable, m.projectsStatus(), bodyH)
	right := m.viewProjectDetail(rightW)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		normalizePane(left, leftW, bodyH),
		"  ",
		normalizePane(right, rightW, bodyH),
	)
}

func (m appModel) viewTablePage(ts *tableState, status string, bodyH int) string {
	var parts []string

	if ts.filtering || strings.TrimSpace(ts.filter.Value()) != "" {
		parts = append(parts, ts.filter.View())
	}
	parts = append(parts, ts.tbl.View())
	parts = append(parts, status)

	return strings.Join(parts, "\n")
}

func (m appModel) usersStatus() string {
	if m.sess.users == nil {
		return ""
	}
	snap := m.sess.users.Snapshot()
	return m.statusLine(&m.usersTable, len(snap.Items), snap.Loading, snap.Err)
}

func (m appModel) projectsStatus() string {
	if m.sess.projects == nil {
		return ""
	}
	snap := m.sess.projects.Snapshot()
	return m.statusLine(&m.projectsTable, len(snap.Items), snap.Loading, snap.Err)
}

func (m appModel) statusLine(ts *tableState, total int, loading bool, errText string) string {
	left := fmt.Sprintf("page %d/%d · %d of %d", ts.pageOff+1, ts.pageCount(), ts.total, total)
	line := styleMuted().Render(left)
	if loading {
		line += "  " + styleMuted().Render("loading...")
	}
	if errText != "" {
		line += "\n" + lipgloss.NewStyle().Foreground(colorErrorFg).Render(errText)
	}
	return line
}

func (m appModel) viewProjectDetail(width int) string {
	id := m.projectsTable.selectedID()
	if id == 0 {
		return styleMuted().Render("No project selected.")
	}
	p, ok := m.projectByID(id)
	if !ok {
		return styleMuted().Render("No project selected.")
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(p.Name))
	b.WriteString("\n")
	b.WriteString(styleMuted().Render(fmt.Sprintf("#%d", p.ID)))
	b.WriteString("\n\n")

	if len(p.UserIDs) > 0 {
		b.WriteString(styleMuted().Render("Members"))
		b.WriteString("\n")
		b.WriteString(m.memberSummary(p.UserIDs))
		b.WriteString("\n\n")
	}

	if strings.TrimSpace(p.Description) != "" {
		b.WriteString(renderMarkdown(p.Description, width-2))
	}

	return b.String()
}

func (m appModel) viewModal() string {
	switch m.modal {
	case modalUserForm:
		title := "New user"
		if m.form.editID != 0 {
			title = fmt.Sprintf("Edit user #%d", m.form.editID)
		}
		return m.form.view(m.width, title)
	case modalProjectForm:
		title := "New project"
		if m.form.editID != 0 {
			title = fmt.Sprintf("Edit project #%d", m.form.editID)
		}
		return m.form.view(m.width, title)
	case modalConfirmDelete:
		kind := "user"
		if m.page == pageProjects {
			kind = "project"
		}
		body := fmt.Sprintf("Delete %s %q? This cannot be undone.", kind, m.confirm.label)
		return renderConfirmModal(m.width, "Confirm delete", body, "Delete", "Cancel", m.confirm.focus)
	}
	return ""
}

func (m appModel) viewFooter() string {
	var help string
	switch {
	case m.modal != modalNone:
		help = "esc: close"
	case m.activeTable().filtering:
		help = "enter: apply filter   esc: clear"
	default:
		help = "tab: page   a: add   e: edit   d: delete   /: filter   s/o: sort   1-4: columns   n/p: page   r: reload   q: quit"
	}

	line := styleMuted().Render(help)
	if m.toastText != "" {
		st := lipgloss.NewStyle().Foreground(colorSuccessFg)
		if m.toastErr {
			st = lipgloss.NewStyle().Foreground(colorErrorFg)
		}
		line = st.Render(m.toastText) + "\n" + line
	}
	return line
}
