package tui

import (
	"fmt"
	"strconv"
	"strings"

	"teamdeck/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalUserForm
	modalProjectForm
	modalConfirmDelete
)

// formState backs the create/edit modals. editID zero means create.
type formState struct {
	labels     []string
	fields     []textinput.Model
	focus      int
	editID     int
	errText    string
	submitting bool
}

func newFormState(labels []string, values []string) formState {
	fields := make([]textinput.Model, len(labels))
	for i := range labels {
		ti := textinput.New()
		ti.CharLimit = 200
		ti.Prompt = ""
		if i < len(values) {
			ti.SetValue(values[i])
		}
		fields[i] = ti
	}
	if len(fields) > 0 {
		fields[0].Focus()
	}
	return formState{labels: labels, fields: fields}
}

func newUserForm(u *model.User) formState {
	values := []string{"", "", ""}
	f := newFormState([]string{"Name", "Email", "Age"}, values)
	if u != nil {
		f.editID = u.ID
		f.fields[0].SetValue(u.Name)
		f.fields[1].SetValue(u.Email)
		f.fields[2].SetValue(strconv.Itoa(u.Age))
	}
	return f
}

func newProjectForm(p *model.Project) formState {
	f := newFormState([]string{"Name", "Description", "Members (ids, e.g. 1,2)"}, []string{"", "", ""})
	if p != nil {
		f.editID = p.ID
		f.fields[0].SetValue(p.Name)
		f.fields[1].SetValue(p.Description)
		f.fields[2].SetValue(joinIDs(p.UserIDs))
	}
	return f
}

func joinIDs(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}

func (f *formState) focusNext(delta int) {
	if len(f.fields) == 0 {
		return
	}
	f.fields[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	f.fields[f.focus].Focus()
}

func (f *formState) userDraft() (model.UserDraft, error) {
	name := strings.TrimSpace(f.fields[0].Value())
	email := strings.TrimSpace(f.fields[1].Value())
	ageRaw := strings.TrimSpace(f.fields[2].Value())

	age := 0
	if ageRaw != "" {
		v, err := strconv.Atoi(ageRaw)
		if err != nil {
			return model.UserDraft{}, fmt.Errorf("age must be a number")
		}
		age = v
	}
	return model.UserDraft{Name: name, Email: email, Age: age}, nil
}

func (f *formState) projectDraft() (model.ProjectDraft, error) {
	name := strings.TrimSpace(f.fields[0].Value())
	description := strings.TrimSpace(f.fields[1].Value())

	ids := []int{}
	raw := strings.TrimSpace(f.fields[2].Value())
	if raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil {
				return model.ProjectDraft{}, fmt.Errorf("member ids must be numbers: %q", part)
			}
			ids = append(ids, id)
		}
	}
	return model.ProjectDraft{Name: name, Description: description, UserIDs: ids}, nil
}

func (f *formState) view(screenW int, title string) string {
	bodyW := modalBodyWidth(screenW)

	var b strings.Builder
	for i, label := range f.labels {
		lb := label
		if i == f.focus {
			lb = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render(label)
		} else {
			lb = styleMuted().Render(label)
		}
		b.WriteString(lb)
		b.WriteString("\n")
		b.WriteString(renderInputLine(bodyW, f.fields[i].View()))
		b.WriteString("\n")
	}

	if f.errText != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(colorErrorFg).Width(bodyW).Render(f.errText))
		b.WriteString("\n")
	}

	help := "tab: next field   enter: save   esc: cancel"
	if f.submitting {
		help = "saving..."
	}
	b.WriteString("\n")
	b.WriteString(styleMuted().Width(bodyW).Render(help))

	return renderModalBox(screenW, title, b.String())
}

// confirmState backs the delete confirmation dialog.
type confirmState struct {
	id    int
	label string
	focus confirmModalFocus
}
