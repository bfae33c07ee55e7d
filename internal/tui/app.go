package tui

import (
	"fmt"
	"strings"

	"teamdeck/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

type appModel struct {
	sess *session

	width  int
	height int

	page          page
	usersTable    tableState
	projectsTable tableState

	// userNames resolves project member ids to display names.
	userNames map[int]string

	modal   modalKind
	form    formState
	confirm confirmState

	toastText string
	toastErr  bool
	toastSeq  int
}

func newAppModel(cfg Config) (appModel, error) {
	m := appModel{
		sess:          newSession(cfg),
		page:          pageUsers,
		usersTable:    newTableState(userCols),
		projectsTable: newTableState(projectCols),
		userNames:     map[int]string{},
		width:         100,
		height:        30,
	}
	if err := m.sess.mount(pageUsers); err != nil {
		return appModel{}, err
	}
	return m, nil
}

func (m appModel) cleanup() { m.sess.close() }

func (m appModel) Init() tea.Cmd {
	return tea.Batch(
		m.fetchCmd(pageUsers),
		watchCmd(pageUsers, m.sess.usersWatch),
	)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refreshTables()
		return m, nil

	case storeChangedMsg:
		m.refreshTables()
		// Re-arm the watch for the page that signaled, unless it was
		// unmounted while the signal was in flight.
		switch msg.p {
		case pageUsers:
			if m.sess.usersWatch != nil {
				return m, watchCmd(pageUsers, m.sess.usersWatch)
			}
		case pageProjects:
			if m.sess.projectsWatch != nil {
				return m, watchCmd(pageProjects, m.sess.projectsWatch)
			}
		}
		return m, nil

	case opDoneMsg:
		return m.handleOpDone(msg)

	case userNamesMsg:
		m.userNames = msg.names
		m.refreshTables()
		return m, nil

	case toastExpireMsg:
		if msg.seq == m.toastSeq {
			m.toastText = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m appModel) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// Failed submits stay in the form so the user can correct and retry;
		// everything else surfaces as a transient toast.
		if (m.modal == modalUserForm || m.modal == modalProjectForm) &&
			(msg.op == "create" || msg.op == "update") && msg.p == m.page {
			m.form.errText = msg.err.Error()
			m.form.submitting = false
			return m, nil
		}
		m.refreshTables()
		return m, m.showToast(msg.err.Error(), true)
	}

	switch msg.op {
	case "create", "update":
		m.modal = modalNone
	case "delete":
		m.modal = modalNone
	}
	m.refreshTables()

	if msg.msg != "" {
		return m, m.showToast(msg.msg, false)
	}
	return m, nil
}

func (m *appModel) showToast(text string, isErr bool) tea.Cmd {
	m.toastText = text
	m.toastErr = isErr
	m.toastSeq++
	return toastExpireCmd(m.toastSeq)
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalUserForm, modalProjectForm:
		return m.handleFormKey(msg)
	case modalConfirmDelete:
		return m.handleConfirmKey(msg)
	}

	ts := m.activeTable()

	if ts.filtering {
		switch msg.String() {
		case "esc":
			ts.filtering = false
			ts.filter.Blur()
			ts.filter.SetValue("")
			ts.pageOff = 0
			m.refreshTables()
			return m, nil
		case "enter":
			ts.filtering = false
			ts.filter.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		ts.filter, cmd = ts.filter.Update(msg)
		ts.pageOff = 0
		m.refreshTables()
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "tab":
		return m.switchPage()

	case "r":
		return m, m.fetchCmd(m.page)

	case "/":
		ts.filtering = true
		ts.filter.Focus()
		return m, nil

	case "n":
		ts.nextPage()
		m.refreshTables()
		return m, nil
	case "p":
		ts.prevPage()
		m.refreshTables()
		return m, nil

	case "s":
		ts.cycleSort()
		m.refreshTables()
		return m, nil
	case "o":
		ts.sortAsc = !ts.sortAsc
		m.refreshTables()
		return m, nil

	case "1", "2", "3", "4":
		ts.toggleHidden(int(msg.String()[0] - '1'))
		m.refreshTables()
		return m, nil

	case "a":
		return m.openCreateForm()

	case "e", "enter":
		return m.openEditForm()

	case "d":
		return m.openDeleteConfirm()
	}

	var cmd tea.Cmd
	ts.tbl, cmd = ts.tbl.Update(msg)
	return m, cmd
}

func (m appModel) switchPage() (tea.Model, tea.Cmd) {
	next := pageProjects
	if m.page == pageProjects {
		next = pageUsers
	}

	m.sess.unmount(m.page)
	if err := m.sess.mount(next); err != nil {
		// Remount what we had; a broken state dir affects both pages anyway.
		_ = m.sess.mount(m.page)
		return m, m.showToast(err.Error(), true)
	}
	m.page = next

	cmds := []tea.Cmd{m.fetchCmd(next)}
	switch next {
	case pageUsers:
		cmds = append(cmds, watchCmd(pageUsers, m.sess.usersWatch))
	case pageProjects:
		cmds = append(cmds, watchCmd(pageProjects, m.sess.projectsWatch))
		cmds = append(cmds, m.userNamesCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m appModel) openCreateForm() (tea.Model, tea.Cmd) {
	switch m.page {
	case pageUsers:
		m.form = newUserForm(nil)
		m.modal = modalUserForm
	case pageProjects:
		m.form = newProjectForm(nil)
		m.modal = modalProjectForm
	}
	return m, nil
}

func (m appModel) openEditForm() (tea.Model, tea.Cmd) {
	id := m.activeTable().selectedID()
	if id == 0 {
		return m, nil
	}
	switch m.page {
	case pageUsers:
		u, ok := m.userByID(id)
		if !ok {
			return m, nil
		}
		m.form = newUserForm(&u)
		m.modal = modalUserForm
	case pageProjects:
		p, ok := m.projectByID(id)
		if !ok {
			return m, nil
		}
		m.form = newProjectForm(&p)
		m.modal = modalProjectForm
	}
	return m, nil
}

func (m appModel) openDeleteConfirm() (tea.Model, tea.Cmd) {
	id := m.activeTable().selectedID()
	if id == 0 {
		return m, nil
	}
	label := fmt.Sprintf("#%d", id)
	switch m.page {
	case pageUsers:
		if u, ok := m.userByID(id); ok {
			label = u.Name
		}
	case pageProjects:
		if p, ok := m.projectByID(id); ok {
			label = p.Name
		}
	}
	m.confirm = confirmState{id: id, label: label, focus: confirmFocusCancel}
	m.modal = modalConfirmDelete
	return m, nil
}

func (m appModel) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.modal = modalNone
		return m, nil
	case "tab", "down":
		m.form.focusNext(1)
		return m, nil
	case "shift+tab", "up":
		m.form.focusNext(-1)
		return m, nil
	case "enter":
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.form.fields[m.form.focus], cmd = m.form.fields[m.form.focus].Update(msg)
	return m, cmd
}

func (m appModel) submitForm() (tea.Model, tea.Cmd) {
	// One request at a time per form; the store serializes anyway, but a
	// double submit would create twice.
	if m.form.submitting {
		return m, nil
	}

	switch m.modal {
	case modalUserForm:
		draft, err := m.form.userDraft()
		if err != nil {
			m.form.errText = err.Error()
			return m, nil
		}
		m.form.errText = ""
		m.form.submitting = true
		if m.form.editID != 0 {
			return m, m.updateUserCmd(m.form.editID, draft)
		}
		return m, m.createUserCmd(draft)

	case modalProjectForm:
		draft, err := m.form.projectDraft()
		if err != nil {
			m.form.errText = err.Error()
			return m, nil
		}
		m.form.errText = ""
		m.form.submitting = true
		if m.form.editID != 0 {
			return m, m.updateProjectCmd(m.form.editID, draft)
		}
		return m, m.createProjectCmd(draft)
	}
	return m, nil
}

func (m appModel) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		m.modal = modalNone
		return m, nil
	case "tab", "left", "right":
		if m.confirm.focus == confirmFocusConfirm {
			m.confirm.focus = confirmFocusCancel
		} else {
			m.confirm.focus = confirmFocusConfirm
		}
		return m, nil
	case "y":
		return m.runDelete()
	case "enter":
		if m.confirm.focus == confirmFocusConfirm {
			return m.runDelete()
		}
		m.modal = modalNone
		return m, nil
	}
	return m, nil
}

func (m appModel) runDelete() (tea.Model, tea.Cmd) {
	id := m.confirm.id
	m.modal = modalNone
	switch m.page {
	case pageUsers:
		return m, m.deleteUserCmd(id)
	case pageProjects:
		return m, m.deleteProjectCmd(id)
	}
	return m, nil
}

func (m *appModel) activeTable() *tableState {
	if m.page == pageProjects {
		return &m.projectsTable
	}
	return &m.usersTable
}

func (m *appModel) refreshTables() {
	if m.sess.users != nil {
		snap := m.sess.users.Snapshot()
		rows := make([][]string, 0, len(snap.Items))
		ids := make([]int, 0, len(snap.Items))
		for _, u := range snap.Items {
			rows = append(rows, []string{
				fmt.Sprintf("%d", u.ID), u.Name, u.Email, fmt.Sprintf("%d", u.Age),
			})
			ids = append(ids, u.ID)
		}
		m.usersTable.refresh(rows, ids, m.tableWidth(pageUsers))
	}
	if m.sess.projects != nil {
		snap := m.sess.projects.Snapshot()
		rows := make([][]string, 0, len(snap.Items))
		ids := make([]int, 0, len(snap.Items))
		for _, p := range snap.Items {
			rows = append(rows, []string{
				fmt.Sprintf("%d", p.ID), p.Name, p.Description, m.memberSummary(p.UserIDs),
			})
			ids = append(ids, p.ID)
		}
		m.projectsTable.refresh(rows, ids, m.tableWidth(pageProjects))
	}
}

func (m *appModel) memberSummary(ids []int) string {
	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		labels = append(labels, model.UserLabel(m.userNames, id))
	}
	return strings.Join(labels, ", ")
}

func (m *appModel) userByID(id int) (model.User, bool) {
	if m.sess.users == nil {
		return model.User{}, false
	}
	for _, u := range m.sess.users.Snapshot().Items {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

func (m *appModel) projectByID(id int) (model.Project, bool) {
	if m.sess.projects == nil {
		return model.Project{}, false
	}
	for _, p := range m.sess.projects.Snapshot().Items {
		if p.ID == id {
			return p, true
		}
	}
	return model.Project{}, false
}

func (m *appModel) tableWidth(p page) int {
	w := m.width - 2
	if p == pageProjects {
		w = m.splitLeftWidth()
	}
	if w < 40 {
		w = 40
	}
	return w
}

func (m *appModel) splitLeftWidth() int {
	w := m.width * 3 / 5
	if w < 48 {
		w = 48
	}
	return w
}
