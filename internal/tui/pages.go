package tui

import (
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

type page int

const (
	pageUsers page = iota
	pageProjects
)

func (p page) String() string {
	if p == pageProjects {
		return "Projects"
	}
	return "Users"
}

const pageSize = 10

// colSpec describes one table column: its title and how rows sort under it.
type colSpec struct {
	title   string
	numeric bool
	// weight splits the leftover width between flexible columns; fixed
	// columns set width instead.
	weight int
	width  int
}

var userCols = []colSpec{
	{title: "ID", numeric: true, width: 5},
	{title: "Name", weight: 2},
	{title: "Email", weight: 3},
	{title: "Age", numeric: true, width: 5},
}

var projectCols = []colSpec{
	{title: "ID", numeric: true, width: 5},
	{title: "Name", weight: 2},
	{title: "Description", weight: 3},
	{title: "Members", weight: 2},
}

// tableState is the view state for one entity page: the bubbles table plus
// filter, sort, pagination and column visibility. Rows are recomputed from a
// store snapshot on every change; the state itself never caches entities.
type tableState struct {
	specs []colSpec

	tbl       table.Model
	filter    textinput.Model
	filtering bool

	sortCol int
	sortAsc bool
	hidden  map[int]bool
	pageOff int

	// rowIDs maps visible row index to entity id.
	rowIDs []int
	// total counts rows after filtering, before pagination.
	total int
}

func newTableState(specs []colSpec) tableState {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(pageSize+1),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(colorHeaderBorder)
	st.Selected = st.Selected.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(false)
	t.SetStyles(st)

	fi := textinput.New()
	fi.Placeholder = "Filter..."
	fi.CharLimit = 80
	fi.Prompt = "/ "

	return tableState{
		specs:   specs,
		tbl:     t,
		filter:  fi,
		sortCol: 0,
		sortAsc: true,
		hidden:  map[int]bool{},
	}
}

// refresh rebuilds the visible table from raw rows. rows[i] must align with
// ids[i]; both describe the full unfiltered snapshot in server order.
func (ts *tableState) refresh(rows [][]string, ids []int, width int) {
	keepID := ts.selectedID()

	type rec struct {
		cells []string
		id    int
	}

	q := strings.ToLower(strings.TrimSpace(ts.filter.Value()))
	recs := make([]rec, 0, len(rows))
	for i, cells := range rows {
		if q != "" && !rowMatches(cells, q) {
			continue
		}
		recs = append(recs, rec{cells: cells, id: ids[i]})
	}
	ts.total = len(recs)

	col := ts.sortCol
	if col >= 0 && col < len(ts.specs) {
		numeric := ts.specs[col].numeric
		sort.SliceStable(recs, func(i, j int) bool {
			a, b := recs[i].cells[col], recs[j].cells[col]
			if !ts.sortAsc {
				a, b = b, a
			}
			if numeric {
				ai, _ := strconv.Atoi(strings.TrimSpace(a))
				bi, _ := strconv.Atoi(strings.TrimSpace(b))
				return ai < bi
			}
			return strings.ToLower(a) < strings.ToLower(b)
		})
	}

	if ts.pageOff*pageSize >= len(recs) && ts.pageOff > 0 {
		ts.pageOff = (len(recs) - 1) / pageSize
		if ts.pageOff < 0 {
			ts.pageOff = 0
		}
	}
	lo := ts.pageOff * pageSize
	hi := lo + pageSize
	if hi > len(recs) {
		hi = len(recs)
	}
	pageRecs := recs[lo:hi]

	visible := ts.visibleCols()
	ts.tbl.SetColumns(ts.layoutColumns(visible, width))

	trows := make([]table.Row, 0, len(pageRecs))
	ts.rowIDs = ts.rowIDs[:0]
	for _, r := range pageRecs {
		cells := make([]string, 0, len(visible))
		for _, ci := range visible {
			cells = append(cells, r.cells[ci])
		}
		trows = append(trows, table.Row(cells))
		ts.rowIDs = append(ts.rowIDs, r.id)
	}
	ts.tbl.SetRows(trows)

	if keepID != 0 {
		for i, id := range ts.rowIDs {
			if id == keepID {
				ts.tbl.SetCursor(i)
				return
			}
		}
	}
	if ts.tbl.Cursor() >= len(trows) {
		ts.tbl.SetCursor(0)
	}
}

func rowMatches(cells []string, q string) bool {
	for _, c := range cells {
		if strings.Contains(strings.ToLower(c), q) {
			return true
		}
	}
	return false
}

func (ts *tableState) visibleCols() []int {
	var out []int
	for i := range ts.specs {
		if !ts.hidden[i] {
			out = append(out, i)
		}
	}
	return out
}

func (ts *tableState) layoutColumns(visible []int, width int) []table.Column {
	if width < 40 {
		width = 40
	}
	// Table chrome: one cell padding per side per column.
	avail := width - 2*len(visible)

	fixed := 0
	weight := 0
	for _, ci := range visible {
		if ts.specs[ci].width > 0 {
			fixed += ts.specs[ci].width
		} else {
			weight += ts.specs[ci].weight
		}
	}
	flex := avail - fixed
	if flex < 0 {
		flex = 0
	}

	cols := make([]table.Column, 0, len(visible))
	for _, ci := range visible {
		spec := ts.specs[ci]
		w := spec.width
		if w == 0 && weight > 0 {
			w = flex * spec.weight / weight
			if w < 8 {
				w = 8
			}
		}
		cols = append(cols, table.Column{Title: spec.title, Width: w})
	}
	return cols
}

// toggleHidden flips one column's visibility; the last visible column can't
// be hidden.
func (ts *tableState) toggleHidden(col int) {
	if col < 0 || col >= len(ts.specs) {
		return
	}
	if !ts.hidden[col] && len(ts.visibleCols()) == 1 {
		return
	}
	if ts.hidden[col] {
		delete(ts.hidden, col)
	} else {
		ts.hidden[col] = true
	}
}

// cycleSort advances the sort column through the visible columns.
func (ts *tableState) cycleSort() {
	visible := ts.visibleCols()
	if len(visible) == 0 {
		return
	}
	for i, ci := range visible {
		if ci == ts.sortCol {
			ts.sortCol = visible[(i+1)%len(visible)]
			return
		}
	}
	ts.sortCol = visible[0]
}

func (ts *tableState) pageCount() int {
	if ts.total == 0 {
		return 1
	}
	return (ts.total + pageSize - 1) / pageSize
}

func (ts *tableState) nextPage() {
	if ts.pageOff+1 < ts.pageCount() {
		ts.pageOff++
		ts.tbl.SetCursor(0)
	}
}

func (ts *tableState) prevPage() {
	if ts.pageOff > 0 {
		ts.pageOff--
		ts.tbl.SetCursor(0)
	}
}

func (ts *tableState) selectedID() int {
	cur := ts.tbl.Cursor()
	if cur < 0 || cur >= len(ts.rowIDs) {
		return 0
	}
	return ts.rowIDs[cur]
}
