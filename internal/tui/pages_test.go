package tui

import (
	"strconv"
	"testing"
)

func sampleRows() ([][]string, []int) {
	rows := [][]string{
		{"1", "Ada", "ada@example.com", "36"},
		{"2", "Grace", "grace@example.com", "45"},
		{"3", "Linus", "linus@example.com", "9"},
	}
	return rows, []int{1, 2, 3}
}

func TestTableRefresh_KeepsServerOrderByDefault(t *testing.T) {
	ts := newTableState(userCols)
	rows, ids := sampleRows()
	ts.refresh(rows, ids, 80)

	if got := len(ts.tbl.Rows()); got != 3 {
		t.Fatalf("expected 3 rows, got %d", got)
	}
	if ts.rowIDs[0] != 1 || ts.rowIDs[2] != 3 {
		t.Fatalf("unexpected row order: %v", ts.rowIDs)
	}
}

func TestTableRefresh_SortByNumericColumnDescending(t *testing.T) {
	ts := newTableState(userCols)
	ts.sortCol = 3 // Age
	ts.sortAsc = false
	rows, ids := sampleRows()
	ts.refresh(rows, ids, 80)

	// Ages 45, 36, 9 => ids 2, 1, 3.
	want := []int{2, 1, 3}
	for i, id := range want {
		if ts.rowIDs[i] != id {
			t.Fatalf("row %d: expected id %d, got %d (%v)", i, id, ts.rowIDs[i], ts.rowIDs)
		}
	}
}

func TestTableRefresh_SortByNameIsCaseInsensitive(t *testing.T) {
	ts := newTableState(userCols)
	ts.sortCol = 1
	rows := [][]string{
		{"1", "zeta", "z@example.com", "1"},
		{"2", "Alpha", "a@example.com", "2"},
	}
	ts.refresh(rows, []int{1, 2}, 80)

	if ts.rowIDs[0] != 2 {
		t.Fatalf("expected Alpha first, got ids %v", ts.rowIDs)
	}
}

func TestTableRefresh_FilterMatchesAnyColumn(t *testing.T) {
	ts := newTableState(userCols)
	ts.filter.SetValue("grace@")
	rows, ids := sampleRows()
	ts.refresh(rows, ids, 80)

	if ts.total != 1 {
		t.Fatalf("expected 1 filtered row, got %d", ts.total)
	}
	if ts.rowIDs[0] != 2 {
		t.Fatalf("expected id 2, got %v", ts.rowIDs)
	}
}

func TestTableRefresh_Pagination(t *testing.T) {
	ts := newTableState(userCols)

	var rows [][]string
	var ids []int
	for i := 1; i <= 25; i++ {
		rows = append(rows, []string{strconv.Itoa(i), "User", "u@example.com", "1"})
		ids = append(ids, i)
	}
	ts.refresh(rows, ids, 80)

	if ts.pageCount() != 3 {
		t.Fatalf("expected 3 pages, got %d", ts.pageCount())
	}
	if len(ts.rowIDs) != pageSize {
		t.Fatalf("expected %d rows on page 1, got %d", pageSize, len(ts.rowIDs))
	}

	ts.nextPage()
	ts.refresh(rows, ids, 80)
	if ts.rowIDs[0] != 11 {
		t.Fatalf("expected page 2 to start at id 11, got %d", ts.rowIDs[0])
	}

	ts.nextPage()
	ts.refresh(rows, ids, 80)
	if len(ts.rowIDs) != 5 {
		t.Fatalf("expected 5 rows on the last page, got %d", len(ts.rowIDs))
	}

	// Already on the last page.
	ts.nextPage()
	if ts.pageOff != 2 {
		t.Fatalf("expected pageOff to stay at 2, got %d", ts.pageOff)
	}
}

func TestTableRefresh_PageClampsWhenRowsShrink(t *testing.T) {
	ts := newTableState(userCols)

	var rows [][]string
	var ids []int
	for i := 1; i <= 25; i++ {
		rows = append(rows, []string{strconv.Itoa(i), "User", "u@example.com", "1"})
		ids = append(ids, i)
	}
	ts.refresh(rows, ids, 80)
	ts.nextPage()
	ts.nextPage()

	short, shortIDs := sampleRows()
	ts.refresh(short, shortIDs, 80)
	if ts.pageOff != 0 {
		t.Fatalf("expected pageOff clamped to 0, got %d", ts.pageOff)
	}
}

func TestToggleHidden_LastVisibleColumnStays(t *testing.T) {
	ts := newTableState(userCols)
	ts.toggleHidden(0)
	ts.toggleHidden(1)
	ts.toggleHidden(2)
	// Only Age remains; hiding it must be refused.
	ts.toggleHidden(3)

	visible := ts.visibleCols()
	if len(visible) != 1 || visible[0] != 3 {
		t.Fatalf("expected only column 3 visible, got %v", visible)
	}

	ts.toggleHidden(0)
	if len(ts.visibleCols()) != 2 {
		t.Fatalf("expected column 0 back, got %v", ts.visibleCols())
	}
}

func TestToggleHidden_HiddenColumnStillSortsData(t *testing.T) {
	ts := newTableState(userCols)
	ts.sortCol = 3
	ts.toggleHidden(3)
	rows, ids := sampleRows()
	ts.refresh(rows, ids, 80)

	// Sorting by a hidden column still works on the underlying cells.
	if ts.rowIDs[0] != 3 {
		t.Fatalf("expected youngest first, got %v", ts.rowIDs)
	}
	if got := len(ts.tbl.Columns()); got != 3 {
		t.Fatalf("expected 3 visible columns, got %d", got)
	}
}

func TestCycleSort_SkipsHiddenColumns(t *testing.T) {
	ts := newTableState(userCols)
	ts.toggleHidden(1)

	ts.cycleSort() // 0 -> 2 (1 is hidden)
	if ts.sortCol != 2 {
		t.Fatalf("expected sortCol 2, got %d", ts.sortCol)
	}
	ts.cycleSort()
	if ts.sortCol != 3 {
		t.Fatalf("expected sortCol 3, got %d", ts.sortCol)
	}
	ts.cycleSort()
	if ts.sortCol != 0 {
		t.Fatalf("expected wrap to 0, got %d", ts.sortCol)
	}
}

func TestTableRefresh_KeepsSelectionByID(t *testing.T) {
	ts := newTableState(userCols)
	rows, ids := sampleRows()
	ts.refresh(rows, ids, 80)
	ts.tbl.SetCursor(2)

	if ts.selectedID() != 3 {
		t.Fatalf("expected id 3 selected, got %d", ts.selectedID())
	}

	// Resort so the selected entity moves; the selection should follow it.
	ts.sortCol = 3
	ts.refresh(rows, ids, 80)
	if ts.selectedID() != 3 {
		t.Fatalf("expected selection to follow id 3, got %d", ts.selectedID())
	}
}
