package format

import (
	"bytes"
	"strings"
	"testing"
)

type fakeTabler struct{}

func (fakeTabler) Table() Table {
	return Table{
		Headers: []string{"ID", "NAME"},
		Rows:    [][]string{{"1", "Ada"}, {"2", "Grace"}},
	}
}

func TestWrite_JSONDefault(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"data": []int{1, 2}}, "", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != `{"data":[1,2]}` {
		t.Fatalf("unexpected output: %s", got)
	}
}

func TestWrite_Table(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, fakeTabler{}, "table", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "ID") || !strings.Contains(out, "Grace") {
		t.Fatalf("unexpected table output:\n%s", out)
	}
}

func TestWrite_TableFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"ok": true}, "table", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != `{"ok":true}` {
		t.Fatalf("unexpected output: %s", got)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, "yaml", false); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
