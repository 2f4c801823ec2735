package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadRecords(t *testing.T) {
	data := "\ufeffid_invoice, client ,total\nA1,Acme,10\n\nA2,\"Globex, Inc\",20\nA3,Short\n"
	header, recs, err := readRecords("x.csv", strings.NewReader(data))
	if err != nil {
		t.Fatalf("readRecords: %v", err)
	}
	if strings.Join(header, "|") != "id_invoice|client|total" {
		t.Fatalf("header = %q", header)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	if v, _ := recs[1].Get("client"); v != "Globex, Inc" {
		t.Errorf("quoted cell = %q", v)
	}
	if recs[1].Line != 4 {
		t.Errorf("line = %d, want 4", recs[1].Line)
	}
	if v, ok := recs[2].Get("total"); !ok || v != "" {
		t.Errorf("short row total = %q, %v", v, ok)
	}
}

func TestReadRecords_Empty(t *testing.T) {
	header, recs, err := readRecords("empty.csv", strings.NewReader(""))
	if err != nil || header != nil || recs != nil {
		t.Fatalf("got %v %v %v", header, recs, err)
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	if err := WriteCSV(path, []string{"a", "b"}, [][]string{{"1", "x,y"}}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a,b\n1,\"x,y\"\n" {
		t.Errorf("file = %q", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}
