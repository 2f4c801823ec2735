package utils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseRawDate(t *testing.T) {
	want := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2023-01-05", " 2023/01/05 ", "2023-01-05T10:30:00Z", "2023-01-05 23:59:59"} {
		got, err := ParseRawDate(in)
		if err != nil || !got.Equal(want) {
			t.Errorf("ParseRawDate(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseRawDate("05.01.2023"); err == nil {
		t.Error("unknown layout accepted")
	}
	if _, err := ParseYMD("2023-02-30"); err == nil {
		t.Error("impossible date accepted")
	}
}

func TestDateHelpers(t *testing.T) {
	a := time.Date(2023, 1, 1, 15, 0, 0, 0, time.UTC)
	b := time.Date(2023, 1, 31, 1, 0, 0, 0, time.UTC)
	if n := DaysBetween(a, b); n != 31 {
		t.Errorf("DaysBetween = %d", n)
	}
	if FormatFileDate(a) != "2023_01_01" || FormatYMD(b) != "2023-01-31" {
		t.Error("format")
	}
}

func TestDateValue(t *testing.T) {
	want := time.Date(2023, 3, 9, 0, 0, 0, 0, time.UTC)
	for _, v := range []any{"2023-03-09", []byte("2023-03-09"), time.Date(2023, 3, 9, 12, 0, 0, 0, time.UTC)} {
		got, err := DateValue(v)
		if err != nil || !got.Equal(want) {
			t.Errorf("DateValue(%v) = %v, %v", v, got, err)
		}
	}
	if _, err := DateValue(nil); err == nil {
		t.Error("null accepted")
	}
	if _, err := DateValue(42); err == nil {
		t.Error("int accepted")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	err := WriteFileAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "a,b\n")
		return err
	})
	if err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "a,b\n" {
		t.Fatalf("content = %q, %v", data, err)
	}

	boom := errors.New("boom")
	if err := WriteFileAtomic(path, func(io.Writer) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "a,b\n" {
		t.Error("failed write replaced the file")
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}
