package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func sampleRecord(source string) Record {
	return Record{
		Source:      source,
		Hash:        "deadbeef",
		Title:       "A title",
		Succession:  "wk1LzCaCSKkIvLAYObAvaoLNGPc",
		References:  5,
		ConvertedAt: "2026-08-25T10:00:00Z",
		Output:      "article.json",
	}
}

func TestReadAll_NonExistentFile(t *testing.T) {
	records, err := ReadAll(filepath.Join(t.TempDir(), "missing.jsonl"))
	if err != nil {
		t.Fatalf("ReadAll() error = %v, want nil for missing file", err)
	}
	if len(records) != 0 {
		t.Errorf("ReadAll() returned %d records, want 0", len(records))
	}
}

func TestReadAll_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("writing empty file: %v", err)
	}
	records, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("ReadAll() returned %d records, want 0", len(records))
	}
}

func TestAppendReadAll_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")

	want := []Record{sampleRecord("a.xml"), sampleRecord("b.xml")}
	want[1].Succession = ""
	want[1].Output = ""
	for _, rec := range want {
		if err := Append(path, rec); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadAll() = %+v, want %+v", got, want)
	}
}

func TestReadAll_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	content := `{"source":"a.xml","hash":"h","title":"t","references":1,"converted_at":"2026-08-25T10:00:00Z"}

{"source":"b.xml","hash":"h","title":"t","references":2,"converted_at":"2026-08-25T11:00:00Z"}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}

	records, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ReadAll() returned %d records, want 2", len(records))
	}
	if records[1].Source != "b.xml" || records[1].References != 2 {
		t.Errorf("records[1] = %+v", records[1])
	}
}

func TestReadAll_ReportsLineNumber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.jsonl")
	content := `{"source":"a.xml","hash":"h","title":"t","references":1,"converted_at":"x"}
not json
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}

	_, err := ReadAll(path)
	if err == nil {
		t.Fatal("ReadAll() error = nil, want parse error")
	}
	if got := err.Error(); !strings.Contains(got, "line 2") {
		t.Errorf("error = %q, want line number", got)
	}
}
