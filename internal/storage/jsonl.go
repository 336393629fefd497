// Package storage persists conversion records in git-friendly JSONL with
// an ephemeral SQLite index for queries.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines
// (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// Record describes one completed conversion run.
type Record struct {
	Source      string `json:"source"`               // path of the source JATS XML
	Hash        string `json:"hash"`                 // sha256 of the source bytes
	Title       string `json:"title"`                // plain-text document title
	Succession  string `json:"succession,omitempty"` // DSI, when the edition carries one
	References  int    `json:"references"`           // resolved reference count
	ConvertedAt string `json:"converted_at"`         // RFC 3339 timestamp
	Output      string `json:"output,omitempty"`     // path of the written webstract
}

// ReadAll reads all conversion records from a JSONL file. A missing file
// yields an empty slice.
func ReadAll(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening records file: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading records file: %w", err)
	}

	return records, nil
}

// Append adds a record to the end of a JSONL file, creating it if needed.
func Append(path string, rec Record) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening records file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	if _, err := f.WriteString("\n"); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return nil
}
