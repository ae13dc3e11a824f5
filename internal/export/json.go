package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// FileName returns carbon-emissions-<YYYY-MM-DD>.<format> for day.
func FileName(format string, day time.Time) string {
	return fmt.Sprintf("carbon-emissions-%s.%s", day.Format("2006-01-02"), format)
}

// Path joins dir and FileName, defaulting dir to the working directory.
func Path(dir, format string, day time.Time) string {
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, FileName(format, day))
}

// ToJSON writes data pretty-printed. data is written as received so the file
// matches what the gateway exported.
func ToJSON(data json.RawMessage, path string) error {
	if len(bytes.TrimSpace(data)) == 0 {
		data = json.RawMessage("null")
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("format json: %w", err)
	}
	buf.WriteByte('\n')

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
