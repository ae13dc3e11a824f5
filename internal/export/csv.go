package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/carbontrack/internal/gateway"
)

var csvHeader = []string{"id", "type", "category", "value", "date", "emissions", "notes", "created_at"}

func ToCSV(records []gateway.Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.ID,
			r.Type,
			r.Category,
			formatFloat(r.Value),
			r.Date,
			formatFloat(r.Emissions),
			r.Notes,
			r.CreatedAt,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
