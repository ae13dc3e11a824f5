package export

import (
	"context"
	"fmt"
	"time"

	"github.com/sadopc/carbontrack/internal/gateway"
)

// Source provides the bulk export payload.
type Source interface {
	ExportData(ctx context.Context) (gateway.Export, error)
}

// Write fetches the export from src and writes it to dir in format. It
// returns the written path.
func Write(ctx context.Context, src Source, format, dir string, day time.Time) (string, error) {
	if format != FormatJSON && format != FormatCSV {
		return "", fmt.Errorf("unknown export format %q", format)
	}
	exp, err := src.ExportData(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch export: %w", err)
	}

	path := Path(dir, format, day)
	if format == FormatCSV {
		err = ToCSV(exp.Records, path)
	} else {
		err = ToJSON(exp.Data, path)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}
