package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ParseCSV reads a comma separated roster with a header row.
func ParseCSV(ctx context.Context, r io.Reader, opts Options) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyRoster
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv rows: %w", err)
	}
	return collect(ctx, header, records, opts)
}
