package render

import (
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/rewired-gh/polyodds/internal/models"
)

// WriteCSV writes samples to path with the header timestamp,iso_time,price.
// The header is written even when samples is empty.
func WriteCSV(path string, samples []models.PriceSample) (err error) {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "iso_time", "price"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, s := range samples {
		row := []string{
			strconv.FormatInt(int64(s.Timestamp), 10),
			ISOTime(s),
			strconv.FormatFloat(s.Price, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// ISOTime formats the sample time as RFC 3339 in UTC with an explicit
// "+00:00" offset. Microseconds are included only when non-zero.
func ISOTime(s models.PriceSample) string {
	t := s.Time()
	if t.Nanosecond()/1000 != 0 {
		return t.Format("2006-01-02T15:04:05.000000-07:00")
	}
	return t.Format("2006-01-02T15:04:05-07:00")
}
