// backend-go/internal/export/export.go
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shelfworks/planogram/backend-go/internal/domain"
	"github.com/shelfworks/planogram/backend-go/internal/storage"
)

// Exporter renders run results as planogram CSVs and optionally uploads them
// to object storage. A nil ObjectStorage keeps exports local-only.
type Exporter struct {
	store storage.ObjectStorage
}

func NewExporter(store storage.ObjectStorage) *Exporter {
	return &Exporter{store: store}
}

// PlacementsCSV renders the shelf placements of a run, one row per placement
// in placement order.
func (e *Exporter) PlacementsCSV(result *domain.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"gondola_id", "shelf_id", "product_id", "facing", "width"}); err != nil {
		return nil, fmt.Errorf("error writing csv header: %w", err)
	}

	gondolaID := strconv.FormatInt(result.GondolaID, 10)
	for _, p := range result.Placements {
		row := []string{
			gondolaID,
			strconv.FormatInt(p.ShelfID, 10),
			strconv.FormatInt(p.ProductID, 10),
			strconv.Itoa(p.Facing),
			strconv.FormatFloat(p.Width, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("error writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("error flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ReportCSV renders the per-product outcome report of a run.
func (e *Exporter) ReportCSV(result *domain.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"product_id", "category_id", "class", "target_stock", "facing_wanted", "facing_placed", "status", "reason"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("error writing csv header: %w", err)
	}

	for _, r := range result.Products {
		row := []string{
			strconv.FormatInt(r.ProductID, 10),
			strconv.FormatInt(r.CategoryID, 10),
			string(r.Class),
			strconv.Itoa(r.TargetStock),
			strconv.Itoa(r.FacingWanted),
			strconv.Itoa(r.FacingPlaced),
			string(r.Status),
			r.Reason,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("error writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("error flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Upload pushes both CSV documents for a run to object storage under a
// timestamped prefix and returns the placements object key.
func (e *Exporter) Upload(ctx context.Context, result *domain.RunResult) (string, error) {
	if e.store == nil {
		return "", fmt.Errorf("object storage not configured")
	}

	placements, err := e.PlacementsCSV(result)
	if err != nil {
		return "", err
	}
	report, err := e.ReportCSV(result)
	if err != nil {
		return "", err
	}

	stamp := result.StartedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}
	prefix := fmt.Sprintf("planograms/%d/%s", result.GondolaID, stamp.UTC().Format("20060102T150405Z"))

	placementsKey := prefix + "/placements.csv"
	if err := e.store.UploadObject(ctx, placementsKey, placements, "text/csv"); err != nil {
		return "", err
	}
	if err := e.store.UploadObject(ctx, prefix+"/report.csv", report, "text/csv"); err != nil {
		return "", err
	}

	log.Info().
		Int64("gondola_id", result.GondolaID).
		Str("key", placementsKey).
		Msg("planogram export uploaded")

	return placementsKey, nil
}
