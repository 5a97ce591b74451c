// backend-go/internal/ingest/service.go
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shelfworks/planogram/backend-go/internal/domain"
	"github.com/shelfworks/planogram/backend-go/internal/repository"
)

// Columns a sales snapshot CSV must carry. Day is a calendar date in
// YYYY-MM-DD form; ean identifies the product.
var requiredColumns = []string{"ean", "store_id", "day", "quantity", "sale_value", "margin"}

const batchSize = 500

// Service downloads sales snapshot CSVs from Drive and loads them into the
// sales history table.
type Service struct {
	drive *DriveService
	repo  repository.IngestRepository
}

func NewService(drive *DriveService, repo repository.IngestRepository) *Service {
	return &Service{drive: drive, repo: repo}
}

// IngestResult summarizes one file load.
type IngestResult struct {
	Rows     int `json:"rows"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// IngestFile streams one Drive CSV into sales history. Rows whose EAN does
// not resolve to a catalog product are skipped and counted, not fatal.
func (s *Service) IngestFile(ctx context.Context, fileID string) (*IngestResult, error) {
	pr, pw := io.Pipe()
	go func() {
		err := s.drive.DownloadFile(fileID, pw)
		pw.CloseWithError(err)
	}()

	result, err := s.ingestCSV(ctx, pr)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("file_id", fileID).
		Int("rows", result.Rows).
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Msg("sales snapshot ingested")

	return result, nil
}

func (s *Service) ingestCSV(ctx context.Context, r io.Reader) (*IngestResult, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colMap := make(map[string]int)
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colMap[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	result := &IngestResult{}
	var batch []domain.SalesRecord
	var eans []string
	var rows [][]string

	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		resolved, err := s.repo.ResolveEANs(ctx, eans)
		if err != nil {
			return err
		}
		batch = batch[:0]
		for _, record := range rows {
			parsed, ok, err := parseRow(record, colMap, resolved)
			if err != nil {
				return err
			}
			if !ok {
				result.Skipped++
				continue
			}
			batch = append(batch, parsed)
		}
		inserted, err := s.repo.InsertSalesRecords(ctx, batch)
		if err != nil {
			return err
		}
		result.Inserted += inserted
		rows = rows[:0]
		eans = eans[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		result.Rows++
		rows = append(rows, record)
		if idx := colMap["ean"]; idx < len(record) {
			eans = append(eans, strings.TrimSpace(record[idx]))
		}

		if len(rows) >= batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}
	return result, nil
}

func parseRow(record []string, colMap map[string]int, resolved map[string]int64) (domain.SalesRecord, bool, error) {
	getValue := func(colName string) string {
		if idx, ok := colMap[colName]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	ean := getValue("ean")
	productID, ok := resolved[ean]
	if !ok {
		return domain.SalesRecord{}, false, nil
	}

	storeID, err := strconv.ParseInt(getValue("store_id"), 10, 64)
	if err != nil {
		return domain.SalesRecord{}, false, fmt.Errorf("invalid store_id %q: %w", getValue("store_id"), err)
	}

	day, err := time.Parse("2006-01-02", getValue("day"))
	if err != nil {
		return domain.SalesRecord{}, false, fmt.Errorf("invalid day %q: %w", getValue("day"), err)
	}

	getFloat := func(colName string) (float64, error) {
		val := getValue(colName)
		if val == "" {
			return 0, nil
		}
		return strconv.ParseFloat(val, 64)
	}

	quantity, err := getFloat("quantity")
	if err != nil {
		return domain.SalesRecord{}, false, fmt.Errorf("invalid quantity: %w", err)
	}
	saleValue, err := getFloat("sale_value")
	if err != nil {
		return domain.SalesRecord{}, false, fmt.Errorf("invalid sale_value: %w", err)
	}
	margin, err := getFloat("margin")
	if err != nil {
		return domain.SalesRecord{}, false, fmt.Errorf("invalid margin: %w", err)
	}

	return domain.SalesRecord{
		ProductID: productID,
		StoreID:   storeID,
		Day:       day,
		Quantity:  quantity,
		SaleValue: saleValue,
		Margin:    margin,
	}, true, nil
}
