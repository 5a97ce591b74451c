// backend-go/cmd/seed/seeder.go
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
)

func seedMasterData(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}
	dataDir := c.String("data-dir")

	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	log.Println("Starting master data seeding...")

	if err := seedTable(ctx, tx, "stores",
		[]string{"id", "name"},
		filepath.Join(dataDir, "stores.csv")); err != nil {
		return fmt.Errorf("failed to seed stores: %w", err)
	}

	if err := seedTable(ctx, tx, "categories",
		[]string{"id", "parent_id", "level_name", "name"},
		filepath.Join(dataDir, "categories.csv")); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := seedTable(ctx, tx, "products",
		[]string{"id", "ean", "name", "width", "height", "depth", "category_id"},
		filepath.Join(dataDir, "products.csv")); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	if err := seedTable(ctx, tx, "gondolas",
		[]string{"id", "store_id", "name"},
		filepath.Join(dataDir, "gondolas.csv")); err != nil {
		return fmt.Errorf("failed to seed gondolas: %w", err)
	}

	if err := seedTable(ctx, tx, "sections",
		[]string{"id", "gondola_id", "ordering", "width"},
		filepath.Join(dataDir, "sections.csv")); err != nil {
		return fmt.Errorf("failed to seed sections: %w", err)
	}

	if err := seedTable(ctx, tx, "shelves",
		[]string{"id", "section_id", "ordering", "width", "depth"},
		filepath.Join(dataDir, "shelves.csv")); err != nil {
		return fmt.Errorf("failed to seed shelves: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Println("Master data seeding completed successfully!")
	return nil
}

func seedSalesData(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}
	salesDir := c.String("sales-dir")

	ctx := context.Background()

	files, err := filepath.Glob(filepath.Join(salesDir, "*.csv"))
	if err != nil {
		return fmt.Errorf("failed to list sales files: %w", err)
	}
	if len(files) == 0 {
		log.Printf("No sales history files found in %s, skipping\n", salesDir)
		return nil
	}

	for _, file := range files {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if err := seedSalesFile(ctx, tx, file); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to seed sales file %s: %w", file, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
	}

	log.Println("Sales history seeding completed successfully!")
	return nil
}

func seedSalesFile(ctx context.Context, tx *sql.Tx, filePath string) error {
	log.Printf("Seeding sales_history from %s\n", filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := []string{"product_id", "store_id", "day", "quantity", "sale_value", "margin"}
	for _, col := range columns {
		if getColumnIndex(header, col) < 0 {
			return fmt.Errorf("missing required column: %s", col)
		}
	}

	query := `
        INSERT INTO sales_history (product_id, store_id, day, quantity, sale_value, margin)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (product_id, store_id, day) DO UPDATE
        SET quantity = EXCLUDED.quantity,
            sale_value = EXCLUDED.sale_value,
            margin = EXCLUDED.margin
    `

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		args := make([]interface{}, len(columns))
		for i, col := range columns {
			args[i] = record[getColumnIndex(header, col)]
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert sales record: %w", err)
		}
		count++
	}

	log.Printf("Successfully seeded %d sales records\n", count)
	return nil
}

func seedTable(ctx context.Context, tx *sql.Tx, tableName string, columns []string, filePath string) error {
	log.Printf("Seeding %s from %s\n", tableName, filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s",
		tableName,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		buildUpdateClause(columns),
	)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		args := make([]interface{}, len(columns))
		for i, col := range columns {
			idx := getColumnIndex(header, col)
			if idx < 0 || idx >= len(record) {
				return fmt.Errorf("column '%s' missing in %s", col, filePath)
			}
			if record[idx] == "" {
				args[i] = nullIfEmpty(record[idx])
			} else {
				args[i] = record[idx]
			}
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert record into %s: %w", tableName, err)
		}
	}

	log.Printf("Successfully seeded %s\n", tableName)
	return nil
}

func buildUpdateClause(columns []string) string {
	clauses := make([]string, 0, len(columns))
	for _, col := range columns {
		if col == "id" {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	return strings.Join(clauses, ", ")
}

func getColumnIndex(header []string, column string) int {
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), column) {
			return i
		}
	}
	return -1
}
