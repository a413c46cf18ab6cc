package loader

import (
	"context"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"inspectlog/database"
	"inspectlog/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

//go:embed schema.sql
var schemaSQL string

// dsnOptions turns on WAL, waits on a locked database instead of failing, and
// enforces the logs -> devices foreign key.
const dsnOptions = "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

// Open connects to the SQLite database file at path.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", path+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

// InitDatabase applies the schema and, when seedPath is set, loads the device seed CSV.
func InitDatabase(ctx context.Context, db *sqlx.DB, seedPath, defaultLocation string) error {
	log.Println("Applying database schema...")
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Println("Schema applied successfully.")

	if seedPath == "" {
		return nil
	}
	if _, err := os.Stat(seedPath); os.IsNotExist(err) {
		log.Printf("WARN: %s not found, skipping device seed.", seedPath)
		return nil
	}

	f, err := os.Open(seedPath)
	if err != nil {
		return fmt.Errorf("could not open file %s: %w", seedPath, err)
	}
	defer f.Close()

	n, err := LoadDevicesCSV(ctx, db, f, defaultLocation)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", seedPath, err)
	}
	log.Printf("Loaded %d devices from %s", n, seedPath)
	return nil
}

// LoadDevicesCSV upserts devices from a CSV with an "id,name,location" header.
// A UTF-8 or UTF-16 byte order mark is honoured. Rows without an id are skipped;
// a blank name or location falls back to the placeholder values.
func LoadDevicesCSV(ctx context.Context, db *sqlx.DB, src io.Reader, defaultLocation string) (count int, err error) {
	r := csv.NewReader(transform.NewReader(src, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read header: %w", err)
	}
	cols, err := columnIndex(header, "id")
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			log.Printf("Rolling back device seed due to error: %v", err)
			tx.Rollback()
		} else {
			err = tx.Commit()
			if err != nil {
				log.Printf("Error committing device seed: %v", err)
			}
		}
	}()

	for {
		row, readErr := r.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			log.Printf("WARN: Error reading device seed row (skipping): %v", readErr)
			continue
		}

		id := field(row, cols, "id")
		if id == "" {
			continue
		}
		d := model.PlaceholderDevice(id, defaultLocation)
		if name := field(row, cols, "name"); name != "" {
			d.Name = name
		}
		if loc := field(row, cols, "location"); loc != "" {
			d.Location = loc
		}
		if err = database.UpsertDeviceInTx(ctx, tx, d); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

func columnIndex(header []string, required ...string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, req := range required {
		if _, ok := cols[req]; !ok {
			return nil, fmt.Errorf("required column not found: %s", req)
		}
	}
	return cols, nil
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
