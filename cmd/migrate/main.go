package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"campusguard/internal/config"
	"campusguard/internal/logger"
	"campusguard/internal/model"
	"campusguard/internal/repository/sqlite"
	"campusguard/internal/repository/xlsx"
	"campusguard/internal/service/storage"

	"github.com/google/uuid"
)

// migrate copies spreadsheet ledgers into the sqlite database and indexes
// intruder images that have no database record yet.
func main() {
	cfg := config.Load()
	ledgerDir := flag.String("ledger", cfg.LedgerDir, "Directory containing entry_exit_records_*.xlsx files")
	intruderDir := flag.String("intruders", cfg.IntruderDir, "Directory containing intruder images")
	dbPath := flag.String("db", cfg.DatabasePath, "Database path")
	flag.Parse()

	ctx := context.Background()
	fmt.Printf("Migrating ledgers from %s and captures from %s to database %s\n", *ledgerDir, *intruderDir, *dbPath)

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Ledgers
	appLog := logger.NewLogger(cfg)
	defer appLog.Close()
	sheets := xlsx.NewAttendanceRepository(*ledgerDir, appLog)
	ledger := sqlite.NewAttendanceRepository(db)

	days, err := sheets.Days()
	if err != nil {
		log.Fatalf("Failed to list ledgers: %v", err)
	}
	rows := 0
	for _, day := range days {
		sessions, err := sheets.LoadDay(ctx, day)
		if err != nil {
			log.Printf("⚠️  Skipping %s: %v", xlsx.FileName(day), err)
			continue
		}
		if err := ledger.SaveDay(ctx, day, sessions); err != nil {
			log.Fatalf("Failed to save ledger %s: %v", day.Format(model.DayLayout), err)
		}
		rows += len(sessions)
	}
	fmt.Printf("✅ Migrated %d day(s), %d session(s)\n", len(days), rows)

	// Intruder captures
	intruders := sqlite.NewIntruderRepository(db)
	files, err := os.ReadDir(*intruderDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No intruder directory found")
			return
		}
		log.Fatalf("Failed to read intruder directory: %v", err)
	}

	indexed, skipped := 0, 0
	for _, file := range files {
		if file.IsDir() || !storage.IsCapture(file.Name()) {
			continue
		}

		capturedAt, ok := storage.ParseFileName(file.Name())
		if !ok {
			log.Printf("⚠️  Skipping %s: unrecognized name", file.Name())
			skipped++
			continue
		}

		existing, err := intruders.GetByFilename(ctx, file.Name())
		if err != nil {
			log.Fatalf("Failed to query %s: %v", file.Name(), err)
		}
		if existing != nil {
			continue
		}

		// Camera and embedding are unknown for images captured before the database existed.
		rec := &model.IntruderRecord{
			ID:         uuid.NewString(),
			Camera:     -1,
			Filename:   file.Name(),
			FilePath:   filepath.Join(*intruderDir, file.Name()),
			CapturedAt: capturedAt,
		}
		if err := intruders.Insert(ctx, rec); err != nil {
			log.Fatalf("Failed to insert %s: %v", file.Name(), err)
		}
		indexed++
	}

	fmt.Printf("✅ Indexed %d intruder image(s)\n", indexed)
	if skipped > 0 {
		fmt.Printf("⚠️  Skipped %d files (invalid format or errors)\n", skipped)
	}
}
