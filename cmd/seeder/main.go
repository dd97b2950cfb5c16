package main

import (
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/keio-howl/howlhub/internal/database"
)

// The seeder imports a legacy aggregate sheet into the per-game ledger. The
// input CSV has one row per player: name,win,lose. Each aggregate count is
// expanded into individual match_results rows under a fixed historical date,
// so the scoring pipeline sees the same per-game shape as live records.

const (
	seedGameDate = "2024-04-01"
	seedMemo     = "imported from legacy sheet"
	batchSize    = 100
)

type aggregateRow struct {
	name string
	wins int
	loss int
}

func loadConfig() (dbName, primaryURL, authToken string) {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}
	dbName = os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "howlhub.db"
	}
	return dbName, os.Getenv("TURSO_PRIMARY_URL"), os.Getenv("TURSO_AUTH_TOKEN")
}

func main() {
	csvPath := flag.String("csv", "legacy_results.csv", "Path to the aggregate name,win,lose CSV")
	migrationsDir := flag.String("migrations", "migrations", "Path to the goose migrations directory")
	flag.Parse()

	log.Info("Starting ledger seeder...", "csv", *csvPath)
	dbName, primaryURL, authToken := loadConfig()

	db, teardown, err := database.InitDB(dbName, primaryURL, authToken, *migrationsDir)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	rows, err := readAggregateCSV(*csvPath)
	if err != nil {
		log.Fatalf("Failed to read CSV: %s", err)
	}
	log.Info("Read aggregate rows", "players", len(rows))

	startTime := time.Now()
	total := 0
	for _, row := range rows {
		playerID, err := resolvePlayer(db, row.name)
		if err != nil {
			log.Fatalf("Failed to resolve player %s: %s", row.name, err)
		}
		inserted, err := insertGames(db, playerID, row)
		if err != nil {
			log.Fatalf("Failed to insert games for %s: %s", row.name, err)
		}
		total += inserted
		log.Info("Seeded player", "name", row.name, "wins", row.wins, "losses", row.loss)
	}

	log.Info("Seeding complete.", "rows_inserted", total, "duration", time.Since(startTime))
}

func readAggregateCSV(path string) ([]aggregateRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	var rows []aggregateRow
	for i, record := range records {
		if len(record) < 3 {
			return nil, fmt.Errorf("row %d: expected name,win,lose", i+1)
		}
		name := strings.TrimSpace(record[0])
		// Skip a header row if present.
		if i == 0 && strings.EqualFold(name, "name") {
			continue
		}
		wins, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad win count: %w", i+1, err)
		}
		loss, err := strconv.Atoi(strings.TrimSpace(record[2]))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad lose count: %w", i+1, err)
		}
		if name == "" || wins < 0 || loss < 0 {
			return nil, fmt.Errorf("row %d: invalid values", i+1)
		}
		rows = append(rows, aggregateRow{name: name, wins: wins, loss: loss})
	}
	return rows, nil
}

// resolvePlayer finds an existing roster entry by display name or creates a
// placeholder one. Legacy sheet players have no student id on record.
func resolvePlayer(db *sql.DB, name string) (string, error) {
	var id string
	err := db.QueryRow("SELECT id FROM players WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	id = uuid.NewString()
	_, err = db.Exec(
		"INSERT INTO players (id, student_id, name, is_active) VALUES (?, ?, ?, 1)",
		id, "legacy", name,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func insertGames(db *sql.DB, playerID string, row aggregateRow) (int, error) {
	games := make([]int, 0, row.wins+row.loss)
	for i := 0; i < row.wins; i++ {
		games = append(games, 1)
	}
	for i := 0; i < row.loss; i++ {
		games = append(games, 0)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}

	valueStrings := make([]string, 0, batchSize)
	valueArgs := make([]any, 0, batchSize*6)

	for i, isWin := range games {
		// One distinct timestamp per seeded game so undo never treats the
		// import as a single batch.
		createdAt := fmt.Sprintf("%s-seed-%s-%06d", seedGameDate, playerID, i)
		valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?)")
		valueArgs = append(valueArgs, uuid.NewString(), seedGameDate, playerID, isWin, seedMemo, createdAt)

		if (i+1)%batchSize == 0 || (i+1) == len(games) {
			stmt := fmt.Sprintf(
				"INSERT INTO match_results (id, game_date, player_id, is_win, memo, created_at) VALUES %s;",
				strings.Join(valueStrings, ","),
			)
			if _, err := tx.Exec(stmt, valueArgs...); err != nil {
				tx.Rollback()
				return 0, err
			}
			valueStrings = valueStrings[:0]
			valueArgs = valueArgs[:0]
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(games), nil
}
