package stats

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/do"
	_ "modernc.org/sqlite"

	"tezbot/app/config"
)

// Counter names match the users table columns.
const (
	CounterMessages     = "total_messages"
	CounterGames        = "total_games"
	CounterFacts        = "total_facts"
	CounterJokes        = "total_jokes"
	CounterQuotes       = "total_quotes"
	CounterCalculations = "total_calculations"
	CounterTranslations = "total_translations"
	CounterRPSGames     = "total_rps_games"
	CounterWeather      = "total_weather_requests"
)

var counterColumns = map[string]bool{
	CounterMessages:     true,
	CounterGames:        true,
	CounterFacts:        true,
	CounterJokes:        true,
	CounterQuotes:       true,
	CounterCalculations: true,
	CounterTranslations: true,
	CounterRPSGames:     true,
	CounterWeather:      true,
}

// UserStats is a per-user usage counter snapshot.
type UserStats struct {
	UserID       int64
	Messages     int
	Games        int
	Facts        int
	Jokes        int
	Quotes       int
	Calculations int
	Translations int
	RPSGames     int
	Weather      int
	LastActive   time.Time
}

type Service struct {
	db *sql.DB
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)
	return Open(cfg.DB.Path)
}

func Open(path string) (*Service, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Service{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *Service) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			total_messages INTEGER NOT NULL DEFAULT 0,
			total_games INTEGER NOT NULL DEFAULT 0,
			total_facts INTEGER NOT NULL DEFAULT 0,
			total_jokes INTEGER NOT NULL DEFAULT 0,
			total_quotes INTEGER NOT NULL DEFAULT 0,
			total_calculations INTEGER NOT NULL DEFAULT 0,
			total_translations INTEGER NOT NULL DEFAULT 0,
			total_rps_games INTEGER NOT NULL DEFAULT 0,
			total_weather_requests INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_active TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS message_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			message_type TEXT NOT NULL,
			content TEXT,
			response TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_message_logs_user ON message_logs(user_id);
	`)
	return err
}

func (s *Service) Close() error {
	return s.db.Close()
}

// Shutdown lets the injector close the database on exit.
func (s *Service) Shutdown() error {
	return s.Close()
}

// Increment bumps one usage counter. Statistics are best effort: failures
// are logged and never surface to the handler.
func (s *Service) Increment(ctx context.Context, userID int64, counter string) {
	if !counterColumns[counter] {
		slog.Error("unknown stats counter", "counter", counter)
		return
	}

	query := fmt.Sprintf(`
		INSERT INTO users (id, %[1]s, last_active) VALUES (?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			%[1]s = %[1]s + 1,
			last_active = CURRENT_TIMESTAMP
	`, counter)

	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		slog.Error("failed to increment stats counter", "counter", counter, "error", err)
	}
}

// LogEvent records a handled message and the reply it produced. Best effort.
func (s *Service) LogEvent(ctx context.Context, userID int64, messageType, content, response string) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO message_logs (user_id, message_type, content, response) VALUES (?, ?, ?, ?)`,
		userID, messageType, clipLogged(content), clipLogged(response))
	if err != nil {
		slog.Error("failed to log message event", "error", err)
	}
}

func clipLogged(s string) string {
	const maxLogged = 500
	if runes := []rune(s); len(runes) > maxLogged {
		return string(runes[:maxLogged])
	}
	return s
}

// User returns the counter snapshot for one user; absent users get zeros.
func (s *Service) User(ctx context.Context, userID int64) (UserStats, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT total_messages, total_games, total_facts, total_jokes, total_quotes,
			total_calculations, total_translations, total_rps_games,
			total_weather_requests, last_active
		FROM users WHERE id = ?
	`, userID)

	stats := UserStats{UserID: userID}
	err := row.Scan(
		&stats.Messages, &stats.Games, &stats.Facts, &stats.Jokes, &stats.Quotes,
		&stats.Calculations, &stats.Translations, &stats.RPSGames,
		&stats.Weather, &stats.LastActive,
	)
	if err == sql.ErrNoRows {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("failed to read user stats: %w", err)
	}

	return stats, nil
}
