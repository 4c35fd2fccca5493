package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"ppe-gate/internal/domain/entity"
	"ppe-gate/internal/domain/port"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DefaultHistoryLimit сколько проходов отдавать, если лимит не задан
const DefaultHistoryLimit = 20

// SQLitePassStore журнал проходов в sqlite
type SQLitePassStore struct {
	db  *sql.DB
	log zerolog.Logger
}

// OpenSQLitePassStore открывает базу и применяет миграции
func OpenSQLitePassStore(path string, logger zerolog.Logger) (*SQLitePassStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// одна запись за раз, иначе sqlite отвечает SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	s := &SQLitePassStore{db: db, log: logger.With().Str("component", "sqlite").Logger()}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLitePassStore) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	// m не закрываем: Close закрыл бы общее соединение
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{log: s.log}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Record сохраняет итог прохода
func (s *SQLitePassStore) Record(ctx context.Context, outcome entity.PassOutcome, _ entity.Frame) error {
	result, err := json.Marshal(outcome.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	detections, err := json.Marshal(outcome.Detections)
	if err != nil {
		return fmt.Errorf("encode detections: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO passes (id, frame_seq, at_unix_ns, decision, misplaced, required, result, detections)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		outcome.ID, outcome.FrameSeq, outcome.At.UnixNano(), string(outcome.Decision),
		outcome.Result.Misplaced, outcome.Required.String(), string(result), string(detections),
	)
	if err != nil {
		return fmt.Errorf("insert pass %s: %w", outcome.ID, err)
	}
	return nil
}

// Recent возвращает последние проходы, новые первыми
func (s *SQLitePassStore) Recent(ctx context.Context, limit int) ([]entity.PassOutcome, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, frame_seq, at_unix_ns, decision, required, result, detections
		FROM passes
		ORDER BY at_unix_ns DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query passes: %w", err)
	}
	defer rows.Close()

	var out []entity.PassOutcome
	for rows.Next() {
		var (
			o                          entity.PassOutcome
			atNs                       int64
			decision, required         string
			resultJSON, detectionsJSON string
		)
		if err := rows.Scan(&o.ID, &o.FrameSeq, &atNs, &decision, &required, &resultJSON, &detectionsJSON); err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}

		o.At = time.Unix(0, atNs).UTC()
		o.Decision = entity.AccessDecision(decision)
		if o.Required, err = entity.ParseRequiredSet(required); err != nil {
			return nil, fmt.Errorf("pass %s required: %w", o.ID, err)
		}
		if err := json.Unmarshal([]byte(resultJSON), &o.Result); err != nil {
			return nil, fmt.Errorf("pass %s result: %w", o.ID, err)
		}
		if err := json.Unmarshal([]byte(detectionsJSON), &o.Detections); err != nil {
			return nil, fmt.Errorf("pass %s detections: %w", o.ID, err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Close закрывает базу
func (s *SQLitePassStore) Close() error {
	return s.db.Close()
}

// migrateLogger реализует migrate.Logger поверх zerolog
type migrateLogger struct {
	log zerolog.Logger
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Msgf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}

var (
	_ port.PassRecorder = (*SQLitePassStore)(nil)
	_ port.PassHistory  = (*SQLitePassStore)(nil)
)
