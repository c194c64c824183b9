package storage

// sqlite.go — persistencia de series y ejecuciones en SQLite.
//
// Esquema:
//   - `series`:         una fila por observación, clave (key, ts). Guardar
//                       una serie reemplaza por completo la versión anterior.
//   - `runs`:           una fila por ejecución del pipeline, con la config
//                       YAML con la que se lanzó. El ID es un UUID acuñado
//                       aquí, en el borde de persistencia.
//   - `trades`:         los trades de cada ejecución, numerados por seq.
//   - `report_metrics`: el informe aplanado a filas (metric, value), la
//                       misma forma clave→valor que usan tablas y export.
//
// Los timestamps se guardan como texto UTC de ancho fijo: el orden
// lexicográfico coincide con el cronológico y el round-trip es exacto.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/TUTULEMAN/bond-arbitrage-project/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS series (
    key    TEXT NOT NULL,
    ts     TEXT NOT NULL,
    spread REAL NOT NULL,
    PRIMARY KEY (key, ts)
);

CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    series_key  TEXT NOT NULL,
    label       TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL,
    config_yaml TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS trades (
    run_id       TEXT    NOT NULL,
    seq          INTEGER NOT NULL,
    entry_time   TEXT    NOT NULL,
    entry_spread REAL    NOT NULL,
    direction    TEXT    NOT NULL,
    size         REAL    NOT NULL,
    exit_time    TEXT    NOT NULL,
    exit_spread  REAL    NOT NULL,
    pnl          REAL    NOT NULL,
    exit_reason  TEXT    NOT NULL,
    PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS report_metrics (
    run_id TEXT NOT NULL,
    metric TEXT NOT NULL,
    value  REAL NOT NULL,
    PRIMARY KEY (run_id, metric)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
`

// timeFormat es UTC de ancho fijo: ordena igual que el instante.
const timeFormat = "2006-01-02 15:04:05.000000000"

// ErrNotFound indica que la clave o el run pedido no existe.
var ErrNotFound = errors.New("not found")

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica
// el schema. Usa ":memory:" para una base efímera.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: set WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// SaveSeries guarda la serie bajo key, reemplazando la versión anterior.
func (s *SQLiteStorage) SaveSeries(ctx context.Context, key string, series domain.SpreadSeries) error {
	if series.Len() == 0 {
		return domain.InsufficientDataError{Op: "storage.SaveSeries", Need: 1, Got: 0}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveSeries: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM series WHERE key = ?`, key); err != nil {
		return fmt.Errorf("storage.SaveSeries: clear %q: %w", key, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO series (key, ts, spread) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveSeries: prepare: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < series.Len(); i++ {
		obs := series.At(i)
		if _, err := stmt.ExecContext(ctx, key, formatTime(obs.Time), obs.Spread); err != nil {
			return fmt.Errorf("storage.SaveSeries: insert obs %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveSeries: commit: %w", err)
	}
	return nil
}

// LoadSeries recupera la serie guardada bajo key, ordenada por timestamp.
func (s *SQLiteStorage) LoadSeries(ctx context.Context, key string) (domain.SpreadSeries, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, spread FROM series WHERE key = ? ORDER BY ts`, key,
	)
	if err != nil {
		return domain.SpreadSeries{}, fmt.Errorf("storage.LoadSeries: query: %w", err)
	}
	defer rows.Close()

	var obs []domain.SpreadObservation
	for rows.Next() {
		var ts string
		var spread float64
		if err := rows.Scan(&ts, &spread); err != nil {
			return domain.SpreadSeries{}, fmt.Errorf("storage.LoadSeries: scan: %w", err)
		}
		t, err := parseTime(ts)
		if err != nil {
			return domain.SpreadSeries{}, fmt.Errorf("storage.LoadSeries: %w", err)
		}
		obs = append(obs, domain.SpreadObservation{Time: t, Spread: spread})
	}
	if err := rows.Err(); err != nil {
		return domain.SpreadSeries{}, fmt.Errorf("storage.LoadSeries: rows: %w", err)
	}
	if len(obs) == 0 {
		return domain.SpreadSeries{}, fmt.Errorf("storage.LoadSeries: series %q: %w", key, ErrNotFound)
	}

	series, err := domain.NewSeries(obs)
	if err != nil {
		return domain.SpreadSeries{}, fmt.Errorf("storage.LoadSeries: %w", err)
	}
	return series, nil
}

// SaveRun persiste la ejecución completa y devuelve el ID acuñado.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run domain.RunRecord) (string, error) {
	id := uuid.NewString()
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, series_key, label, created_at, config_yaml) VALUES (?, ?, ?, ?, ?)`,
		id, run.SeriesKey, run.Label, formatTime(createdAt), run.ConfigYAML,
	); err != nil {
		return "", fmt.Errorf("storage.SaveRun: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades
			(run_id, seq, entry_time, entry_spread, direction, size,
			 exit_time, exit_spread, pnl, exit_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("storage.SaveRun: prepare trades: %w", err)
	}
	defer stmt.Close()

	for seq, tr := range run.Trades {
		if _, err := stmt.ExecContext(ctx,
			id, seq,
			formatTime(tr.EntryTime), tr.EntrySpread, tr.Direction.String(), tr.Size,
			formatTime(tr.ExitTime), tr.ExitSpread, tr.PnL, tr.ExitReason.String(),
		); err != nil {
			return "", fmt.Errorf("storage.SaveRun: insert trade %d: %w", seq, err)
		}
	}

	mstmt, err := tx.PrepareContext(ctx,
		`INSERT INTO report_metrics (run_id, metric, value) VALUES (?, ?, ?)`,
	)
	if err != nil {
		return "", fmt.Errorf("storage.SaveRun: prepare metrics: %w", err)
	}
	defer mstmt.Close()

	for _, m := range run.Report.Metrics() {
		if _, err := mstmt.ExecContext(ctx, id, m.Name, m.Value); err != nil {
			return "", fmt.Errorf("storage.SaveRun: insert metric %s: %w", m.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return id, nil
}

// LoadTrades devuelve los trades de una ejecución en orden de guardado.
func (s *SQLiteStorage) LoadTrades(ctx context.Context, runID string) (domain.TradeSequence, error) {
	if err := s.runExists(ctx, runID); err != nil {
		return nil, fmt.Errorf("storage.LoadTrades: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_time, entry_spread, direction, size,
		       exit_time, exit_spread, pnl, exit_reason
		FROM trades WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadTrades: query: %w", err)
	}
	defer rows.Close()

	var trades domain.TradeSequence
	for rows.Next() {
		var entryTS, exitTS, dir, reason string
		var tr domain.Trade
		if err := rows.Scan(
			&entryTS, &tr.EntrySpread, &dir, &tr.Size,
			&exitTS, &tr.ExitSpread, &tr.PnL, &reason,
		); err != nil {
			return nil, fmt.Errorf("storage.LoadTrades: scan: %w", err)
		}

		if tr.EntryTime, err = parseTime(entryTS); err != nil {
			return nil, fmt.Errorf("storage.LoadTrades: %w", err)
		}
		if tr.ExitTime, err = parseTime(exitTS); err != nil {
			return nil, fmt.Errorf("storage.LoadTrades: %w", err)
		}
		if tr.Direction, err = domain.ParseDirection(dir); err != nil {
			return nil, fmt.Errorf("storage.LoadTrades: %w", err)
		}
		if tr.ExitReason, err = domain.ParseExitReason(reason); err != nil {
			return nil, fmt.Errorf("storage.LoadTrades: %w", err)
		}
		trades = append(trades, tr)
	}
	return trades, rows.Err()
}

// LoadReport reconstruye el informe de riesgo de una ejecución.
func (s *SQLiteStorage) LoadReport(ctx context.Context, runID string) (domain.RiskReport, error) {
	if err := s.runExists(ctx, runID); err != nil {
		return domain.RiskReport{}, fmt.Errorf("storage.LoadReport: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT metric, value FROM report_metrics WHERE run_id = ?`, runID,
	)
	if err != nil {
		return domain.RiskReport{}, fmt.Errorf("storage.LoadReport: query: %w", err)
	}
	defer rows.Close()

	var report domain.RiskReport
	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return domain.RiskReport{}, fmt.Errorf("storage.LoadReport: scan: %w", err)
		}
		// Métricas de versiones futuras se ignoran sin error.
		report.SetMetric(name, value)
	}
	return report, rows.Err()
}

// ListRuns devuelve los resúmenes de las ejecuciones, la más reciente primero.
func (s *SQLiteStorage) ListRuns(ctx context.Context) ([]domain.RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.series_key, r.label, r.created_at, COUNT(t.run_id)
		FROM runs r
		LEFT JOIN trades t ON t.run_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC, r.id
	`)
	if err != nil {
		return nil, fmt.Errorf("storage.ListRuns: query: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunSummary
	for rows.Next() {
		var sum domain.RunSummary
		var createdAt string
		if err := rows.Scan(&sum.ID, &sum.SeriesKey, &sum.Label, &createdAt, &sum.TradeCount); err != nil {
			return nil, fmt.Errorf("storage.ListRuns: scan: %w", err)
		}
		if sum.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("storage.ListRuns: %w", err)
		}
		runs = append(runs, sum)
	}
	return runs, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// runExists comprueba que la ejecución está en la tabla runs.
func (s *SQLiteStorage) runExists(ctx context.Context, runID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("run %q: %w", runID, ErrNotFound)
	}
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
