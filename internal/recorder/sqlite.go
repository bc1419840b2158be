package recorder

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	log zerolog.Logger
	mu  sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so ad-hoc analysis reads don't block the writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp         INTEGER NOT NULL,
			universe          TEXT,
			market_percentile REAL,
			macro_fraction    REAL,
			signal            TEXT,
			available_capital REAL,
			idle_capital      REAL,
			skipped           INTEGER,
			chart_url         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS screening_results (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id               INTEGER NOT NULL REFERENCES runs(id),
			code                 TEXT,
			name                 TEXT,
			current_valuation    REAL,
			current_price        REAL,
			valuation_percentile REAL,
			price_percentile     REAL,
			safety_score         REAL,
			resilience           REAL,
			activity             REAL,
			composite_score      REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run ON screening_results(run_id)`,

		`CREATE TABLE IF NOT EXISTS plan_items (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id               INTEGER NOT NULL REFERENCES runs(id),
			code                 TEXT,
			name                 TEXT,
			valuation_percentile REAL,
			risk_label           TEXT,
			weight               REAL,
			invest_amount        REAL,
			estimated_shares     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_plan_run ON plan_items(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun writes the run row and its result and plan rows in one
// transaction.
func (r *SQLiteRecorder) RecordRun(snap *RunSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	a := snap.Assessment
	res, err := tx.Exec(`INSERT INTO runs
		(timestamp, universe, market_percentile, macro_fraction, signal,
		 available_capital, idle_capital, skipped, chart_url)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		snap.RanAt.Unix(), snap.Universe,
		a.MarketPercentile, a.MacroFraction, a.Signal,
		a.AvailableCapital, a.IdleCapital, snap.Skipped, snap.ChartURL,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	for _, sr := range snap.Results {
		if _, err := tx.Exec(`INSERT INTO screening_results
			(run_id, code, name, current_valuation, current_price,
			 valuation_percentile, price_percentile, safety_score,
			 resilience, activity, composite_score)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			runID, sr.Code, sr.Name, sr.CurrentValuation, sr.CurrentPrice,
			sr.ValuationPercentile, sr.PricePercentile, sr.SafetyScore,
			sr.Resilience, sr.Activity, sr.CompositeScore,
		); err != nil {
			return fmt.Errorf("insert screening result: %w", err)
		}
	}

	for _, item := range snap.Plan {
		if _, err := tx.Exec(`INSERT INTO plan_items
			(run_id, code, name, valuation_percentile, risk_label,
			 weight, invest_amount, estimated_shares)
			VALUES (?,?,?,?,?,?,?,?)`,
			runID, item.Code, item.Name, item.ValuationPercentile,
			item.RiskLabel, item.Weight, item.InvestAmount, item.EstimatedShares,
		); err != nil {
			return fmt.Errorf("insert plan item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
