package shortinterest

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/wonny/shortscore/internal/contracts"
)

// ErrNotFound is returned when no snapshot exists for a symbol
var ErrNotFound = errors.New("score snapshot not found")

// Repository stores computed score snapshots in PostgreSQL
// ⭐ SSOT: score snapshot storage lives here only
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new snapshot repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS short_interest_scores (
		symbol              TEXT        NOT NULL,
		as_of               DATE        NOT NULL,
		days                INTEGER     NOT NULL,
		total_volume        NUMERIC     NOT NULL,
		total_volume_short  NUMERIC     NOT NULL,
		pct_today           NUMERIC     NOT NULL,
		pct_average         NUMERIC     NOT NULL,
		slope               NUMERIC     NOT NULL,
		composite_score     NUMERIC     NOT NULL,
		computed_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (symbol, as_of, days)
	)
`

// EnsureSchema creates the snapshot table if missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create short_interest_scores: %w", err)
	}
	return nil
}

// Save upserts a snapshot keyed by symbol, as-of date and day count
func (r *Repository) Save(ctx context.Context, result *contracts.ShortInterestResult) error {
	query := `
		INSERT INTO short_interest_scores
			(symbol, as_of, days, total_volume, total_volume_short, pct_today, pct_average, slope, composite_score)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7::numeric, $8::numeric, $9::numeric)
		ON CONFLICT (symbol, as_of, days) DO UPDATE SET
			total_volume = EXCLUDED.total_volume,
			total_volume_short = EXCLUDED.total_volume_short,
			pct_today = EXCLUDED.pct_today,
			pct_average = EXCLUDED.pct_average,
			slope = EXCLUDED.slope,
			composite_score = EXCLUDED.composite_score,
			computed_at = now()
	`

	_, err := r.pool.Exec(ctx, query,
		result.Symbol,
		result.AsOf,
		result.Days,
		result.TotalVolume.String(),
		result.TotalVolumeShort.String(),
		result.ShortInterestPercentToday.String(),
		result.ShortInterestPercentAverage.String(),
		result.ShortInterestSlope.String(),
		result.ShortInterestCompositeScore.String(),
	)
	if err != nil {
		return fmt.Errorf("save score for %s: %w", result.Symbol, err)
	}
	return nil
}

const selectColumns = `
	SELECT symbol, as_of, days,
		total_volume::text, total_volume_short::text, pct_today::text,
		pct_average::text, slope::text, composite_score::text
	FROM short_interest_scores
`

// Latest returns the most recent snapshot for a symbol
func (r *Repository) Latest(ctx context.Context, symbol string) (*contracts.ShortInterestResult, error) {
	rows, err := r.pool.Query(ctx, selectColumns+`
		WHERE symbol = $1
		ORDER BY as_of DESC, computed_at DESC
		LIMIT 1
	`, symbol)
	if err != nil {
		return nil, fmt.Errorf("query latest score: %w", err)
	}

	results, err := collect(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return &results[0], nil
}

// History returns up to limit snapshots for a symbol, newest first
func (r *Repository) History(ctx context.Context, symbol string, limit int) ([]contracts.ShortInterestResult, error) {
	rows, err := r.pool.Query(ctx, selectColumns+`
		WHERE symbol = $1
		ORDER BY as_of DESC, computed_at DESC
		LIMIT $2
	`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query score history: %w", err)
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]contracts.ShortInterestResult, error) {
	defer rows.Close()

	var results []contracts.ShortInterestResult
	for rows.Next() {
		var res contracts.ShortInterestResult
		var nums [6]string
		if err := rows.Scan(&res.Symbol, &res.AsOf, &res.Days,
			&nums[0], &nums[1], &nums[2], &nums[3], &nums[4], &nums[5]); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}

		targets := []*decimal.Decimal{
			&res.TotalVolume,
			&res.TotalVolumeShort,
			&res.ShortInterestPercentToday,
			&res.ShortInterestPercentAverage,
			&res.ShortInterestSlope,
			&res.ShortInterestCompositeScore,
		}
		for i, s := range nums {
			d, err := decimal.NewFromString(s)
			if err != nil {
				return nil, fmt.Errorf("decode numeric %q: %w", s, err)
			}
			*targets[i] = d
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

var _ contracts.ScoreRepository = (*Repository)(nil)
