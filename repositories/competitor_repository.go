package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/swiss-pairings/models"
)

var ErrCompetitorNotFound = errors.New("competitor not found")

type CompetitorRepository interface {
	// Ensure creates the competitors that do not exist yet.
	Ensure(ctx context.Context, exec SQLExecutor, competitors []models.Competitor) error
	Exists(ctx context.Context, exec SQLExecutor, name string) (bool, error)
	// History lists every duel of the competitor, oldest tournament first.
	History(ctx context.Context, exec SQLExecutor, name string) ([]models.HistoryEntry, error)
}

type postgresCompetitorRepository struct {
	db *sql.DB
}

func NewPostgresCompetitorRepository(db *sql.DB) CompetitorRepository {
	return &postgresCompetitorRepository{db: db}
}

func (r *postgresCompetitorRepository) Ensure(ctx context.Context, exec SQLExecutor, competitors []models.Competitor) error {
	executor := getExecutor(r.db, exec)
	for _, c := range competitors {
		if _, err := executor.ExecContext(ctx,
			`INSERT INTO competitors (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, c.Name); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresCompetitorRepository) Exists(ctx context.Context, exec SQLExecutor, name string) (bool, error) {
	var exists bool
	err := getExecutor(r.db, exec).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM competitors WHERE name = $1)`, name).Scan(&exists)
	return exists, err
}

func (r *postgresCompetitorRepository) History(ctx context.Context, exec SQLExecutor, name string) ([]models.HistoryEntry, error) {
	query := `
		SELECT t.id, t.name, r.number, d.id,
			CASE WHEN d.competitor_a = $1 THEN d.competitor_b ELSE d.competitor_a END,
			CASE WHEN d.competitor_a = $1 THEN d.a_wins ELSE d.b_wins END,
			CASE WHEN d.competitor_a = $1 THEN d.b_wins ELSE d.a_wins END
		FROM duels d
		JOIN rounds r ON r.id = d.round_id
		JOIN tournaments t ON t.id = r.tournament_id
		WHERE d.competitor_a = $1 OR d.competitor_b = $1
		ORDER BY t.id, r.number, d.id`

	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.HistoryEntry, 0)
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.TournamentID, &e.TournamentName, &e.RoundNumber, &e.DuelID,
			&e.Opponent.Name, &e.Wins, &e.Losses); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
