package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/swiss-pairings/models"
)

// ErrRoundConflict means a round with the same number already exists in the tournament.
// It backs up the row lock taken while advancing.
var (
	ErrRoundConflict = errors.New("round number already exists in this tournament")
	ErrRoundNotFound = errors.New("round not found")
)

type RoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Round, error)
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	err := getExecutor(r.db, exec).QueryRowContext(ctx,
		`INSERT INTO rounds (tournament_id, number) VALUES ($1, $2) RETURNING id, created_at`,
		round.TournamentID, round.Number,
	).Scan(&round.ID, &round.CreatedAt)
	if err == nil {
		return nil
	}
	if code, constraint, ok := pqConstraint(err); ok {
		switch {
		case code == pqUniqueViolation && constraint == "rounds_tournament_number_key":
			return ErrRoundConflict
		case code == pqForeignKeyViolation:
			return ErrTournamentNotFound
		}
	}
	return err
}

// ListByTournament returns the rounds without duels, ordered by number.
func (r *postgresRoundRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Round, error) {
	rows, err := getExecutor(r.db, exec).QueryContext(ctx,
		`SELECT id, tournament_id, number, created_at FROM rounds WHERE tournament_id = $1 ORDER BY number`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]models.Round, 0)
	for rows.Next() {
		var round models.Round
		if err := rows.Scan(&round.ID, &round.TournamentID, &round.Number, &round.CreatedAt); err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}
