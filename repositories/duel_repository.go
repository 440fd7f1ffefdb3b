package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/swiss-pairings/models"
	"github.com/lib/pq"
)

var (
	ErrDuelNotFound      = errors.New("duel not found")
	ErrDuelInvalidResult = errors.New("duel result violates a constraint")
)

type DuelRepository interface {
	// CreateBatch inserts the duels of one round and fills in their ids.
	CreateBatch(ctx context.Context, exec SQLExecutor, roundID int, duels []models.Duel) error
	UpdateResult(ctx context.Context, exec SQLExecutor, duel *models.Duel) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Duel, error)
	// ListHistory returns duels of other tournaments that involve any of the competitors.
	ListHistory(ctx context.Context, exec SQLExecutor, competitors []models.Competitor, excludeTournamentID int) ([]models.Duel, error)
	// ListAll returns every duel keyed by tournament id.
	ListAll(ctx context.Context, exec SQLExecutor) (map[int][]models.Duel, error)
}

type postgresDuelRepository struct {
	db *sql.DB
}

func NewPostgresDuelRepository(db *sql.DB) DuelRepository {
	return &postgresDuelRepository{db: db}
}

const duelColumns = `d.id, d.round_id, r.number, d.competitor_a, d.competitor_b, d.a_wins, d.b_wins, d.created_at`

func (r *postgresDuelRepository) CreateBatch(ctx context.Context, exec SQLExecutor, roundID int, duels []models.Duel) error {
	executor := getExecutor(r.db, exec)
	query := `
		INSERT INTO duels (round_id, competitor_a, competitor_b, a_wins, b_wins)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	for i := range duels {
		d := &duels[i]
		err := executor.QueryRowContext(ctx, query, roundID, d.A.Name, d.B.Name, d.AWins, d.BWins).Scan(&d.ID, &d.CreatedAt)
		if err != nil {
			return r.handleDuelError(err)
		}
		d.RoundID = roundID
	}
	return nil
}

func (r *postgresDuelRepository) UpdateResult(ctx context.Context, exec SQLExecutor, d *models.Duel) error {
	result, err := getExecutor(r.db, exec).ExecContext(ctx,
		`UPDATE duels SET a_wins = $1, b_wins = $2 WHERE id = $3`, d.AWins, d.BWins, d.ID)
	if err != nil {
		return r.handleDuelError(err)
	}
	return checkAffectedRows(result, ErrDuelNotFound)
}

func (r *postgresDuelRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Duel, error) {
	query := `
		SELECT ` + duelColumns + `
		FROM duels d
		JOIN rounds r ON r.id = d.round_id
		WHERE r.tournament_id = $1
		ORDER BY r.number, d.id`

	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDuels(rows)
}

func (r *postgresDuelRepository) ListHistory(ctx context.Context, exec SQLExecutor, competitors []models.Competitor, excludeTournamentID int) ([]models.Duel, error) {
	query := `
		SELECT ` + duelColumns + `
		FROM duels d
		JOIN rounds r ON r.id = d.round_id
		WHERE r.tournament_id <> $1
			AND (d.competitor_a = ANY($2) OR d.competitor_b = ANY($2))
		ORDER BY r.tournament_id, r.number, d.id`

	names := pq.Array(models.CompetitorNames(competitors))
	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query, excludeTournamentID, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDuels(rows)
}

func (r *postgresDuelRepository) ListAll(ctx context.Context, exec SQLExecutor) (map[int][]models.Duel, error) {
	query := `
		SELECT r.tournament_id, ` + duelColumns + `
		FROM duels d
		JOIN rounds r ON r.id = d.round_id
		ORDER BY r.tournament_id, r.number, d.id`

	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byTournament := make(map[int][]models.Duel)
	for rows.Next() {
		var tournamentID int
		var d models.Duel
		if err := rows.Scan(&tournamentID, &d.ID, &d.RoundID, &d.RoundNumber,
			&d.A.Name, &d.B.Name, &d.AWins, &d.BWins, &d.CreatedAt); err != nil {
			return nil, err
		}
		byTournament[tournamentID] = append(byTournament[tournamentID], d)
	}
	return byTournament, rows.Err()
}

func scanDuels(rows *sql.Rows) ([]models.Duel, error) {
	duels := make([]models.Duel, 0)
	for rows.Next() {
		var d models.Duel
		if err := rows.Scan(&d.ID, &d.RoundID, &d.RoundNumber,
			&d.A.Name, &d.B.Name, &d.AWins, &d.BWins, &d.CreatedAt); err != nil {
			return nil, err
		}
		duels = append(duels, d)
	}
	return duels, rows.Err()
}

func (r *postgresDuelRepository) handleDuelError(err error) error {
	if code, constraint, ok := pqConstraint(err); ok {
		switch code {
		case pqForeignKeyViolation:
			if constraint == "duels_round_id_fkey" {
				return ErrRoundNotFound
			}
			return ErrCompetitorUnknown
		case pqCheckViolation:
			return ErrDuelInvalidResult
		}
	}
	return err
}
