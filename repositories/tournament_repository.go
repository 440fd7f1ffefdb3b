package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/swiss-pairings/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrCompetitorUnknown      = errors.New("competitor does not exist")
)

type ListTournamentsFilter struct {
	Finished *bool
	Limit    int
	Offset   int
}

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// GetForUpdate locks the tournament row until the transaction of exec ends.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context, exec SQLExecutor, filter ListTournamentsFilter) ([]models.Tournament, error)
	SetFinished(ctx context.Context, exec SQLExecutor, id int) error
	AddCompetitors(ctx context.Context, exec SQLExecutor, id int, competitors []models.Competitor) error
	ListCompetitors(ctx context.Context, exec SQLExecutor, id int) ([]models.Competitor, error)
	// ListAllCompetitors returns the competitors of every tournament keyed by tournament id.
	ListAllCompetitors(ctx context.Context, exec SQLExecutor) (map[int][]models.Competitor, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, finished)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := getExecutor(r.db, exec).QueryRowContext(ctx, query, t.Name, t.Finished).Scan(&t.ID, &t.CreatedAt)
	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) get(ctx context.Context, exec SQLExecutor, query string, id int) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := getExecutor(r.db, exec).QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.Finished, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	return r.get(ctx, exec, `SELECT id, name, finished, created_at FROM tournaments WHERE id = $1`, id)
}

func (r *postgresTournamentRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	return r.get(ctx, exec, `SELECT id, name, finished, created_at FROM tournaments WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresTournamentRepository) List(ctx context.Context, exec SQLExecutor, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT id, name, finished, created_at FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Finished != nil {
		query += fmt.Sprintf(" AND finished = $%d", argID)
		args = append(args, *filter.Finished)
		argID++
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if err := rows.Scan(&t.ID, &t.Name, &t.Finished, &t.CreatedAt); err != nil {
			return nil, err
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) SetFinished(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := getExecutor(r.db, exec).ExecContext(ctx, `UPDATE tournaments SET finished = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) AddCompetitors(ctx context.Context, exec SQLExecutor, id int, competitors []models.Competitor) error {
	executor := getExecutor(r.db, exec)
	query := `INSERT INTO tournament_competitors (tournament_id, competitor, seed) VALUES ($1, $2, $3)`
	for seed, c := range competitors {
		if _, err := executor.ExecContext(ctx, query, id, c.Name, seed); err != nil {
			return r.handleTournamentError(err)
		}
	}
	return nil
}

func (r *postgresTournamentRepository) ListCompetitors(ctx context.Context, exec SQLExecutor, id int) ([]models.Competitor, error) {
	rows, err := getExecutor(r.db, exec).QueryContext(ctx,
		`SELECT competitor FROM tournament_competitors WHERE tournament_id = $1 ORDER BY seed`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	competitors := make([]models.Competitor, 0)
	for rows.Next() {
		var c models.Competitor
		if err := rows.Scan(&c.Name); err != nil {
			return nil, err
		}
		competitors = append(competitors, c)
	}
	return competitors, rows.Err()
}

func (r *postgresTournamentRepository) ListAllCompetitors(ctx context.Context, exec SQLExecutor) (map[int][]models.Competitor, error) {
	rows, err := getExecutor(r.db, exec).QueryContext(ctx,
		`SELECT tournament_id, competitor FROM tournament_competitors ORDER BY tournament_id, seed`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byTournament := make(map[int][]models.Competitor)
	for rows.Next() {
		var id int
		var c models.Competitor
		if err := rows.Scan(&id, &c.Name); err != nil {
			return nil, err
		}
		byTournament[id] = append(byTournament[id], c)
	}
	return byTournament, rows.Err()
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if code, constraint, ok := pqConstraint(err); ok {
		switch {
		case code == pqUniqueViolation && constraint == "tournaments_name_key":
			return ErrTournamentNameConflict
		case code == pqForeignKeyViolation && constraint == "tournament_competitors_tournament_id_fkey":
			return ErrTournamentNotFound
		case code == pqForeignKeyViolation && constraint == "tournament_competitors_competitor_fkey":
			return ErrCompetitorUnknown
		}
	}
	return err
}
