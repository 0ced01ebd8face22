package macros

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rolldeck/rolldeck/internal/platform/httpx"
)

// Repository persists dice macros. Every single-row operation is filtered by
// owner, so a row belonging to another owner is indistinguishable from a
// missing one.
type Repository interface {
	List(ctx context.Context, ownerID string) ([]Macro, error)
	Get(ctx context.Context, ownerID string, id int64) (Macro, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	Create(ctx context.Context, macro Macro) (Macro, error)
	Update(ctx context.Context, macro Macro) (Macro, error)
	Delete(ctx context.Context, ownerID string, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const uniqueViolationCode = "23505"

func (r *repository) List(ctx context.Context, ownerID string) ([]Macro, error) {
	query := `SELECT id, owner_id, name, num_dice, sides, modifier, created_at, updated_at
		FROM dice_macros WHERE owner_id = $1 ORDER BY name`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var macros []Macro
	for rows.Next() {
		var m Macro
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Name, &m.NumDice, &m.Sides, &m.Modifier, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		macros = append(macros, m)
	}
	return macros, rows.Err()
}

func (r *repository) Get(ctx context.Context, ownerID string, id int64) (Macro, error) {
	query := `SELECT id, owner_id, name, num_dice, sides, modifier, created_at, updated_at
		FROM dice_macros WHERE id = $1 AND owner_id = $2`
	var m Macro
	err := r.db.QueryRow(ctx, query, id, ownerID).
		Scan(&m.ID, &m.OwnerID, &m.Name, &m.NumDice, &m.Sides, &m.Modifier, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Macro{}, httpx.ErrNotFound
	}
	return m, err
}

func (r *repository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM dice_macros WHERE owner_id = $1`, ownerID).Scan(&count)
	return count, err
}

func (r *repository) Create(ctx context.Context, macro Macro) (Macro, error) {
	query := `INSERT INTO dice_macros (owner_id, name, num_dice, sides, modifier, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, macro.OwnerID, macro.Name, macro.NumDice, macro.Sides, macro.Modifier, now, now).
		Scan(&macro.ID)
	if err != nil {
		return Macro{}, mapUniqueViolation(err)
	}
	macro.CreatedAt = now
	macro.UpdatedAt = now
	return macro, nil
}

func (r *repository) Update(ctx context.Context, macro Macro) (Macro, error) {
	// owner_id is never part of the SET clause; ownership is immutable.
	query := `UPDATE dice_macros SET name = $1, num_dice = $2, sides = $3, modifier = $4, updated_at = $5
		WHERE id = $6 AND owner_id = $7
		RETURNING id, owner_id, name, num_dice, sides, modifier, created_at, updated_at`
	var m Macro
	err := r.db.QueryRow(ctx, query, macro.Name, macro.NumDice, macro.Sides, macro.Modifier, time.Now(), macro.ID, macro.OwnerID).
		Scan(&m.ID, &m.OwnerID, &m.Name, &m.NumDice, &m.Sides, &m.Modifier, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Macro{}, httpx.ErrNotFound
	}
	if err != nil {
		return Macro{}, mapUniqueViolation(err)
	}
	return m, nil
}

func (r *repository) Delete(ctx context.Context, ownerID string, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM dice_macros WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return httpx.ErrDuplicate
	}
	return err
}
