package goals

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rosyfit/backend/internal/telemetry/tracing"
)

var ErrWeightEntryNotFound = errors.New("weight entry not found")

type weightsRepo interface {
	Add(ctx context.Context, value float64, createdAt time.Time) (*WeightEntry, error)
	List(ctx context.Context) ([]WeightEntry, error)
	Delete(ctx context.Context, id int) error
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, value float64, createdAt time.Time) (_ *WeightEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var id int
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO weight_entry (value, created_at) VALUES ($1, $2) RETURNING id;`,
		value, createdAt,
	).Scan(&id)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("weight.id", id))

	return &WeightEntry{
		ID:        id,
		Value:     value,
		CreatedAt: createdAt,
	}, nil
}

func (r *Repo) List(ctx context.Context) (_ []WeightEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, value, created_at FROM weight_entry ORDER BY created_at ASC;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []WeightEntry
	for rows.Next() {
		var entry WeightEntry
		if err := rows.Scan(&entry.ID, &entry.Value, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM weight_entry WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrWeightEntryNotFound
	}

	return nil
}
