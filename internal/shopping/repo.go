package shopping

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rosyfit/backend/internal/telemetry/tracing"
)

var ErrItemNotFound = errors.New("shopping item not found")

type itemsRepo interface {
	Add(ctx context.Context, item Item) (*Item, error)
	Get(ctx context.Context, id int) (*Item, error)
	List(ctx context.Context) ([]Item, error)
	Update(ctx context.Context, item Item) error
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

func (r *Repo) Add(ctx context.Context, item Item) (_ *Item, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.shopping.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var id int
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO shopping_item (name, done, qty, price)
			VALUES ($1, $2, $3, $4)
			RETURNING id;`,
		item.Name, item.Done, item.Qty, item.Price,
	).Scan(&id)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("item.id", id))

	item.ID = id
	return &item, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Item, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.shopping.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var item Item
	err = r.db.QueryRow(
		ctx,
		`SELECT id, name, done, qty, price FROM shopping_item WHERE id = $1;`,
		id,
	).Scan(&item.ID, &item.Name, &item.Done, &item.Qty, &item.Price)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *Repo) List(ctx context.Context) (_ []Item, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.shopping.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, done, qty, price FROM shopping_item ORDER BY id ASC;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Done, &item.Qty, &item.Price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *Repo) Update(ctx context.Context, item Item) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.shopping.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", item.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE shopping_item SET name = $1, done = $2, qty = $3, price = $4 WHERE id = $5`,
		item.Name, item.Done, item.Qty, item.Price, item.ID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.shopping.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM shopping_item WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}

	return nil
}
