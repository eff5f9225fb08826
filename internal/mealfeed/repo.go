package mealfeed

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rosyfit/backend/internal/telemetry/tracing"
)

var ErrPostNotFound = errors.New("meal post not found")

type postsRepo interface {
	Add(ctx context.Context, post MealPost) (*MealPost, error)
	Get(ctx context.Context, id int) (*MealPost, error)
	List(ctx context.Context) ([]MealPost, error)
	SetNutrition(ctx context.Context, id int, nutrition Nutrition) error
	Delete(ctx context.Context, id int, userID string) error
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, post MealPost) (_ *MealPost, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.mealfeed.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var id int
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO meal_post (user_id, user_name, type, image, time, description, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id;`,
		post.UserID, post.UserName, post.Type, post.Image, post.Time, post.Description, post.CreatedAt,
	).Scan(&id)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("post.id", id))

	post.ID = id
	return &post, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *MealPost, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.mealfeed.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var post MealPost
	var nutritionJson []byte
	err = r.db.QueryRow(
		ctx,
		`SELECT id, user_id, user_name, type, image, time, description, nutrition, created_at
			FROM meal_post WHERE id = $1;`,
		id,
	).Scan(
		&post.ID, &post.UserID, &post.UserName, &post.Type, &post.Image,
		&post.Time, &post.Description, &nutritionJson, &post.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(nutritionJson) > 0 {
		var nutrition Nutrition
		if err := json.Unmarshal(nutritionJson, &nutrition); err != nil {
			return nil, err
		}
		post.Nutrition = &nutrition
	}

	return &post, nil
}

func (r *Repo) List(ctx context.Context) (_ []MealPost, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.mealfeed.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, user_name, type, image, time, description, nutrition, created_at
			FROM meal_post ORDER BY created_at DESC;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []MealPost
	for rows.Next() {
		var post MealPost
		var nutritionJson []byte
		if err := rows.Scan(
			&post.ID, &post.UserID, &post.UserName, &post.Type, &post.Image,
			&post.Time, &post.Description, &nutritionJson, &post.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(nutritionJson) > 0 {
			var nutrition Nutrition
			if err := json.Unmarshal(nutritionJson, &nutrition); err != nil {
				return nil, err
			}
			post.Nutrition = &nutrition
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *Repo) SetNutrition(ctx context.Context, id int, nutrition Nutrition) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.mealfeed.set-nutrition")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	nutritionJson, err := json.Marshal(nutrition)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(
		ctx,
		`UPDATE meal_post SET nutrition = $1 WHERE id = $2`,
		nutritionJson, id,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

// Delete removes a post, but only for its owner.
func (r *Repo) Delete(ctx context.Context, id int, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.mealfeed.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM meal_post WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}
