package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-wbs-tracker/internal/model"
)

type LinkRepository struct {
	pool *pgxpool.Pool
}

func NewLinkRepository(pool *pgxpool.Pool) *LinkRepository {
	return &LinkRepository{pool: pool}
}

func (r *LinkRepository) List(ctx context.Context) ([]model.Link, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT link_id, source_task_id, target_task_id, link_type
		 FROM links ORDER BY link_id`)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	links := make([]model.Link, 0)
	for rows.Next() {
		var l model.Link
		if err := rows.Scan(&l.LinkID, &l.SourceTaskID, &l.TargetTaskID, &l.LinkType); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *LinkRepository) Insert(ctx context.Context, l model.Link) (model.Link, error) {
	var created model.Link
	err := r.pool.QueryRow(ctx,
		`INSERT INTO links (source_task_id, target_task_id, link_type)
		 VALUES ($1, $2, $3)
		 RETURNING link_id, source_task_id, target_task_id, link_type`,
		l.SourceTaskID, l.TargetTaskID, l.LinkType).
		Scan(&created.LinkID, &created.SourceTaskID, &created.TargetTaskID, &created.LinkType)
	if err != nil {
		return model.Link{}, fmt.Errorf("insert link: %w", err)
	}
	return created, nil
}

func (r *LinkRepository) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM links WHERE link_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete link: %w", err)
	}
	return tag.RowsAffected(), nil
}
