package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-wbs-tracker/internal/model"
)

const taskColumns = `task_id, task_name, major_category, sub_category, assignee,
	planned_start_date, planned_end_date, actual_start_date, actual_end_date,
	progress_percent, status, parent_task_id, sort_order`

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	err := row.Scan(&t.TaskID, &t.TaskName, &t.MajorCategory, &t.SubCategory,
		&t.Assignee, &t.PlannedStartDate, &t.PlannedEndDate,
		&t.ActualStartDate, &t.ActualEndDate,
		&t.ProgressPercent, &t.Status, &t.ParentTaskID, &t.SortOrder)
	return t, err
}

// List returns every task ordered for tree rendering: roots first, then
// siblings by sort order, ties broken by id.
func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 ORDER BY parent_task_id NULLS FIRST, sort_order, task_id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Insert(ctx context.Context, t model.Task) (model.Task, error) {
	created, err := scanTask(r.pool.QueryRow(ctx,
		`INSERT INTO tasks (task_name, major_category, sub_category, assignee,
		                    planned_start_date, planned_end_date,
		                    actual_start_date, actual_end_date,
		                    progress_percent, status, parent_task_id, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+taskColumns,
		t.TaskName, t.MajorCategory, t.SubCategory, t.Assignee,
		t.PlannedStartDate, t.PlannedEndDate, t.ActualStartDate, t.ActualEndDate,
		t.ProgressPercent, t.Status, t.ParentTaskID, t.SortOrder))
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return created, nil
}

// Update applies the non-nil fields of the patch and returns the new
// row. A missing task returns (nil, nil): absent-id updates are a no-op
// by contract, not an error.
func (r *TaskRepository) Update(ctx context.Context, id int64, patch model.UpdateTaskRequest) (*model.Task, error) {
	sets := make([]string, 0, 12)
	args := make([]any, 0, 13)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.TaskName != nil {
		add("task_name", *patch.TaskName)
	}
	if patch.MajorCategory != nil {
		add("major_category", *patch.MajorCategory)
	}
	if patch.SubCategory != nil {
		add("sub_category", *patch.SubCategory)
	}
	if patch.Assignee != nil {
		add("assignee", *patch.Assignee)
	}
	if patch.PlannedStartDate != nil {
		add("planned_start_date", *patch.PlannedStartDate)
	}
	if patch.PlannedEndDate != nil {
		add("planned_end_date", *patch.PlannedEndDate)
	}
	if patch.ActualStartDate != nil {
		add("actual_start_date", *patch.ActualStartDate)
	}
	if patch.ActualEndDate != nil {
		add("actual_end_date", *patch.ActualEndDate)
	}
	if patch.ProgressPercent != nil {
		add("progress_percent", int(*patch.ProgressPercent))
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.ParentTaskID != nil {
		add("parent_task_id", *patch.ParentTaskID)
	}
	if patch.SortOrder != nil {
		add("sort_order", *patch.SortOrder)
	}

	if len(sets) == 0 {
		return nil, fmt.Errorf("update task: no fields to set")
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE task_id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), taskColumns)

	updated, err := scanTask(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &updated, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE task_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete task: %w", err)
	}
	return tag.RowsAffected(), nil
}
