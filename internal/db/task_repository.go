package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/planhub/planhub/internal/models"
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// TaskFilter narrows List results; every set field is an exact-match
// predicate, combined with AND.
type TaskFilter struct {
	Status     string
	Priority   string
	CategoryID *uuid.UUID
	ProjectID  *uuid.UUID
	Sort       string
}

// sort keys accepted from callers; anything else falls back to the default
// newest-first ordering.
var taskSortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"due_date":   true,
	"priority":   true,
	"status":     true,
	"title":      true,
}

func taskOrderBy(sort string) string {
	dir := "ASC"
	if strings.HasPrefix(sort, "-") {
		dir = "DESC"
		sort = sort[1:]
	}
	if !taskSortColumns[sort] {
		return "t.created_at DESC"
	}
	return "t." + sort + " " + dir
}

// Create inserts the task and its assignments in one transaction. Assignee ids
// without a matching user are skipped; duplicates are a no-op.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task, assigneeIDs []uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO tasks (id, project_id, title, description, created_by, priority, status,
	 category_id, due_date, is_milestone, depends_on, tags, estimated_hours, actual_hours, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = tx.ExecContext(ctx, query,
		task.ID, task.ProjectID, task.Title, task.Description, task.CreatedBy.ID,
		task.Priority, task.Status, uuidOrNil(task.CategoryID), task.DueDate,
		task.IsMilestone, uuidOrNil(task.DependsOnID), task.Tags,
		task.EstimatedHours, task.ActualHours, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return err
	}

	if err := addAssignments(ctx, tx, task, assigneeIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// Update saves the task row and fully replaces its assignments
// (delete-all, re-insert as pending) in one transaction.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task, assigneeIDs []uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE tasks SET title = $1, description = $2, priority = $3, status = $4,
	 category_id = $5, due_date = $6, is_milestone = $7, depends_on = $8, tags = $9,
	 estimated_hours = $10, actual_hours = $11, updated_at = $12 WHERE id = $13`
	res, err := tx.ExecContext(ctx, query,
		task.Title, task.Description, task.Priority, task.Status,
		uuidOrNil(task.CategoryID), task.DueDate, task.IsMilestone,
		uuidOrNil(task.DependsOnID), task.Tags, task.EstimatedHours,
		task.ActualHours, task.UpdatedAt, task.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM task_assignments WHERE task_id = $1`, task.ID); err != nil {
		return err
	}
	if err := addAssignments(ctx, tx, task, assigneeIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func addAssignments(ctx context.Context, tx *sql.Tx, task *models.Task, assigneeIDs []uuid.UUID) error {
	query := `INSERT INTO task_assignments (task_id, user_id, status, assigned_at)
	 SELECT $1, id, $2, $3 FROM users WHERE id = $4
	 ON CONFLICT DO NOTHING`
	for _, id := range assigneeIDs {
		if _, err := tx.ExecContext(ctx, query,
			task.ID, models.AssignmentStatusPending, task.UpdatedAt, id); err != nil {
			return fmt.Errorf("assign user %s: %w", id, err)
		}
	}
	return nil
}

func uuidOrNil(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

const taskColumns = `t.id, t.project_id, t.title, t.description, t.priority, t.status,
	 t.category_id, c.name, t.due_date, t.is_milestone, t.depends_on, t.tags,
	 t.estimated_hours, t.actual_hours, t.created_at, t.updated_at,
	 u.id, u.username, u.email, u.first_name, u.last_name`

const taskFrom = ` FROM tasks t
	 JOIN users u ON u.id = t.created_by
	 LEFT JOIN categories c ON c.id = t.category_id`

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	t := &models.Task{}
	var (
		categoryID   uuid.NullUUID
		categoryName sql.NullString
		dueDate      sql.NullTime
		dependsOn    uuid.NullUUID
		estimated    sql.NullFloat64
		actual       sql.NullFloat64
	)
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Priority, &t.Status,
		&categoryID, &categoryName, &dueDate, &t.IsMilestone, &dependsOn, &t.Tags,
		&estimated, &actual, &t.CreatedAt, &t.UpdatedAt,
		&t.CreatedBy.ID, &t.CreatedBy.Username, &t.CreatedBy.Email,
		&t.CreatedBy.FirstName, &t.CreatedBy.LastName,
	)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		id := categoryID.UUID
		t.CategoryID = &id
	}
	if categoryName.Valid {
		name := categoryName.String
		t.CategoryName = &name
	}
	if dueDate.Valid {
		d := dueDate.Time
		t.DueDate = &d
	}
	if dependsOn.Valid {
		id := dependsOn.UUID
		t.DependsOnID = &id
	}
	if estimated.Valid {
		h := estimated.Float64
		t.EstimatedHours = &h
	}
	if actual.Valid {
		h := actual.Float64
		t.ActualHours = &h
	}
	return t, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + ` WHERE t.id = $1`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if t.Assignees, err = r.listAssignments(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

// GetByIDInProject resolves a task only if it belongs to the given project;
// used to scope depends_on references.
func (r *TaskRepository) GetByIDInProject(ctx context.Context, id, projectID uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + ` WHERE t.id = $1 AND t.project_id = $2`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, id, projectID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns tasks visible to the user: tasks in projects they own, projects
// they are a member of, or tasks they are individually assigned to.
func (r *TaskRepository) List(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + `
	 JOIN projects p ON p.id = t.project_id
	 WHERE (p.owner_id = $1
	   OR EXISTS (SELECT 1 FROM project_members m WHERE m.project_id = p.id AND m.user_id = $2)
	   OR EXISTS (SELECT 1 FROM task_assignments a WHERE a.task_id = t.id AND a.user_id = $3))`
	args := []any{userID, userID, userID}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND t.status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		query += fmt.Sprintf(" AND t.priority = $%d", len(args)+1)
		args = append(args, filter.Priority)
	}
	if filter.CategoryID != nil {
		query += fmt.Sprintf(" AND t.category_id = $%d", len(args)+1)
		args = append(args, *filter.CategoryID)
	}
	if filter.ProjectID != nil {
		query += fmt.Sprintf(" AND t.project_id = $%d", len(args)+1)
		args = append(args, *filter.ProjectID)
	}
	query += ` ORDER BY ` + taskOrderBy(filter.Sort)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if t.Assignees, err = r.listAssignments(ctx, t.ID); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

func (r *TaskRepository) listAssignments(ctx context.Context, taskID uuid.UUID) ([]models.TaskAssignment, error) {
	query := `SELECT a.task_id, a.status, a.assigned_at,
	 u.id, u.username, u.email, u.first_name, u.last_name
	 FROM task_assignments a JOIN users u ON u.id = a.user_id
	 WHERE a.task_id = $1 ORDER BY u.email`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := []models.TaskAssignment{}
	for rows.Next() {
		var a models.TaskAssignment
		if err := rows.Scan(
			&a.TaskID, &a.Status, &a.AssignedAt,
			&a.User.ID, &a.User.Username, &a.User.Email, &a.User.FirstName, &a.User.LastName,
		); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// Delete removes the task; comments, attachments and assignments go with it
// via foreign key cascades. Dependent tasks get depends_on set to NULL.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
