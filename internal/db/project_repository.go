package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/planhub/planhub/internal/models"
)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts the project and attaches the given members in one transaction.
// Member ids that do not resolve to a user are skipped; duplicates are a no-op.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project, memberIDs []uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO projects (id, name, description, owner_id, status, deadline, is_active, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = tx.ExecContext(
		ctx, query, project.ID, project.Name, project.Description, project.Owner.ID,
		project.Status, project.Deadline, project.IsActive, project.CreatedAt, project.UpdatedAt)
	if err != nil {
		return err
	}

	if err := addMembers(ctx, tx, project.ID, memberIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// Update saves the project row and fully replaces the members set
// (clear-then-add) in one transaction.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project, memberIDs []uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE projects SET name = $1, description = $2, status = $3, deadline = $4,
	 is_active = $5, updated_at = $6 WHERE id = $7`
	res, err := tx.ExecContext(
		ctx, query, project.Name, project.Description, project.Status, project.Deadline,
		project.IsActive, project.UpdatedAt, project.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM project_members WHERE project_id = $1`, project.ID); err != nil {
		return err
	}
	if err := addMembers(ctx, tx, project.ID, memberIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func addMembers(ctx context.Context, tx *sql.Tx, projectID uuid.UUID, memberIDs []uuid.UUID) error {
	// INSERT ... SELECT skips ids without a matching user, ON CONFLICT
	// makes duplicate adds idempotent.
	query := `INSERT INTO project_members (project_id, user_id)
	 SELECT $1, id FROM users WHERE id = $2
	 ON CONFLICT DO NOTHING`
	for _, id := range memberIDs {
		if _, err := tx.ExecContext(ctx, query, projectID, id); err != nil {
			return fmt.Errorf("attach member %s: %w", id, err)
		}
	}
	return nil
}

const projectColumns = `p.id, p.name, p.description, p.status, p.deadline, p.is_active, p.created_at, p.updated_at,
	 u.id, u.username, u.email, u.first_name, u.last_name`

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	p := &models.Project{}
	var deadline sql.NullTime
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Status, &deadline, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
		&p.Owner.ID, &p.Owner.Username, &p.Owner.Email, &p.Owner.FirstName, &p.Owner.LastName,
	)
	if err != nil {
		return nil, err
	}
	if deadline.Valid {
		t := deadline.Time
		p.Deadline = &t
	}
	return p, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + `
	 FROM projects p JOIN users u ON u.id = p.owner_id WHERE p.id = $1`
	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.Members, err = r.listMembers(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// ListForUser returns projects the user owns or is a member of, optionally
// filtered by status, newest first.
func (r *ProjectRepository) ListForUser(ctx context.Context, userID uuid.UUID, status string) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + `
	 FROM projects p JOIN users u ON u.id = p.owner_id
	 WHERE (p.owner_id = $1
	   OR EXISTS (SELECT 1 FROM project_members m WHERE m.project_id = p.id AND m.user_id = $2))`
	args := []any{userID, userID}
	if status != "" {
		query += fmt.Sprintf(" AND p.status = $%d", len(args)+1)
		args = append(args, status)
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range projects {
		if p.Members, err = r.listMembers(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

func (r *ProjectRepository) listMembers(ctx context.Context, projectID uuid.UUID) ([]models.User, error) {
	query := `SELECT u.id, u.username, u.email, u.first_name, u.last_name
	 FROM project_members m JOIN users u ON u.id = m.user_id
	 WHERE m.project_id = $1 ORDER BY u.email`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName); err != nil {
			return nil, err
		}
		members = append(members, u)
	}
	return members, rows.Err()
}

// Delete removes the project; tasks, members, comments and attachments go with
// it via foreign key cascades.
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
