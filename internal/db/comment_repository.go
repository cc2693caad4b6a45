package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/planhub/planhub/internal/models"
)

type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `INSERT INTO comments (id, task_id, author_id, content, created_at)
	 VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(
		ctx, query, comment.ID, comment.TaskID, comment.Author.ID, comment.Content, comment.CreatedAt)
	return err
}

// ListByTask returns the task's comments, newest first.
func (r *CommentRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*models.Comment, error) {
	query := `SELECT c.id, c.task_id, c.content, c.created_at,
	 u.id, u.username, u.email, u.first_name, u.last_name
	 FROM comments c JOIN users u ON u.id = c.author_id
	 WHERE c.task_id = $1 ORDER BY c.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(
			&c.ID, &c.TaskID, &c.Content, &c.CreatedAt,
			&c.Author.ID, &c.Author.Username, &c.Author.Email, &c.Author.FirstName, &c.Author.LastName,
		); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
