package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/planhub/planhub/internal/models"
)

type AttachmentRepository struct {
	db *sql.DB
}

func NewAttachmentRepository(db *sql.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(ctx context.Context, att *models.Attachment) error {
	query := `INSERT INTO attachments (id, task_id, filename, content_type, data, uploaded_by, uploaded_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(
		ctx, query, att.ID, att.TaskID, att.Filename, att.ContentType, att.Data,
		att.UploadedBy.ID, att.UploadedAt)
	return err
}

// ListByTask returns attachment metadata without the stored blobs.
func (r *AttachmentRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*models.Attachment, error) {
	query := `SELECT a.id, a.task_id, a.filename, a.content_type, a.uploaded_at,
	 u.id, u.username, u.email, u.first_name, u.last_name
	 FROM attachments a JOIN users u ON u.id = a.uploaded_by
	 WHERE a.task_id = $1 ORDER BY a.uploaded_at DESC`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []*models.Attachment
	for rows.Next() {
		a := &models.Attachment{}
		if err := rows.Scan(
			&a.ID, &a.TaskID, &a.Filename, &a.ContentType, &a.UploadedAt,
			&a.UploadedBy.ID, &a.UploadedBy.Username, &a.UploadedBy.Email,
			&a.UploadedBy.FirstName, &a.UploadedBy.LastName,
		); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

// GetByID loads one attachment including its blob, for download.
func (r *AttachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	query := `SELECT a.id, a.task_id, a.filename, a.content_type, a.data, a.uploaded_at,
	 u.id, u.username, u.email, u.first_name, u.last_name
	 FROM attachments a JOIN users u ON u.id = a.uploaded_by
	 WHERE a.id = $1`
	a := &models.Attachment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.TaskID, &a.Filename, &a.ContentType, &a.Data, &a.UploadedAt,
		&a.UploadedBy.ID, &a.UploadedBy.Username, &a.UploadedBy.Email,
		&a.UploadedBy.FirstName, &a.UploadedBy.LastName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
