package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID        uuid.UUID
	TaskID    uuid.UUID
	Author    User
	Content   string
	CreatedAt time.Time
}

type Attachment struct {
	ID          uuid.UUID
	TaskID      uuid.UUID
	Filename    string
	ContentType string
	Data        []byte
	UploadedBy  User
	UploadedAt  time.Time
}

type Category struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
}
