package handlers

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/planhub/planhub/internal/models"
)

// Response shapes. Related entities (owner, members, assignees, author,
// category name) are always serialized inline, never by id alone.

type userRef struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

func toUserRef(u models.User) userRef {
	return userRef{ID: u.ID, Username: u.Username, Email: u.Email}
}

type profileResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	AuthToken string    `json:"auth_token,omitempty"`
}

func toProfile(u *models.User, includeToken bool) profileResponse {
	resp := profileResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
	if includeToken {
		resp.AuthToken = u.Token.String()
	}
	return resp
}

type projectResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Deadline    *time.Time `json:"deadline"`
	IsActive    bool       `json:"is_active"`
	Owner       userRef    `json:"owner"`
	Members     []userRef  `json:"members"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toProjectResponse(p *models.Project) projectResponse {
	members := make([]userRef, 0, len(p.Members))
	for _, m := range p.Members {
		members = append(members, toUserRef(m))
	}
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      string(p.Status),
		Deadline:    p.Deadline,
		IsActive:    p.IsActive,
		Owner:       toUserRef(p.Owner),
		Members:     members,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type assigneeResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Status   string    `json:"status"`
}

type taskResponse struct {
	ID             uuid.UUID          `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Priority       string             `json:"priority"`
	Status         string             `json:"status"`
	Category       *string            `json:"category"`
	CategoryID     *uuid.UUID         `json:"category_id"`
	DueDate        *time.Time         `json:"due_date"`
	IsMilestone    bool               `json:"is_milestone"`
	DependsOn      *uuid.UUID         `json:"depends_on"`
	Tags           string             `json:"tags"`
	EstimatedHours *float64           `json:"estimated_hours"`
	ActualHours    *float64           `json:"actual_hours"`
	Project        uuid.UUID          `json:"project"`
	CreatedBy      userRef            `json:"created_by"`
	Assignees      []assigneeResponse `json:"assignees"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func toTaskResponse(t *models.Task) taskResponse {
	assignees := make([]assigneeResponse, 0, len(t.Assignees))
	for _, a := range t.Assignees {
		assignees = append(assignees, assigneeResponse{
			ID:       a.User.ID,
			Username: a.User.Username,
			Email:    a.User.Email,
			Status:   string(a.Status),
		})
	}
	return taskResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Priority:       string(t.Priority),
		Status:         string(t.Status),
		Category:       t.CategoryName,
		CategoryID:     t.CategoryID,
		DueDate:        t.DueDate,
		IsMilestone:    t.IsMilestone,
		DependsOn:      t.DependsOnID,
		Tags:           t.Tags,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		Project:        t.ProjectID,
		CreatedBy:      toUserRef(t.CreatedBy),
		Assignees:      assignees,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func toTaskListResponse(tasks []*models.Task) []taskResponse {
	result := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		result = append(result, toTaskResponse(t))
	}
	return result
}

type commentResponse struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	Author    userRef   `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func toCommentResponse(c *models.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		TaskID:    c.TaskID,
		Author:    toUserRef(c.Author),
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

type attachmentResponse struct {
	ID          uuid.UUID `json:"id"`
	TaskID      uuid.UUID `json:"task_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	FileURL     string    `json:"file_url"`
	UploadedBy  userRef   `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

func toAttachmentResponse(a *models.Attachment) attachmentResponse {
	return attachmentResponse{
		ID:          a.ID,
		TaskID:      a.TaskID,
		Filename:    a.Filename,
		ContentType: a.ContentType,
		FileURL:     fmt.Sprintf("/tasks/%s/attachments/%s/download", a.TaskID, a.ID),
		UploadedBy:  toUserRef(a.UploadedBy),
		UploadedAt:  a.UploadedAt,
	}
}

type categoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

func toCategoryResponse(c *models.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}
