package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/planhub/planhub/internal/models"
)

// in-memory sqlite schema mirroring the postgres one, with foreign keys
// enabled so cascade and SET NULL behavior can be exercised.
const testDDL = `
CREATE TABLE users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  token TEXT NOT NULL,
  created_at TIMESTAMP NOT NULL
);
CREATE TABLE projects (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  status TEXT NOT NULL DEFAULT 'active',
  deadline TIMESTAMP,
  is_active BOOLEAN NOT NULL DEFAULT 1,
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
);
CREATE TABLE project_members (
  project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  PRIMARY KEY (project_id, user_id)
);
CREATE TABLE categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP NOT NULL
);
CREATE TABLE tasks (
  id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  created_by TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  priority TEXT NOT NULL DEFAULT 'medium',
  status TEXT NOT NULL DEFAULT 'todo',
  category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
  due_date TIMESTAMP,
  is_milestone BOOLEAN NOT NULL DEFAULT 0,
  depends_on TEXT REFERENCES tasks(id) ON DELETE SET NULL,
  tags TEXT NOT NULL DEFAULT '',
  estimated_hours REAL,
  actual_hours REAL,
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL
);
CREATE TABLE task_assignments (
  task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  status TEXT NOT NULL DEFAULT 'pending',
  assigned_at TIMESTAMP NOT NULL,
  PRIMARY KEY (task_id, user_id)
);
CREATE TABLE comments (
  id TEXT PRIMARY KEY,
  task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
  author_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  content TEXT NOT NULL,
  created_at TIMESTAMP NOT NULL
);
CREATE TABLE attachments (
  id TEXT PRIMARY KEY,
  task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
  filename TEXT NOT NULL,
  content_type TEXT NOT NULL DEFAULT '',
  data BLOB NOT NULL,
  uploaded_by TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  uploaded_at TIMESTAMP NOT NULL
);
`

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// the pool must not open a second connection: every connection gets
	// its own in-memory database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(testDDL); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func insertUser(t *testing.T, dbx *sql.DB, email string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.New(),
		Username:     email,
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "hash",
		Token:        uuid.New(),
		CreatedAt:    time.Now().UTC(),
	}
	if err := NewUserRepository(dbx).Create(context.Background(), u); err != nil {
		t.Fatalf("insert user %s: %v", email, err)
	}
	return u
}

func insertProject(t *testing.T, dbx *sql.DB, owner *models.User, memberIDs ...uuid.UUID) *models.Project {
	t.Helper()
	now := time.Now().UTC()
	p := &models.Project{
		ID:        uuid.New(),
		Name:      "Project",
		Owner:     *owner,
		Status:    models.ProjectStatusActive,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := NewProjectRepository(dbx).Create(context.Background(), p, memberIDs); err != nil {
		t.Fatalf("insert project: %v", err)
	}
	return p
}

func insertTask(t *testing.T, dbx *sql.DB, project *models.Project, creator *models.User, title string) *models.Task {
	t.Helper()
	now := time.Now().UTC()
	task := &models.Task{
		ID:        uuid.New(),
		ProjectID: project.ID,
		Title:     title,
		CreatedBy: *creator,
		Priority:  models.TaskPriorityMedium,
		Status:    models.TaskStatusToDo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := NewTaskRepository(dbx).Create(context.Background(), task, nil); err != nil {
		t.Fatalf("insert task %q: %v", title, err)
	}
	return task
}
