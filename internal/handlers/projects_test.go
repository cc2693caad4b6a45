package handlers

import (
	"net/http"
	"testing"
)

func TestCreateProjectWithMembers(t *testing.T) {
	srv := newTestServer(t)
	ownerToken, ownerID := registerUser(t, srv, "owner@example.com")
	_, memberID := registerUser(t, srv, "member@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/projects/create", ownerToken, map[string]any{
		"name":        "Launch",
		"description": "Q4 launch plan",
		"members":     []string{memberID},
	})
	wantStatus(t, rec, http.StatusCreated)

	project := decodeBody(t, rec)["project"].(map[string]any)
	if project["name"] != "Launch" || project["status"] != "active" {
		t.Errorf("unexpected project: %v", project)
	}
	if owner := project["owner"].(map[string]any); owner["id"] != ownerID {
		t.Errorf("owner id = %v, want %s", owner["id"], ownerID)
	}
	members := project["members"].([]any)
	if len(members) != 1 || members[0].(map[string]any)["id"] != memberID {
		t.Errorf("members = %v, want exactly %s", members, memberID)
	}
}

func TestCreateProjectValidation(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "owner@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/projects/create", token, map[string]any{
		"description": "nameless",
	})
	wantError(t, rec, http.StatusBadRequest, "Name is required")

	rec = doJSON(t, srv, http.MethodPost, "/projects/create", token, map[string]any{
		"name":   "Bad status",
		"status": "paused",
	})
	wantError(t, rec, http.StatusBadRequest, "Invalid status value")
}

func TestListProjectsVisibility(t *testing.T) {
	srv := newTestServer(t)
	ownerToken, _ := registerUser(t, srv, "owner@example.com")
	memberToken, memberID := registerUser(t, srv, "member@example.com")
	outsiderToken, _ := registerUser(t, srv, "outsider@example.com")

	createProject(t, srv, ownerToken, "Shared", memberID)
	createProject(t, srv, ownerToken, "Private")

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"owner sees both", ownerToken, 2},
		{"member sees shared only", memberToken, 1},
		{"outsider sees none", outsiderToken, 0},
	}
	for _, tc := range cases {
		rec := doJSON(t, srv, http.MethodGet, "/projects", tc.token, nil)
		wantStatus(t, rec, http.StatusOK)
		projects := decodeBody(t, rec)["projects"].([]any)
		if len(projects) != tc.want {
			t.Errorf("%s: got %d projects, want %d", tc.name, len(projects), tc.want)
		}
	}
}

func TestListProjectsStatusFilter(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "owner@example.com")

	createProject(t, srv, token, "Active one")
	archivedID := createProject(t, srv, token, "Old one")
	rec := doJSON(t, srv, http.MethodPut, "/projects/"+archivedID, token, map[string]any{
		"status": "archived",
	})
	wantStatus(t, rec, http.StatusOK)

	rec = doJSON(t, srv, http.MethodGet, "/projects?status=archived", token, nil)
	wantStatus(t, rec, http.StatusOK)
	projects := decodeBody(t, rec)["projects"].([]any)
	if len(projects) != 1 || projects[0].(map[string]any)["name"] != "Old one" {
		t.Errorf("archived filter returned %v", projects)
	}

	rec = doJSON(t, srv, http.MethodGet, "/projects?status=bogus", token, nil)
	wantError(t, rec, http.StatusBadRequest, "Invalid status value")
}

func TestUpdateProjectPermissions(t *testing.T) {
	srv := newTestServer(t)
	ownerToken, _ := registerUser(t, srv, "owner@example.com")
	memberToken, memberID := registerUser(t, srv, "member@example.com")
	outsiderToken, _ := registerUser(t, srv, "outsider@example.com")

	projectID := createProject(t, srv, ownerToken, "Guarded", memberID)
	rename := map[string]any{"name": "Renamed"}

	// a member can read the project but not change it
	rec := doJSON(t, srv, http.MethodPut, "/projects/"+projectID, memberToken, rename)
	wantError(t, rec, http.StatusForbidden, "Only the project owner can modify the project")

	// an outsider is told the project does not exist
	rec = doJSON(t, srv, http.MethodPut, "/projects/"+projectID, outsiderToken, rename)
	wantError(t, rec, http.StatusNotFound, "Project not found")

	rec = doJSON(t, srv, http.MethodPut, "/projects/"+projectID, ownerToken, rename)
	wantStatus(t, rec, http.StatusOK)
	project := decodeBody(t, rec)["project"].(map[string]any)
	if project["name"] != "Renamed" {
		t.Errorf("name = %v, want Renamed", project["name"])
	}
}

func TestUpdateProjectReplacesMembers(t *testing.T) {
	srv := newTestServer(t)
	ownerToken, _ := registerUser(t, srv, "owner@example.com")
	_, m1 := registerUser(t, srv, "m1@example.com")
	_, m2 := registerUser(t, srv, "m2@example.com")

	projectID := createProject(t, srv, ownerToken, "Team", m1)

	rec := doJSON(t, srv, http.MethodPut, "/projects/"+projectID, ownerToken, map[string]any{
		"members": []string{m2},
	})
	wantStatus(t, rec, http.StatusOK)
	members := decodeBody(t, rec)["project"].(map[string]any)["members"].([]any)
	if len(members) != 1 || members[0].(map[string]any)["id"] != m2 {
		t.Errorf("members = %v, want exactly %s", members, m2)
	}

	// a body without a members list clears the membership
	rec = doJSON(t, srv, http.MethodPut, "/projects/"+projectID, ownerToken, map[string]any{
		"description": "still here",
	})
	wantStatus(t, rec, http.StatusOK)
	members = decodeBody(t, rec)["project"].(map[string]any)["members"].([]any)
	if len(members) != 0 {
		t.Errorf("members not cleared: %v", members)
	}
}

func TestDeleteProjectPermissions(t *testing.T) {
	srv := newTestServer(t)
	ownerToken, _ := registerUser(t, srv, "owner@example.com")
	memberToken, memberID := registerUser(t, srv, "member@example.com")

	projectID := createProject(t, srv, ownerToken, "Doomed", memberID)
	taskID := createTask(t, srv, ownerToken, projectID, "Inside", nil)

	rec := doJSON(t, srv, http.MethodDelete, "/projects/"+projectID, memberToken, nil)
	wantError(t, rec, http.StatusForbidden, "Only the project owner can delete the project")

	rec = doJSON(t, srv, http.MethodDelete, "/projects/"+projectID, ownerToken, nil)
	wantStatus(t, rec, http.StatusOK)

	// the project's tasks went with it
	rec = doJSON(t, srv, http.MethodGet, "/tasks/"+taskID+"/comments", ownerToken, nil)
	wantError(t, rec, http.StatusNotFound, "Task not found")
}

func TestProjectIDValidation(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "owner@example.com")

	rec := doJSON(t, srv, http.MethodPut, "/projects/not-a-uuid", token, map[string]any{"name": "x"})
	wantError(t, rec, http.StatusBadRequest, "id must be a valid uuid")

	rec = doJSON(t, srv, http.MethodDelete, "/projects/7a9d8f00-0000-0000-0000-000000000000", token, nil)
	wantError(t, rec, http.StatusNotFound, "Project not found")
}
