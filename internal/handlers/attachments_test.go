package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
)

// uploadFile posts a multipart body with a single "file" part.
func uploadFile(t *testing.T, srv http.Handler, token, taskID, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/tasks/"+taskID+"/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestUploadAndDownloadAttachment(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "owner@example.com")
	projectID := createProject(t, srv, token, "Board")
	taskID := createTask(t, srv, token, projectID, "Documented", nil)

	content := []byte("meeting notes")
	rec := uploadFile(t, srv, token, taskID, "notes.txt", "text/plain", content)
	wantStatus(t, rec, http.StatusCreated)

	attachment := decodeBody(t, rec)["attachment"].(map[string]any)
	if attachment["filename"] != "notes.txt" || attachment["content_type"] != "text/plain" {
		t.Errorf("unexpected attachment: %v", attachment)
	}
	fileURL, _ := attachment["file_url"].(string)
	if fileURL == "" {
		t.Fatal("no file_url in response")
	}

	// the reported URL serves the original bytes back
	rec = doJSON(t, srv, http.MethodGet, fileURL, token, nil)
	wantStatus(t, rec, http.StatusOK)
	if !bytes.Equal(rec.Body.Bytes(), content) {
		t.Errorf("downloaded %q, want %q", rec.Body.Bytes(), content)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain" {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
}

func TestUploadAttachmentRequiresFile(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "owner@example.com")
	projectID := createProject(t, srv, token, "Board")
	taskID := createTask(t, srv, token, projectID, "Bare", nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("note", "no file here")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/tasks/"+taskID+"/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	wantError(t, rec, http.StatusBadRequest, "File is required")
}

func TestListAttachments(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "owner@example.com")
	projectID := createProject(t, srv, token, "Board")
	taskID := createTask(t, srv, token, projectID, "Filed", nil)

	uploadFile(t, srv, token, taskID, "a.txt", "text/plain", []byte("a"))
	uploadFile(t, srv, token, taskID, "b.txt", "text/plain", []byte("b"))

	rec := doJSON(t, srv, http.MethodGet, "/tasks/"+taskID+"/attachments", token, nil)
	wantStatus(t, rec, http.StatusOK)
	attachments := decodeBody(t, rec)["attachments"].([]any)
	if len(attachments) != 2 {
		t.Fatalf("got %d attachments, want 2", len(attachments))
	}
}

func TestDownloadAttachmentWrongTask(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "owner@example.com")
	projectID := createProject(t, srv, token, "Board")
	t1 := createTask(t, srv, token, projectID, "One", nil)
	t2 := createTask(t, srv, token, projectID, "Two", nil)

	rec := uploadFile(t, srv, token, t1, "secret.txt", "text/plain", []byte("x"))
	wantStatus(t, rec, http.StatusCreated)
	attID := decodeBody(t, rec)["attachment"].(map[string]any)["id"].(string)

	// an attachment is only reachable through its own task
	rec = doJSON(t, srv, http.MethodGet, "/tasks/"+t2+"/attachments/"+attID+"/download", token, nil)
	wantError(t, rec, http.StatusNotFound, "Attachment not found")
}

func TestAttachmentsInvisibleToStrangers(t *testing.T) {
	srv := newTestServer(t)
	ownerToken, _ := registerUser(t, srv, "owner@example.com")
	strangerToken, _ := registerUser(t, srv, "stranger@example.com")
	projectID := createProject(t, srv, ownerToken, "Private")
	taskID := createTask(t, srv, ownerToken, projectID, "Hidden", nil)

	rec := uploadFile(t, srv, ownerToken, taskID, "secret.txt", "text/plain", []byte("x"))
	wantStatus(t, rec, http.StatusCreated)
	attID := decodeBody(t, rec)["attachment"].(map[string]any)["id"].(string)

	rec = doJSON(t, srv, http.MethodGet, "/tasks/"+taskID+"/attachments", strangerToken, nil)
	wantError(t, rec, http.StatusNotFound, "Task not found")
	rec = doJSON(t, srv, http.MethodGet, "/tasks/"+taskID+"/attachments/"+attID+"/download", strangerToken, nil)
	wantError(t, rec, http.StatusNotFound, "Task not found")
}
