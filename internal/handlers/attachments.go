package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/planhub/planhub/internal/models"
)

const maxAttachmentSize = 10 << 20 // 10MB

// UploadAttachment accepts a multipart/form-data body with a "file" part and
// stores the blob alongside the task.
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	id, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	task, _ := h.loadTaskForCaller(w, r, id)
	if task == nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		sendError(w, "File is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		sendError(w, "Failed to read file", http.StatusBadRequest)
		return
	}

	attachment := &models.Attachment{
		ID:          uuid.New(),
		TaskID:      task.ID,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		UploadedBy:  *user,
		UploadedAt:  time.Now().UTC(),
	}
	if err := h.AttachmentRepo.Create(r.Context(), attachment); err != nil {
		sendStoreError(w, err)
		return
	}
	sendResult(w, http.StatusCreated, "Request processed successfully", "attachment", toAttachmentResponse(attachment))
}

func (h *Handler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	id, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	task, _ := h.loadTaskForCaller(w, r, id)
	if task == nil {
		return
	}

	attachments, err := h.AttachmentRepo.ListByTask(r.Context(), task.ID)
	if err != nil {
		sendStoreError(w, err)
		return
	}

	list := make([]attachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		list = append(list, toAttachmentResponse(a))
	}
	sendResult(w, http.StatusOK, "Request processed successfully", "attachments", list)
}

// DownloadAttachment serves the stored blob with its original content type;
// this is the retrievable URL reported in attachment responses.
func (h *Handler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	id, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	task, _ := h.loadTaskForCaller(w, r, id)
	if task == nil {
		return
	}

	attID, err := uuid.Parse(chi.URLParam(r, "attachmentID"))
	if err != nil {
		sendError(w, "attachment id must be a valid uuid", http.StatusBadRequest)
		return
	}

	attachment, err := h.AttachmentRepo.GetByID(r.Context(), attID)
	if err != nil || attachment.TaskID != task.ID {
		sendError(w, "Attachment not found", http.StatusNotFound)
		return
	}

	contentType := attachment.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+attachment.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(attachment.Data)
}
