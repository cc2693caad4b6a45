package handlers

import (
	"github.com/go-chi/chi/v5"
)

// Routes assembles the HTTP surface. Everything except register, login and
// the health check sits behind the bearer-token middleware.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Get("/health", h.HealthCheck)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.UpdateProfile)
		r.Get("/users", h.ListUsers)

		r.Get("/projects", h.ListProjects)
		r.Post("/projects/create", h.CreateProject)
		r.Put("/projects/{id}", h.UpdateProject)
		r.Delete("/projects/{id}", h.DeleteProject)

		r.Get("/tasks", h.ListTasks)
		r.Post("/tasks/create", h.CreateTask)
		r.Route("/tasks/{id}", func(r chi.Router) {
			r.Put("/", h.UpdateTask)
			r.Delete("/", h.DeleteTask)
			r.Get("/comments", h.ListComments)
			r.Post("/attachments", h.UploadAttachment)
			r.Get("/attachments", h.ListAttachments)
			r.Get("/attachments/{attachmentID}/download", h.DownloadAttachment)
		})

		r.Post("/comments/create", h.CreateComment)

		r.Post("/categories/create", h.CreateCategory)
		r.Get("/categories", h.ListCategories)

		r.Get("/ws", h.HandleWebSocket)
	})

	return r
}
