package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/planhub/planhub/internal/models"
)

// WSHub fans task events out to WebSocket clients subscribed per project.
type WSHub struct {
	connections map[uuid.UUID]map[*websocket.Conn]bool
	mutex       sync.Mutex
}

func NewWSHub() *WSHub {
	return &WSHub{connections: make(map[uuid.UUID]map[*websocket.Conn]bool)}
}

func (hub *WSHub) add(projectID uuid.UUID, conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	if hub.connections[projectID] == nil {
		hub.connections[projectID] = make(map[*websocket.Conn]bool)
	}
	hub.connections[projectID][conn] = true
}

func (hub *WSHub) remove(projectID uuid.UUID, conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.connections[projectID], conn)
}

func (hub *WSHub) broadcast(projectID uuid.UUID, payload map[string]any) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	conns, exists := hub.connections[projectID]
	if !exists {
		return
	}

	message, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal ws event: %v", err)
		return
	}
	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("Failed to send WebSocket message: %v", err)
			delete(conns, conn)
			conn.Close()
		}
	}
}

// BroadcastTaskUpdate notifies the task's project subscribers of a create or
// update.
func (hub *WSHub) BroadcastTaskUpdate(projectID uuid.UUID, task *models.Task) {
	hub.broadcast(projectID, map[string]any{
		"event":   "task_updated",
		"task_id": task.ID,
		"title":   task.Title,
		"status":  task.Status,
	})
}

func (hub *WSHub) BroadcastTaskDeletion(projectID, taskID uuid.UUID) {
	hub.broadcast(projectID, map[string]any{
		"event":   "task_deleted",
		"task_id": taskID,
	})
}

// HandleWebSocket upgrades the connection after the bearer middleware has run
// and the caller's read access to the project has been checked.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.URL.Query().Get("project_id"))
	if err != nil {
		sendError(w, "project_id is required (uuid)", http.StatusBadRequest)
		return
	}

	project := h.loadProjectForCaller(w, r, projectID)
	if project == nil {
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.WSHub.add(project.ID, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.WSHub.remove(project.ID, conn)
			conn.Close()
			return
		}
	}
}
