// Package policy holds the authorization rules, one per resource kind. Every
// rule is a pure function over a hydrated model, evaluated fresh on each
// request; there are no cached grants.
//
// Read access to a project extends to its owner and members alike. Mutation
// is owner-only: a member can see a project and its tasks but cannot edit or
// delete them, and the creator of a task has no special rights over it.
package policy

import (
	"github.com/google/uuid"

	"github.com/planhub/planhub/internal/models"
)

func CanAccessProject(userID uuid.UUID, project *models.Project) bool {
	return project.Owner.ID == userID || project.IsMember(userID)
}

func CanMutateProject(userID uuid.UUID, project *models.Project) bool {
	return project.Owner.ID == userID
}

func CanAccessTask(userID uuid.UUID, project *models.Project) bool {
	return CanAccessProject(userID, project)
}

func CanMutateTask(userID uuid.UUID, project *models.Project) bool {
	return CanMutateProject(userID, project)
}

// Comments and attachments share their task's read rule.
func CanAccessComment(userID uuid.UUID, project *models.Project) bool {
	return CanAccessTask(userID, project)
}

func CanAccessAttachment(userID uuid.UUID, project *models.Project) bool {
	return CanAccessTask(userID, project)
}
