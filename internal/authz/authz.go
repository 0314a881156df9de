// Package authz answers, for every principal and every resource, "may this
// user see or change this?". Two orthogonal axes compose here: membership
// (contributors may view everything inside a project) and authorship (only the
// creator may mutate what they created). Project authors additionally hold the
// team-management capability over the Contributor sub-resource.
package authz

import (
	"errors"

	"github.com/softdeck/softdeck/internal/apierr"
	"github.com/softdeck/softdeck/internal/models"
	"gorm.io/gorm"
)

// IsMember reports whether a contributor row exists for (user, project). The
// query always hits the store directly; membership changes must be visible to
// the very next check.
func IsMember(db *gorm.DB, userID, projectID uint) (bool, error) {
	var count int64

	err := db.Model(&models.Contributor{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// IsProjectAuthor reports whether the user authored the project.
func IsProjectAuthor(db *gorm.DB, userID, projectID uint) (bool, error) {
	var count int64

	err := db.Model(&models.Project{}).
		Where("id = ? AND author_id = ?", projectID, userID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// GetProject loads a project or classifies its absence as not-found.
func GetProject(db *gorm.DB, projectID uint) (models.Project, error) {
	var project models.Project

	if err := db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Project{}, apierr.NotFound("project not found")
		}
		return models.Project{}, err
	}

	return project, nil
}

// RequireProjectAccess grants view access to the project's author and to its
// contributors. Non-members get an explicit forbidden, not a not-found.
func RequireProjectAccess(db *gorm.DB, userID uint, project models.Project) error {
	if project.AuthorID == userID {
		return nil
	}

	member, err := IsMember(db, userID, project.ID)
	if err != nil {
		return err
	}

	if !member {
		return apierr.Forbidden("you are not a contributor of this project")
	}

	return nil
}

// RequireProjectAuthor gates mutations of the project itself and all team
// management. Authorship is checked against the stored row, never the payload.
func RequireProjectAuthor(userID uint, project models.Project) error {
	if project.AuthorID != userID {
		return apierr.Forbidden("only the project author may perform this action")
	}

	return nil
}

// RequireAuthor gates mutation of an individual issue or comment: contributors
// who are not the author keep read access but may never mutate.
func RequireAuthor(userID, authorID uint) error {
	if authorID != userID {
		return apierr.Forbidden("only the author may perform this action")
	}

	return nil
}

// VisibleProjects builds the membership-scoped project query: rows where the
// principal is a contributor or the author, as a single SQL filter so the
// scope survives pagination. The (user, project) unique index guarantees at
// most one joined contributor row, so no DISTINCT is needed.
func VisibleProjects(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&models.Project{}).
		Joins("LEFT JOIN contributors ON contributors.project_id = projects.id AND contributors.user_id = ?", userID).
		Where("contributors.id IS NOT NULL OR projects.author_id = ?", userID)
}
