package gorm

import (
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/conjur-authn/pkg/model"
	"github.com/doodlesbykumbi/conjur-authn/pkg/server/store"
)

// RolesStore answers role queries from the roles, permissions and
// annotations tables. Authorization goes through the is_role_allowed_to
// database function so membership transitivity lives in one place.
type RolesStore struct {
	db *gorm.DB
}

var _ store.RolesStore = (*RolesStore)(nil)

func NewRolesStore(db *gorm.DB) *RolesStore {
	return &RolesStore{db: db}
}

func (s *RolesStore) RoleExists(roleID string) (bool, error) {
	var exists bool
	err := s.db.Raw(
		"SELECT EXISTS(SELECT 1 FROM roles WHERE role_id = ?)", roleID,
	).Scan(&exists).Error
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *RolesStore) RoleAllowedTo(roleID, privilege, resourceID string) (bool, error) {
	var allowed bool
	err := s.db.Raw(
		"SELECT is_role_allowed_to(?, ?, ?)", roleID, privilege, resourceID,
	).Scan(&allowed).Error
	if err != nil {
		return false, err
	}
	return allowed, nil
}

func (s *RolesStore) RoleAnnotations(roleID string) (map[string]string, error) {
	var rows []model.Annotation
	err := s.db.Where("resource_id = ?", roleID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	annotations := make(map[string]string, len(rows))
	for _, row := range rows {
		annotations[row.Name] = row.Value
	}
	return annotations, nil
}
