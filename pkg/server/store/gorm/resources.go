package gorm

import (
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/conjur-authn/pkg/server/store"
)

type ResourcesStore struct {
	db *gorm.DB
}

var _ store.ResourcesStore = (*ResourcesStore)(nil)

func NewResourcesStore(db *gorm.DB) *ResourcesStore {
	return &ResourcesStore{db: db}
}

func (s *ResourcesStore) ResourceExists(resourceID string) (bool, error) {
	var exists bool
	err := s.db.Raw(
		"SELECT EXISTS(SELECT 1 FROM resources WHERE resource_id = ?)", resourceID,
	).Scan(&exists).Error
	if err != nil {
		return false, err
	}
	return exists, nil
}
