package gorm

import (
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/conjur-authn/pkg/server/store"
)

type HealthStore struct {
	db *gorm.DB
}

var _ store.HealthStore = (*HealthStore)(nil)

func NewHealthStore(db *gorm.DB) *HealthStore {
	return &HealthStore{db: db}
}

func (s *HealthStore) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
