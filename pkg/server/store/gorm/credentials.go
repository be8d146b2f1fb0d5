package gorm

import (
	"errors"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/conjur-authn/pkg/model"
	"github.com/doodlesbykumbi/conjur-authn/pkg/server/store"
)

type CredentialsStore struct {
	db *gorm.DB
}

var _ store.CredentialsStore = (*CredentialsStore)(nil)

func NewCredentialsStore(db *gorm.DB) *CredentialsStore {
	return &CredentialsStore{db: db}
}

func (s *CredentialsStore) FetchCredential(roleID string) (*model.Credential, error) {
	var credential model.Credential
	err := s.db.Where("role_id = ?", roleID).First(&credential).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &credential, nil
}
