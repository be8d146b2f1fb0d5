package gorm

import (
	"errors"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/conjur-authn/pkg/model"
	"github.com/doodlesbykumbi/conjur-authn/pkg/server/store"
)

// SecretsStore fetches the latest version of a variable's value. The
// silo plugin registered on the gorm session decrypts the value during
// the query callback, so callers receive plaintext.
type SecretsStore struct {
	db *gorm.DB
}

var _ store.SecretsStore = (*SecretsStore)(nil)

func NewSecretsStore(db *gorm.DB) *SecretsStore {
	return &SecretsStore{db: db}
}

func (s *SecretsStore) FetchSecret(resourceID string) (string, bool, error) {
	var secret model.Secret
	err := s.db.
		Where("resource_id = ?", resourceID).
		Order("version desc").
		First(&secret).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if secret.IsExpired() {
		return "", false, nil
	}
	return string(secret.Value), true, nil
}
