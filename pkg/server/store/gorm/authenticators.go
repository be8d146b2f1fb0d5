package gorm

import (
	"strings"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/conjur-authn/pkg/model"
	"github.com/doodlesbykumbi/conjur-authn/pkg/server/store"
)

// AuthenticatorsStore reads persisted authenticator enablement. Records
// reference the authenticator webservice resource, e.g.
// "cucumber:webservice:conjur/authn-jwt/prod".
type AuthenticatorsStore struct {
	db *gorm.DB
}

var _ store.AuthenticatorsStore = (*AuthenticatorsStore)(nil)

func NewAuthenticatorsStore(db *gorm.DB) *AuthenticatorsStore {
	return &AuthenticatorsStore{db: db}
}

func (s *AuthenticatorsStore) PersistedEnabledAuthenticators(account string) ([]string, error) {
	prefix := account + ":webservice:conjur/"

	var rows []model.AuthenticatorConfig
	err := s.db.
		Where("enabled AND resource_id LIKE ?", prefix+"%").
		Order("resource_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, strings.TrimPrefix(row.ResourceID, prefix))
	}
	return names, nil
}
