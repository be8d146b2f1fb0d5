package model

import "time"

// Secret is one version of a variable's value, encrypted at rest by the
// silo gorm plugin with the owning resource id as additional data.
type Secret struct {
	ResourceId string
	Version    int
	Value      []byte     `slosilo:"encrypted;aad:ResourceId"`
	ExpiresAt  *time.Time `gorm:"column:expires_at"`
}

// IsExpired returns true if the secret has an expiration time that has passed
func (s *Secret) IsExpired() bool {
	if s.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*s.ExpiresAt)
}

func (s Secret) TableName() string {
	return "secrets"
}
