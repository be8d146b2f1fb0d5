package model

// AuthenticatorConfig is a persisted per-webservice enablement record,
// written by the authenticator-enable API. It complements the environment
// whitelist: an authenticator is enabled if either source lists it.
type AuthenticatorConfig struct {
	ID         int64  `gorm:"column:id;primaryKey"`
	ResourceID string `gorm:"column:resource_id;not null"`
	Enabled    bool   `gorm:"column:enabled;not null;default:false"`
}

func (AuthenticatorConfig) TableName() string {
	return "authenticator_configs"
}
