package model

import (
	"net"
	"strings"
)

// Credential holds a role's authentication material. API keys and password
// hashes are encrypted at rest by the silo gorm plugin.
type Credential struct {
	RoleId        string
	ApiKey        []byte `slosilo:"encrypted;aad:RoleId"`
	EncryptedHash []byte `slosilo:"encrypted;aad:RoleId"`

	// RestrictedTo is a PostgreSQL cidr[] literal, e.g.
	// {192.168.1.0/24,10.0.0.0/8}. Empty means no network restriction.
	RestrictedTo string `gorm:"column:restricted_to"`
}

func (c Credential) TableName() string {
	return "credentials"
}

// ValidOrigin reports whether a client IP satisfies the credential's
// network restrictions. No restrictions means any origin is acceptable.
func (c *Credential) ValidOrigin(ipStr string) bool {
	if c.RestrictedTo == "" || c.RestrictedTo == "{}" {
		return true
	}

	host := ipStr
	if strings.Contains(ipStr, ":") {
		if h, _, err := net.SplitHostPort(ipStr); err == nil {
			host = h
		}
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}

	// Parse the cidr[] literal: {192.168.1.0/24,10.0.0.0/8}
	for _, cidr := range strings.Split(strings.Trim(c.RestrictedTo, "{}"), ",") {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		if !strings.Contains(cidr, "/") {
			// A bare address restricts to exactly that host.
			if restricted := net.ParseIP(cidr); restricted != nil && restricted.Equal(ip) {
				return true
			}
			continue
		}
		if _, network, err := net.ParseCIDR(cidr); err == nil && network.Contains(ip) {
			return true
		}
	}
	return false
}
