package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/conjur/config"
	ConfigFileName    = "conjur.yml"
)

// ValidAuthenticators is the list of installable authenticator types.
var ValidAuthenticators = []string{
	"authn", "authn-jwt", "authn-gcp", "authn-oidc",
}

// Config holds the server configuration. Values come from defaults, the
// config file, and environment variables, in increasing precedence.
type Config struct {
	// TrustedProxies is a list of CIDR ranges whose X-Forwarded-For
	// headers are honored when resolving the client IP.
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	// Authenticators is the enabled authenticator whitelist, e.g.
	// ["authn-jwt/prod", "authn-gcp"].
	Authenticators []string `yaml:"authenticators" json:"authenticators"`

	// AuthnAPIKeyDefault keeps the base API key authenticator enabled
	// even when absent from the whitelist.
	AuthnAPIKeyDefault bool `yaml:"authn_api_key_default" json:"authn_api_key_default"`

	// UserAuthorizationTokenTTL is the TTL for user tokens in seconds.
	UserAuthorizationTokenTTL int `yaml:"user_authorization_token_ttl" json:"user_authorization_token_ttl"`

	// HostAuthorizationTokenTTL is the TTL for host tokens in seconds.
	HostAuthorizationTokenTTL int `yaml:"host_authorization_token_ttl" json:"host_authorization_token_ttl"`

	// sources tracks where each value came from
	sources map[string]string

	configFilePath string
}

// Attribute is a configuration attribute with its value and provenance.
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment.
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

func newDefault() *Config {
	return &Config{
		TrustedProxies:            []string{},
		Authenticators:            []string{},
		AuthnAPIKeyDefault:        true,
		UserAuthorizationTokenTTL: 480,
		HostAuthorizationTokenTTL: 480,
		sources:                   make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("CONJUR_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"trusted_proxies", "authenticators", "authn_api_key_default",
		"user_authorization_token_ttl", "host_authorization_token_ttl",
	}
}

func (c *Config) applyFileConfig(file *Config) {
	if len(file.TrustedProxies) > 0 {
		c.TrustedProxies = file.TrustedProxies
		c.sources["trusted_proxies"] = "file"
	}
	if len(file.Authenticators) > 0 {
		c.Authenticators = file.Authenticators
		c.sources["authenticators"] = "file"
	}
	if file.UserAuthorizationTokenTTL != 0 {
		c.UserAuthorizationTokenTTL = file.UserAuthorizationTokenTTL
		c.sources["user_authorization_token_ttl"] = "file"
	}
	if file.HostAuthorizationTokenTTL != 0 {
		c.HostAuthorizationTokenTTL = file.HostAuthorizationTokenTTL
		c.sources["host_authorization_token_ttl"] = "file"
	}
}

func (c *Config) applyEnvConfig() {
	if val := os.Getenv("CONJUR_TRUSTED_PROXIES"); val != "" {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = "environment"
	}
	if val := os.Getenv("CONJUR_AUTHENTICATORS"); val != "" {
		c.Authenticators = splitAndTrim(val)
		c.sources["authenticators"] = "environment"
	}
	if val := os.Getenv("CONJUR_AUTHN_API_KEY_DEFAULT"); val != "" {
		c.AuthnAPIKeyDefault = val == "true" || val == "1"
		c.sources["authn_api_key_default"] = "environment"
	}
	if val := os.Getenv("CONJUR_USER_AUTHORIZATION_TOKEN_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.UserAuthorizationTokenTTL = i
			c.sources["user_authorization_token_ttl"] = "environment"
		}
	}
	if val := os.Getenv("CONJUR_HOST_AUTHORIZATION_TOKEN_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.HostAuthorizationTokenTTL = i
			c.sources["host_authorization_token_ttl"] = "environment"
		}
	}
}

// ConfigFilePath returns the path to the config file.
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the provenance of a configuration attribute.
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// AuthenticatorsString returns the whitelist in the comma-separated form
// the authentication pipeline consumes.
func (c *Config) AuthenticatorsString() string {
	return strings.Join(c.Authenticators, ",")
}

// UserTokenTTL returns the user token TTL as a duration.
func (c *Config) UserTokenTTL() time.Duration {
	return time.Duration(c.UserAuthorizationTokenTTL) * time.Second
}

// HostTokenTTL returns the host token TTL as a duration.
func (c *Config) HostTokenTTL() time.Duration {
	return time.Duration(c.HostAuthorizationTokenTTL) * time.Second
}

// IsTrustedProxy checks whether an IP belongs to a trusted proxy.
func (c *Config) IsTrustedProxy(ip string) bool {
	if len(c.TrustedProxies) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			if net.ParseIP(cidr) != nil && cidr == ip {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate checks the configuration for malformed values.
func (c *Config) Validate() error {
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}

	validAuthenticators := make(map[string]bool)
	for _, a := range ValidAuthenticators {
		validAuthenticators[a] = true
	}
	for _, auth := range c.Authenticators {
		authType := strings.Split(auth, "/")[0]
		if !validAuthenticators[authType] {
			return fmt.Errorf("invalid authenticator type: %s", authType)
		}
	}

	return nil
}

// Attributes returns all configuration attributes with values and sources.
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
		{Name: "authenticators", Value: strings.Join(c.Authenticators, ","), Source: c.Source("authenticators")},
		{Name: "authn_api_key_default", Value: strconv.FormatBool(c.AuthnAPIKeyDefault), Source: c.Source("authn_api_key_default")},
		{Name: "user_authorization_token_ttl", Value: strconv.Itoa(c.UserAuthorizationTokenTTL), Source: c.Source("user_authorization_token_ttl")},
		{Name: "host_authorization_token_ttl", Value: strconv.Itoa(c.HostAuthorizationTokenTTL), Source: c.Source("host_authorization_token_ttl")},
	}
}

// FormatText returns a text rendering of the configuration.
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-32s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-32s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-32s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON rendering of the configuration.
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
