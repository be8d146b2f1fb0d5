package integration

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cucumber/godog"

	"github.com/doodlesbykumbi/conjur-authn/pkg/model"
	"github.com/doodlesbykumbi/conjur-authn/pkg/slosilo"
	silostore "github.com/doodlesbykumbi/conjur-authn/pkg/slosilo/store"
	"github.com/doodlesbykumbi/conjur-authn/pkg/slosilo/token"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
	authToken    string
	account      string
	adminAPIKeys map[string]string
	hostAPIKeys  map[string]string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:           tc,
		adminAPIKeys: make(map[string]string),
		hostAPIKeys:  make(map[string]string),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	// Background steps
	sc.Step(`^the server is running$`, s.theServerIsRunning)
	sc.Step(`^an account "([^"]*)" exists$`, s.anAccountExists)
	sc.Step(`^a host "([^"]*)" exists in account "([^"]*)"$`, s.aHostExistsInAccount)
	sc.Step(`^the host "([^"]*)" in account "([^"]*)" is restricted to network "([^"]*)"$`, s.theHostIsRestrictedToNetwork)
	sc.Step(`^a webservice "([^"]*)" exists in account "([^"]*)"$`, s.aWebserviceExistsInAccount)
	sc.Step(`^the role "([^"]*)" in account "([^"]*)" can "([^"]*)" the webservice "([^"]*)"$`, s.theRoleCanAccessWebservice)
	sc.Step(`^the variable "([^"]*)" in account "([^"]*)" has value:$`, s.theVariableHasDocValue)
	sc.Step(`^the host "([^"]*)" in account "([^"]*)" has annotation "([^"]*)" with value "([^"]*)"$`, s.theHostHasAnnotation)

	// Authentication steps
	sc.Step(`^I am authenticated as "([^"]*)" in account "([^"]*)"$`, s.iAmAuthenticatedAs)
	sc.Step(`^I authenticate as "([^"]*)" in account "([^"]*)" with the correct API key$`, s.iAuthenticateWithCorrectAPIKey)
	sc.Step(`^I authenticate as "([^"]*)" in account "([^"]*)" with API key "([^"]*)"$`, s.iAuthenticateWithAPIKey)
	sc.Step(`^I authenticate via "([^"]*)" in account "([^"]*)" with body "([^"]*)"$`, s.iAuthenticateVia)

	// authn-jwt steps
	sc.Step(`^a JWT signing key is configured for service "([^"]*)" in account "([^"]*)"$`, s.aJWTSigningKeyIsConfigured)
	sc.Step(`^I authenticate via "([^"]*)" in account "([^"]*)" with a JWT for host "([^"]*)"$`, s.iAuthenticateWithJWTForHost)
	sc.Step(`^I authenticate via "([^"]*)" in account "([^"]*)" with a JWT claiming "([^"]*)" is "([^"]*)" for host "([^"]*)"$`, s.iAuthenticateWithJWTClaim)

	// Status steps
	sc.Step(`^I request the status of "([^"]*)" in account "([^"]*)"$`, s.iRequestStatus)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^I should receive a valid access token$`, s.iShouldReceiveAValidAccessToken)
	sc.Step(`^the status response should be "([^"]*)"$`, s.theStatusResponseShouldBe)
}

// Background steps

func (s *StepsContext) theServerIsRunning() error {
	// The server is started once by TestContext.
	return nil
}

func (s *StepsContext) anAccountExists(account string) error {
	s.account = account
	adminRoleId := account + ":user:admin"
	policyRoleId := account + ":policy:root"

	keystore := silostore.NewKeyStore(s.tc.DB)
	if _, err := keystore.ByAccount(account); err != nil {
		key, err := slosilo.GenerateKey()
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}
		if err := keystore.Put("authn:"+account, key); err != nil {
			return fmt.Errorf("failed to store signing key: %w", err)
		}
	}

	for _, roleId := range []string{adminRoleId, policyRoleId} {
		if err := s.tc.DB.Exec(`INSERT INTO roles (role_id) VALUES (?) ON CONFLICT DO NOTHING`, roleId).Error; err != nil {
			return err
		}
		if err := s.tc.DB.Exec(`
			INSERT INTO resources (resource_id, owner_id) VALUES (?, ?)
			ON CONFLICT DO NOTHING
		`, roleId, adminRoleId).Error; err != nil {
			return err
		}
	}

	apiKey := "test-admin-api-key-" + account
	s.adminAPIKeys[account] = apiKey
	return s.setAPIKey(adminRoleId, apiKey)
}

func (s *StepsContext) aHostExistsInAccount(hostName, account string) error {
	hostRoleId := account + ":host:" + hostName
	adminRoleId := account + ":user:admin"
	apiKey := "host-api-key-" + hostName
	s.hostAPIKeys[hostName] = apiKey

	if err := s.tc.DB.Exec(`INSERT INTO roles (role_id) VALUES (?) ON CONFLICT DO NOTHING`, hostRoleId).Error; err != nil {
		return err
	}
	if err := s.tc.DB.Exec(`
		INSERT INTO resources (resource_id, owner_id) VALUES (?, ?)
		ON CONFLICT DO NOTHING
	`, hostRoleId, adminRoleId).Error; err != nil {
		return err
	}
	return s.setAPIKey(hostRoleId, apiKey)
}

// setAPIKey replaces the credential row so the silo plugin encrypts the
// key on its way into the database.
func (s *StepsContext) setAPIKey(roleId, apiKey string) error {
	if err := s.tc.DB.Where("role_id = ?", roleId).Delete(&model.Credential{}).Error; err != nil {
		return err
	}
	return s.tc.DB.Create(&model.Credential{RoleId: roleId, ApiKey: []byte(apiKey)}).Error
}

func (s *StepsContext) theHostIsRestrictedToNetwork(hostName, account, network string) error {
	hostRoleId := account + ":host:" + hostName
	return s.tc.DB.Exec(
		`UPDATE credentials SET restricted_to = ?::cidr[] WHERE role_id = ?`,
		"{"+network+"}", hostRoleId,
	).Error
}

func (s *StepsContext) aWebserviceExistsInAccount(webserviceName, account string) error {
	adminRoleId := account + ":user:admin"
	for _, resourceId := range []string{
		account + ":webservice:conjur/" + webserviceName,
		account + ":webservice:conjur/" + webserviceName + "/status",
	} {
		if err := s.tc.DB.Exec(`
			INSERT INTO resources (resource_id, owner_id) VALUES (?, ?)
			ON CONFLICT DO NOTHING
		`, resourceId, adminRoleId).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *StepsContext) theRoleCanAccessWebservice(login, account, privilege, webserviceName string) error {
	roleId := roleIDFromLogin(account, login)
	resourceId := account + ":webservice:conjur/" + webserviceName
	return s.tc.DB.Exec(`
		INSERT INTO permissions (privilege, resource_id, role_id) VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`, privilege, resourceId, roleId).Error
}

func (s *StepsContext) theVariableHasDocValue(variableName, account string, value *godog.DocString) error {
	return s.setVariable(account, variableName, strings.TrimSpace(value.Content))
}

// setVariable creates the variable resource and replaces its value. The
// silo plugin encrypts the value column.
func (s *StepsContext) setVariable(account, variableName, value string) error {
	resourceId := account + ":variable:" + variableName
	adminRoleId := account + ":user:admin"

	if err := s.tc.DB.Exec(`
		INSERT INTO resources (resource_id, owner_id) VALUES (?, ?)
		ON CONFLICT DO NOTHING
	`, resourceId, adminRoleId).Error; err != nil {
		return err
	}
	if err := s.tc.DB.Where("resource_id = ?", resourceId).Delete(&model.Secret{}).Error; err != nil {
		return err
	}
	return s.tc.DB.Create(&model.Secret{ResourceId: resourceId, Version: 1, Value: []byte(value)}).Error
}

func (s *StepsContext) theHostHasAnnotation(hostName, account, name, value string) error {
	resourceId := account + ":host:" + hostName
	return s.tc.DB.Exec(`
		INSERT INTO annotations (resource_id, name, value) VALUES (?, ?, ?)
		ON CONFLICT (resource_id, name) DO UPDATE SET value = EXCLUDED.value
	`, resourceId, name, value).Error
}

// Authentication steps

func (s *StepsContext) iAmAuthenticatedAs(login, account string) error {
	if err := s.iAuthenticateWithCorrectAPIKey(login, account); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusOK {
		return fmt.Errorf("authentication as %s failed with status %d", login, s.response.StatusCode)
	}
	return nil
}

func (s *StepsContext) iAuthenticateWithCorrectAPIKey(login, account string) error {
	apiKey := s.adminAPIKeys[account]
	if strings.HasPrefix(login, "host/") {
		apiKey = s.hostAPIKeys[strings.TrimPrefix(login, "host/")]
	}
	return s.iAuthenticateWithAPIKey(login, account, apiKey)
}

func (s *StepsContext) iAuthenticateWithAPIKey(login, account, apiKey string) error {
	path := fmt.Sprintf("/authn/%s/%s/authenticate", account, url.PathEscape(login))
	return s.post(path, apiKey)
}

// iAuthenticateVia posts an arbitrary body to any authenticator route, e.g.
// "authn-jwt/raw". The login segment is a placeholder; JWT identity comes
// from the token.
func (s *StepsContext) iAuthenticateVia(webserviceName, account, body string) error {
	path := fmt.Sprintf("/%s/%s/%s/authenticate", webserviceName, account, url.PathEscape("host/placeholder"))
	return s.post(path, body)
}

func (s *StepsContext) post(path, body string) error {
	req, err := http.NewRequest("POST", s.tc.ServerURL+path, strings.NewReader(body))
	if err != nil {
		return err
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}

	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	if err != nil {
		return err
	}

	if s.response.StatusCode == http.StatusOK {
		s.authToken = base64.URLEncoding.EncodeToString(s.responseBody)
	}
	return nil
}

// Status steps

func (s *StepsContext) iRequestStatus(webserviceName, account string) error {
	reqURL := fmt.Sprintf("%s/%s/%s/status", s.tc.ServerURL, webserviceName, account)
	req, err := http.NewRequest("GET", reqURL, nil)
	if err != nil {
		return err
	}
	if s.authToken != "" {
		req.Header.Set("Authorization", `Token token="`+s.authToken+`"`)
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expectedStatus int) error {
	if s.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) iShouldReceiveAValidAccessToken() error {
	parsed, err := token.Parse(s.responseBody)
	if err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}
	if parsed.Expired() {
		return fmt.Errorf("token is already expired")
	}
	if parsed.Sub() == "" {
		return fmt.Errorf("token has no sub claim")
	}
	return nil
}

func (s *StepsContext) theStatusResponseShouldBe(expected string) error {
	var payload map[string]string
	if err := json.Unmarshal(s.responseBody, &payload); err != nil {
		return fmt.Errorf("failed to parse status response: %w", err)
	}
	if payload["status"] != expected {
		return fmt.Errorf("expected status %q, got %q (%s)", expected, payload["status"], string(s.responseBody))
	}
	return nil
}

func roleIDFromLogin(account, login string) string {
	if rest, ok := strings.CutPrefix(login, "host/"); ok {
		return account + ":host:" + rest
	}
	return account + ":user:" + login
}
