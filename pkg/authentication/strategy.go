package authentication

import (
	"context"

	"github.com/doodlesbykumbi/conjur-authn/pkg/audit"
)

// Strategy sequences the authenticate pipeline: registry lookup, security
// validation, origin check, credential verification, token issuance. It
// holds no per-request state; one instance serves concurrent requests.
type Strategy struct {
	authenticators        Authenticators
	security              SecurityValidator
	origin                OriginValidator
	tokenFactory          TokenFactory
	auditLog              AuditLogger
	enabledAuthenticators EnabledAuthenticatorsSource
}

// NewStrategy builds a Strategy.
func NewStrategy(
	authenticators Authenticators,
	security SecurityValidator,
	origin OriginValidator,
	tokenFactory TokenFactory,
	auditLog AuditLogger,
	enabledAuthenticators EnabledAuthenticatorsSource,
) *Strategy {
	return &Strategy{
		authenticators:        authenticators,
		security:              security,
		origin:                origin,
		tokenFactory:          tokenFactory,
		auditLog:              auditLog,
		enabledAuthenticators: enabledAuthenticators,
	}
}

// Authenticate validates one authentication request end to end and returns
// a signed access token. Errors from the validators and the authenticator
// propagate unchanged; every terminal outcome produces exactly one audit
// event.
func (s *Strategy) Authenticate(ctx context.Context, input AuthenticatorInput) ([]byte, error) {
	roleID, err := s.authenticate(ctx, input)

	// Token issuance is part of the audited span: a signing failure is a
	// terminal failure and must not be recorded as a success.
	var signedToken []byte
	if err == nil {
		signedToken, err = s.tokenFactory.SignedToken(input.Account, LoginFromRoleID(roleID))
	}

	event := audit.AuthenticateEvent{
		RoleID:            roleID,
		ClientIP:          input.ClientIP,
		AuthenticatorName: input.AuthenticatorName,
		ServiceID:         input.ServiceID,
		Success:           err == nil,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	s.auditLog.Log(event)

	if err != nil {
		return nil, err
	}
	return signedToken, nil
}

func (s *Strategy) authenticate(ctx context.Context, input AuthenticatorInput) (string, error) {
	authenticator, ok := s.authenticators.Lookup(input.AuthenticatorName, input.ServiceID)
	if !ok {
		return s.requestRoleID(input), &AuthenticatorNotFoundError{Name: input.AuthenticatorName}
	}

	enabled, err := s.enabledAuthenticators.Enabled(input.Account)
	if err != nil {
		return s.requestRoleID(input), err
	}
	if err := s.security.Validate(input.ToAccessRequest(enabled)); err != nil {
		return s.requestRoleID(input), err
	}

	if err := s.origin.ValidateOrigin(input.Account, input.Username, input.ClientIP); err != nil {
		return s.requestRoleID(input), err
	}

	roleID, err := authenticator.Authenticate(ctx, input)
	if err != nil {
		return s.requestRoleID(input), err
	}
	return roleID, nil
}

// requestRoleID is the best identity we can attribute a failure to before
// credential verification has resolved one.
func (s *Strategy) requestRoleID(input AuthenticatorInput) string {
	if input.Username == "" {
		return ""
	}
	return RoleIDFromLogin(input.Account, input.Username)
}
