package authentication

import (
	"context"

	"github.com/doodlesbykumbi/conjur-authn/pkg/audit"
)

// Status is the health-check variant of the authenticate pipeline. The
// security gate is evaluated against the ".../status" sub-resource, so
// access to status checks is granted independently from authenticate
// access.
type Status struct {
	authenticators        Authenticators
	security              SecurityValidator
	auditLog              AuditLogger
	enabledAuthenticators EnabledAuthenticatorsSource
}

// NewStatus builds a Status orchestrator.
func NewStatus(
	authenticators Authenticators,
	security SecurityValidator,
	auditLog AuditLogger,
	enabledAuthenticators EnabledAuthenticatorsSource,
) *Status {
	return &Status{
		authenticators:        authenticators,
		security:              security,
		auditLog:              auditLog,
		enabledAuthenticators: enabledAuthenticators,
	}
}

// Validate runs the status pipeline for one authenticator instance. A nil
// return means the authenticator is correctly configured and reachable.
// Errors raised by the authenticator's own status check propagate
// unchanged; they are the most useful diagnostic.
func (s *Status) Validate(ctx context.Context, input AuthenticatorStatusInput) error {
	err := s.validate(ctx, input)

	event := audit.ValidateStatusEvent{
		RoleID:            s.requestRoleID(input),
		ClientIP:          input.ClientIP,
		AuthenticatorName: input.AuthenticatorName,
		ServiceID:         input.ServiceID,
		Success:           err == nil,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	s.auditLog.Log(event)

	return err
}

func (s *Status) validate(ctx context.Context, input AuthenticatorStatusInput) error {
	if err := s.security.ValidateAccountExists(input.Account); err != nil {
		return err
	}

	if input.ServiceID == "" {
		return &ServiceIDMissingError{AuthenticatorName: input.AuthenticatorName}
	}

	enabled, err := s.enabledAuthenticators.Enabled(input.Account)
	if err != nil {
		return err
	}
	whitelist := WebservicesFromString(input.Account, enabled)
	if err := s.security.ValidateWebserviceIsWhitelisted(input.Webservice(), input.Account, whitelist); err != nil {
		return err
	}

	// Access to the status route is gated on the status sub-resource, with
	// the read privilege rather than authenticate.
	if err := s.security.ValidateRoleCanAccessWebservice(
		input.StatusWebservice(), input.Account, input.Username, PrivilegeRead,
	); err != nil {
		return err
	}

	if err := s.security.ValidateWebserviceExists(input.Webservice(), input.Account); err != nil {
		return err
	}

	authenticator, ok := s.authenticators.Lookup(input.AuthenticatorName, input.ServiceID)
	if !ok {
		return &AuthenticatorNotFoundError{Name: input.AuthenticatorName}
	}

	statusProvider, ok := authenticator.(StatusProvider)
	if !ok {
		return &StatusNotImplementedError{Name: authenticator.Name()}
	}

	return statusProvider.Status(ctx, input)
}

func (s *Status) requestRoleID(input AuthenticatorStatusInput) string {
	if input.Username == "" {
		return ""
	}
	return RoleIDFromLogin(input.Account, input.Username)
}
