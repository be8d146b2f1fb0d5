package audit

import "fmt"

// ValidateStatusEvent represents an authenticator status check audit event
type ValidateStatusEvent struct {
	RoleID            string
	ClientIP          string
	AuthenticatorName string
	ServiceID         string
	Success           bool
	ErrorMessage      string
}

func (e ValidateStatusEvent) MessageID() string {
	return "status"
}

func (e ValidateStatusEvent) Message() string {
	service := e.AuthenticatorName
	if e.ServiceID != "" {
		service += "/" + e.ServiceID
	}
	if e.Success {
		return fmt.Sprintf("%s successfully validated status of authenticator %s", e.RoleID, service)
	}
	msg := fmt.Sprintf("%s failed to validate status of authenticator %s", e.RoleID, service)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e ValidateStatusEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e ValidateStatusEvent) Facility() int {
	return FacilityAuthPriv
}

func (e ValidateStatusEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"authenticator": e.AuthenticatorName,
			"user":          e.RoleID,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "validate-status",
		},
	}
	if e.ServiceID != "" {
		sd[SDIDAuth]["service"] = e.ServiceID
	}
	if e.Success {
		sd[SDIDAction]["result"] = "success"
	} else {
		sd[SDIDAction]["result"] = "failure"
	}
	return sd
}
