package audit

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetWriter(&buf)

	event := AuthenticateEvent{
		RoleID:            "myorg:user:admin",
		ClientIP:          "192.168.1.1",
		AuthenticatorName: "authn",
		Success:           true,
	}

	logger.Log(event)

	output := buf.String()

	// Check RFC5424 format components
	if !strings.Contains(output, "conjur") {
		t.Error("Expected app name 'conjur' in output")
	}
	if !strings.Contains(output, "authn") {
		t.Error("Expected message ID 'authn' in output")
	}
	if !strings.Contains(output, "myorg:user:admin") {
		t.Error("Expected role ID in output")
	}
	if !strings.Contains(output, "192.168.1.1") {
		t.Error("Expected client IP in output")
	}
	if !strings.Contains(output, "successfully authenticated") {
		t.Error("Expected success message in output")
	}
}

func TestAuthenticateEvent(t *testing.T) {
	tests := []struct {
		name      string
		event     AuthenticateEvent
		wantMsg   string
		wantSev   Severity
		wantFac   int
		wantMsgID string
	}{
		{
			name: "successful authentication",
			event: AuthenticateEvent{
				RoleID:            "myorg:user:admin",
				ClientIP:          "10.0.0.1",
				AuthenticatorName: "authn",
				Success:           true,
			},
			wantMsg:   "successfully authenticated",
			wantSev:   SeverityInfo,
			wantFac:   FacilityAuthPriv,
			wantMsgID: "authn",
		},
		{
			name: "failed authentication",
			event: AuthenticateEvent{
				RoleID:            "myorg:user:admin",
				ClientIP:          "10.0.0.1",
				AuthenticatorName: "authn",
				Success:           false,
				ErrorMessage:      "invalid credentials",
			},
			wantMsg:   "failed to authenticate",
			wantSev:   SeverityWarning,
			wantFac:   FacilityAuthPriv,
			wantMsgID: "authn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.event.Message(), tt.wantMsg) {
				t.Errorf("Message() = %q, want to contain %q", tt.event.Message(), tt.wantMsg)
			}
			if tt.event.Severity() != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", tt.event.Severity(), tt.wantSev)
			}
			if tt.event.Facility() != tt.wantFac {
				t.Errorf("Facility() = %v, want %v", tt.event.Facility(), tt.wantFac)
			}
			if tt.event.MessageID() != tt.wantMsgID {
				t.Errorf("MessageID() = %v, want %v", tt.event.MessageID(), tt.wantMsgID)
			}
		})
	}
}

func TestAuthenticateEventServiceID(t *testing.T) {
	event := AuthenticateEvent{
		RoleID:            "myorg:host:my-vm",
		ClientIP:          "10.0.0.1",
		AuthenticatorName: "authn-jwt",
		ServiceID:         "prod",
		Success:           true,
	}

	sd := event.StructuredData()
	if sd[SDIDAuth]["service"] != "prod" {
		t.Errorf("StructuredData() service = %v, want 'prod'", sd[SDIDAuth]["service"])
	}
}

func TestValidateStatusEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   ValidateStatusEvent
		wantMsg string
		wantSev Severity
	}{
		{
			name: "healthy authenticator",
			event: ValidateStatusEvent{
				RoleID:            "myorg:user:operator",
				ClientIP:          "10.0.0.1",
				AuthenticatorName: "authn-jwt",
				ServiceID:         "prod",
				Success:           true,
			},
			wantMsg: "successfully validated status of authenticator authn-jwt/prod",
			wantSev: SeverityInfo,
		},
		{
			name: "unhealthy authenticator",
			event: ValidateStatusEvent{
				RoleID:            "myorg:user:operator",
				ClientIP:          "10.0.0.1",
				AuthenticatorName: "authn-jwt",
				ServiceID:         "prod",
				Success:           false,
				ErrorMessage:      "provider unreachable",
			},
			wantMsg: "failed to validate status of authenticator authn-jwt/prod: provider unreachable",
			wantSev: SeverityWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.event.Message(), tt.wantMsg) {
				t.Errorf("Message() = %q, want to contain %q", tt.event.Message(), tt.wantMsg)
			}
			if tt.event.Severity() != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", tt.event.Severity(), tt.wantSev)
			}
			if tt.event.MessageID() != "status" {
				t.Errorf("MessageID() = %v, want 'status'", tt.event.MessageID())
			}
		})
	}
}

func TestServiceLogsWithoutStore(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetWriter(&buf)

	service := NewService(logger, nil)
	service.Log(ValidateStatusEvent{
		RoleID:            "myorg:user:operator",
		AuthenticatorName: "authn-gcp",
		Success:           true,
	})

	if !strings.Contains(buf.String(), "validated status") {
		t.Errorf("Service.Log() output = %q, want status message", buf.String())
	}
}
