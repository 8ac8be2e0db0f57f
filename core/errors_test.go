package core

import (
	"fmt"
	"strings"
	"testing"
)

func TestConfigError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ConfigError
		want string
	}{
		{
			name: "error with action",
			err:  &ConfigError{Code: "TEST_CODE", Message: "Test message", Action: "Take this action"},
			want: "Test message. Take this action",
		},
		{
			name: "error without action",
			err:  &ConfigError{Code: "TEST_CODE", Message: "Test message only"},
			want: "Test message only",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrMissingAuth(t *testing.T) {
	tests := []struct {
		service    string
		wantAction string
	}{
		{"deepseek", "DEEPSEEK_API_KEY"},
		{"vision", "GOOGLE_VISION_API_KEY"},
		{"other", "other"},
	}
	for _, tt := range tests {
		err := ErrMissingAuth(tt.service)
		if err.Code != ErrCodeMissingAuth {
			t.Errorf("ErrMissingAuth(%q).Code = %s", tt.service, err.Code)
		}
		if !strings.Contains(err.Action, tt.wantAction) {
			t.Errorf("ErrMissingAuth(%q).Action = %q, want it to mention %q", tt.service, err.Action, tt.wantAction)
		}
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"https://api.deepseek.com/v1", false},
		{"http://127.0.0.1:8080/v1", false},
		{"", true},
		{"ftp://example.com", true},
		{"https://", true},
		{"not a url", true},
	}
	for _, tt := range tests {
		err := ValidateURL(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
		if err != nil && GetErrorCode(err) != ErrCodeInvalidURL {
			t.Errorf("ValidateURL(%q) code = %q, want %q", tt.raw, GetErrorCode(err), ErrCodeInvalidURL)
		}
	}
}

func TestIsConfigError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("startup: %w", ErrMissingFolder())

	configErr, ok := IsConfigError(wrapped)
	if !ok {
		t.Fatal("IsConfigError() = false for wrapped ConfigError")
	}
	if configErr.Code != ErrCodeMissingFolder {
		t.Errorf("Code = %s, want %s", configErr.Code, ErrCodeMissingFolder)
	}
	if GetErrorCode(fmt.Errorf("plain")) != "" {
		t.Error("GetErrorCode() should be empty for non-config errors")
	}
}
