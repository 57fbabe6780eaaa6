package gateways

import (
	"strings"
	"testing"
)

// Test CSRF token extraction from login pages
func TestExtractCSRFToken(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		want    string
		wantErr bool
	}{
		{
			name: "hidden input",
			page: `<form><input type="hidden" name="csrfmiddlewaretoken" value="abc"></form>`,
			want: "abc",
		},
		{
			name: "attribute order",
			page: `<input value="xyz" name="csrfmiddlewaretoken" />`,
			want: "xyz",
		},
		{
			name: "other inputs first",
			page: `<input name="username" value="u"><input name="csrfmiddlewaretoken" value="t">`,
			want: "t",
		},
		{
			name:    "missing",
			page:    `<form><input name="username"></form>`,
			wantErr: true,
		},
		{
			name:    "empty page",
			page:    ``,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractCSRFToken(strings.NewReader(tt.page))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractCSRFToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractCSRFToken() = %q, want %q", got, tt.want)
			}
		})
	}
}
