package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "debug mode allows short secret",
			cfg:  Config{Server: ServerConfig{Mode: "debug"}, JWT: JWTConfig{Secret: "short"}, Quiz: QuizConfig{PassingPercent: 70}},
		},
		{
			name:    "release mode needs long secret",
			cfg:     Config{Server: ServerConfig{Mode: "release"}, JWT: JWTConfig{Secret: "short"}},
			wantErr: "JWT secret is too short",
		},
		{
			name:    "passing percent above 100",
			cfg:     Config{Quiz: QuizConfig{PassingPercent: 120}},
			wantErr: "passing_percent",
		},
		{
			name: "provider without base url",
			cfg: Config{Payments: PaymentsConfig{Providers: map[string]ProviderConfig{
				"stripe": {APIKey: "k"},
			}}},
			wantErr: "payments.providers.stripe.base_url",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFillsQuizDefaults(t *testing.T) {
	cfg := Config{Quiz: QuizConfig{PassingPercent: 50}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Quiz.MaxRetries != 3 || cfg.Quiz.LockTTLSeconds != 5 {
		t.Fatalf("quiz defaults: got %+v", cfg.Quiz)
	}
}
