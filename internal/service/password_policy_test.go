package service

import (
	"errors"
	"testing"

	"github.com/promolink-next/internal/config"
)

func TestValidatePasswordEmptyPolicyAllowsAnything(t *testing.T) {
	if err := validatePassword(config.PasswordPolicyConfig{}, "x"); err != nil {
		t.Errorf("expected empty policy to pass, got %v", err)
	}
}

func TestValidatePasswordRules(t *testing.T) {
	policy := config.PasswordPolicyConfig{
		MinLength:     8,
		RequireUpper:  true,
		RequireLower:  true,
		RequireNumber: true,
	}

	cases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"ok", "Passw0rd", false},
		{"too_short", "Pw0rd", true},
		{"no_upper", "passw0rd", true},
		{"no_lower", "PASSW0RD", true},
		{"no_number", "Password", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePassword(policy, tc.password)
			if tc.wantErr && !errors.Is(err, ErrWeakPassword) {
				t.Errorf("expected ErrWeakPassword, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("expected pass, got %v", err)
			}
		})
	}
}

func TestValidatePasswordSpecialAndUnicodeLength(t *testing.T) {
	policy := config.PasswordPolicyConfig{MinLength: 6, RequireSpecial: true}

	if err := validatePassword(policy, "abcdef"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected special char requirement, got %v", err)
	}
	if err := validatePassword(policy, "abcde!"); err != nil {
		t.Errorf("expected pass with special char, got %v", err)
	}
	// 长度按字符数而非字节数
	if err := validatePassword(config.PasswordPolicyConfig{MinLength: 6}, "密码密码密码"); err != nil {
		t.Errorf("expected rune-counted length to pass, got %v", err)
	}
}
