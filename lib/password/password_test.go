// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

package password

import (
	"strings"
	"testing"
)

func TestGenerateDefaultPolicy(t *testing.T) {
	buffer, err := Generate(DefaultPolicy())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	defer buffer.Close()

	value := buffer.String()
	if len(value) != 16 {
		t.Errorf("password length = %d, want 16", len(value))
	}

	alphabet := upperChars + lowerChars + digitChars + symbolChars
	for index, r := range value {
		if !strings.ContainsRune(alphabet, r) {
			t.Errorf("character %d (%q) outside the policy alphabet", index, r)
		}
	}
}

func TestGenerateClassCoverage(t *testing.T) {
	// Coverage is probabilistic per draw but guaranteed by the
	// regenerate loop, so any single result must contain all classes.
	for run := 0; run < 50; run++ {
		buffer, err := Generate(DefaultPolicy())
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		value := buffer.String()
		buffer.Close()

		if !strings.ContainsAny(value, upperChars) {
			t.Fatalf("password %q has no uppercase character", value)
		}
		if !strings.ContainsAny(value, lowerChars) {
			t.Fatalf("password %q has no lowercase character", value)
		}
		if !strings.ContainsAny(value, digitChars) {
			t.Fatalf("password %q has no digit", value)
		}
		if !strings.ContainsAny(value, symbolChars) {
			t.Fatalf("password %q has no symbol", value)
		}
	}
}

func TestGenerateDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for run := 0; run < 20; run++ {
		buffer, err := Generate(DefaultPolicy())
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		value := buffer.String()
		buffer.Close()

		if seen[value] {
			t.Fatalf("duplicate password generated: %q", value)
		}
		seen[value] = true
	}
}

func TestGenerateCustomLength(t *testing.T) {
	policy := DefaultPolicy()
	policy.Length = 32

	buffer, err := Generate(policy)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	defer buffer.Close()

	if buffer.Len() != 32 {
		t.Errorf("password length = %d, want 32", buffer.Len())
	}
}

func TestGenerateWithoutSymbols(t *testing.T) {
	policy := Policy{Length: 12, Upper: true, Lower: true, Digits: true}

	buffer, err := Generate(policy)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	defer buffer.Close()

	if strings.ContainsAny(buffer.String(), symbolChars) {
		t.Errorf("password %q contains symbols despite the policy excluding them", buffer.String())
	}
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{"default", DefaultPolicy(), false},
		{"too short", Policy{Length: 4, Lower: true, Digits: true}, true},
		{"no classes", Policy{Length: 16}, true},
		{"symbols only", Policy{Length: 16, Symbols: symbolChars}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
