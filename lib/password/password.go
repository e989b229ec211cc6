// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

// Package password generates cryptographically random archive
// passwords.
//
// Generation draws from crypto/rand with rejection sampling, so every
// position is a uniform pick over the policy alphabet — no modulo
// bias. The result is returned in a secret.Buffer rather than a
// string: the value must never reach a log sink or linger on the Go
// heap, and the buffer's mmap backing guarantees it can be zeroed
// when the pipeline is done with it.
package password

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/zipseal/zipseal/lib/secret"
)

// Character classes for the default policy.
const (
	upperChars    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars    = "abcdefghijklmnopqrstuvwxyz"
	digitChars    = "0123456789"
	symbolChars   = "!@#$%^&*"
	defaultLength = 16
)

// MinLength is the shortest password the generator will produce.
// Below this, the class-coverage requirement cannot be met and the
// password would be trivially brute-forceable anyway.
const MinLength = 8

// maxCoverageAttempts bounds the regenerate-until-covered loop. With
// the default policy a candidate satisfies coverage with probability
// well above 0.5, so hitting this bound indicates a broken random
// source rather than bad luck.
const maxCoverageAttempts = 128

// Policy describes the password to generate.
type Policy struct {
	// Length is the number of characters. Must be >= MinLength.
	Length int

	// Upper, Lower, Digits enable the respective character classes.
	Upper  bool
	Lower  bool
	Digits bool

	// Symbols is the symbol set to include, empty for none.
	Symbols string
}

// DefaultPolicy returns the standard policy: 16 characters over
// mixed-case letters, digits, and the fixed symbol set !@#$%^&*.
func DefaultPolicy() Policy {
	return Policy{
		Length:  defaultLength,
		Upper:   true,
		Lower:   true,
		Digits:  true,
		Symbols: symbolChars,
	}
}

// alphabet returns the concatenated character set for the policy.
func (p Policy) alphabet() string {
	var builder strings.Builder
	if p.Upper {
		builder.WriteString(upperChars)
	}
	if p.Lower {
		builder.WriteString(lowerChars)
	}
	if p.Digits {
		builder.WriteString(digitChars)
	}
	builder.WriteString(p.Symbols)
	return builder.String()
}

// Validate checks that the policy can produce a password.
func (p Policy) Validate() error {
	if p.Length < MinLength {
		return fmt.Errorf("password length %d is below the minimum %d", p.Length, MinLength)
	}
	if len(p.alphabet()) < 2 {
		return fmt.Errorf("password policy enables no character classes")
	}
	return nil
}

// Generate produces a random password satisfying the policy. Every
// enabled character class is represented at least once, matching the
// guarantee callers rely on when downstream systems enforce
// composition rules. The caller owns the returned buffer and must
// close it.
func Generate(policy Policy) (*secret.Buffer, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	alphabet := policy.alphabet()

	for attempt := 0; attempt < maxCoverageAttempts; attempt++ {
		candidate, err := randomDraw(alphabet, policy.Length)
		if err != nil {
			return nil, err
		}

		if !policy.covered(candidate) {
			secret.Zero(candidate)
			continue
		}

		// NewFromBytes zeros candidate after copying it into
		// protected memory.
		return secret.NewFromBytes(candidate)
	}

	return nil, fmt.Errorf("no candidate satisfied class coverage after %d attempts", maxCoverageAttempts)
}

// covered reports whether the candidate contains at least one
// character from each class the policy enables.
func (p Policy) covered(candidate []byte) bool {
	classes := []struct {
		enabled bool
		set     string
	}{
		{p.Upper, upperChars},
		{p.Lower, lowerChars},
		{p.Digits, digitChars},
		{p.Symbols != "", p.Symbols},
	}

	for _, class := range classes {
		if !class.enabled {
			continue
		}
		if !containsAny(candidate, class.set) {
			return false
		}
	}
	return true
}

func containsAny(candidate []byte, set string) bool {
	for _, b := range candidate {
		if strings.IndexByte(set, b) >= 0 {
			return true
		}
	}
	return false
}

// randomDraw fills a slice of the given length with uniform picks
// from alphabet. Rejection sampling: random bytes at or above the
// largest multiple of len(alphabet) are discarded, so each character
// is selected with exactly equal probability.
func randomDraw(alphabet string, length int) ([]byte, error) {
	out := make([]byte, 0, length)

	// Largest multiple of the alphabet size representable in a byte.
	limit := 256 - 256%len(alphabet)

	raw := make([]byte, length*2)
	defer secret.Zero(raw)

	for len(out) < length {
		if _, err := rand.Read(raw); err != nil {
			secret.Zero(out)
			return nil, fmt.Errorf("reading random bytes: %w", err)
		}
		for _, b := range raw {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}

	return out, nil
}
