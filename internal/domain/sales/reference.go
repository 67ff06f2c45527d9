package sales

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"unicode"
)

const (
	referenceDigits          = 4
	defaultMaxReferenceTries = 5
	fallbackReferencePrefix  = "GUEST"
)

// ExistsFunc reports whether a candidate reference or ticket ID is taken.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// ReferenceGenerator mints FIRSTNAME + 4 digits in 1-9, e.g. ADA4821.
type ReferenceGenerator struct {
	maxAttempts int
	digit       func() int
}

func NewReferenceGenerator() *ReferenceGenerator {
	return &ReferenceGenerator{
		maxAttempts: defaultMaxReferenceTries,
		digit:       func() int { return rand.Intn(9) + 1 },
	}
}

// WithDigitSource replaces the random digit source. Used by tests.
func (g *ReferenceGenerator) WithDigitSource(digit func() int) *ReferenceGenerator {
	g.digit = digit
	return g
}

func (g *ReferenceGenerator) WithMaxAttempts(n int) *ReferenceGenerator {
	if n > 0 {
		g.maxAttempts = n
	}
	return g
}

func (g *ReferenceGenerator) Candidate(firstName string) string {
	var b strings.Builder
	b.WriteString(ReferencePrefix(firstName))
	for i := 0; i < referenceDigits; i++ {
		b.WriteByte(byte('0' + g.digit()))
	}
	return b.String()
}

// Generate returns a candidate that exists reports as free, trying at most
// maxAttempts candidates.
func (g *ReferenceGenerator) Generate(ctx context.Context, firstName string, exists ExistsFunc) (string, error) {
	for i := 0; i < g.maxAttempts; i++ {
		candidate := g.Candidate(firstName)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check reference %s: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrGenerationExhausted
}

func ReferencePrefix(firstName string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(firstName) {
		if r <= unicode.MaxASCII && unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fallbackReferencePrefix
	}
	return b.String()
}

// IsValidReference checks the bank transfer reference format.
func IsValidReference(ref string) bool {
	if len(ref) <= referenceDigits {
		return false
	}
	prefix, digits := ref[:len(ref)-referenceDigits], ref[len(ref)-referenceDigits:]
	for _, r := range prefix {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	for _, r := range digits {
		if r < '1' || r > '9' {
			return false
		}
	}
	return true
}
