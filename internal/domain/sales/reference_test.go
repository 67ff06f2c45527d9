package sales_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketsale/internal/domain/sales"
)

func TestReferenceGenerator_Candidate(t *testing.T) {
	g := sales.NewReferenceGenerator()

	for i := 0; i < 200; i++ {
		ref := g.Candidate("Ada")
		require.True(t, sales.IsValidReference(ref), ref)
		require.Equal(t, "ADA", ref[:3])
	}

	assert.Equal(t, "GUEST", sales.ReferencePrefix("  "))
	assert.Equal(t, "JEANLUC", sales.ReferencePrefix("Jean-Luc"))
	assert.Equal(t, "GUEST", sales.ReferencePrefix("Ẹ̀"))
}

func TestReferenceGenerator_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("retries on collision", func(t *testing.T) {
		digits := []int{1, 1, 1, 1, 2, 2, 2, 2}
		i := 0
		g := sales.NewReferenceGenerator().WithDigitSource(func() int {
			d := digits[i%len(digits)]
			i++
			return d
		})
		taken := map[string]bool{"ADA1111": true}

		ref, err := g.Generate(ctx, "Ada", func(_ context.Context, c string) (bool, error) {
			return taken[c], nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ADA2222", ref)
	})

	t.Run("exhausted", func(t *testing.T) {
		calls := 0
		g := sales.NewReferenceGenerator().WithMaxAttempts(3)

		_, err := g.Generate(ctx, "Ada", func(context.Context, string) (bool, error) {
			calls++
			return true, nil
		})
		assert.ErrorIs(t, err, sales.ErrGenerationExhausted)
		assert.Equal(t, 3, calls)
	})

	t.Run("store error", func(t *testing.T) {
		_, err := sales.NewReferenceGenerator().Generate(ctx, "Ada", func(context.Context, string) (bool, error) {
			return false, errors.New("connection refused")
		})
		assert.ErrorContains(t, err, "connection refused")
	})
}

func TestIsValidReference(t *testing.T) {
	assert.True(t, sales.IsValidReference("ADA1234"))
	assert.False(t, sales.IsValidReference("ADA1230"), "zero digit")
	assert.False(t, sales.IsValidReference("ada1234"))
	assert.False(t, sales.IsValidReference("1234"))
}
