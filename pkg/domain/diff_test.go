package domain_test

import (
	"testing"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffFeed(t *testing.T) {
	base := domain.Feed{}
	base.Set(domain.KindCounter, "pours", domain.IntValue(3))
	base.Set(domain.KindDigitalOutput, "pump", domain.StringValue("LOW"))

	t.Run("No Change", func(t *testing.T) {
		next := domain.Feed{}
		next.Set(domain.KindCounter, "pours", domain.IntValue(3))
		next.Set(domain.KindDigitalOutput, "pump", domain.StringValue("LOW"))
		assert.Nil(t, domain.DiffFeed(base, next))
	})

	t.Run("Initial Load", func(t *testing.T) {
		diff := domain.DiffFeed(nil, base)
		require.NotNil(t, diff)
		assert.Len(t, diff.Changed, 2)
		assert.Empty(t, diff.Removed)
	})

	t.Run("Changed and Removed", func(t *testing.T) {
		next := domain.Feed{}
		next.Set(domain.KindCounter, "pours", domain.IntValue(4))
		diff := domain.DiffFeed(base, next)
		require.NotNil(t, diff)
		assert.Equal(t, domain.IntValue(4), diff.Changed[domain.KindCounter]["pours"])
		assert.Equal(t, []string{"pump"}, diff.Removed)
	})

	t.Run("Type Change Counts", func(t *testing.T) {
		next := domain.Feed{}
		next.Set(domain.KindCounter, "pours", domain.FloatValue(3))
		next.Set(domain.KindDigitalOutput, "pump", domain.StringValue("LOW"))
		diff := domain.DiffFeed(base, next)
		require.NotNil(t, diff)
		assert.Contains(t, diff.Changed[domain.KindCounter], "pours")
	})
}
