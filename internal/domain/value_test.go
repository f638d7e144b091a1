package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rengine/rengine/internal/domain"
)

func TestValueEqualCrossTagIsFalseNotError(t *testing.T) {
	assert.False(t, domain.StringValue("1").Equal(domain.IntValue(1)))
	assert.False(t, domain.BoolValue(true).Equal(domain.IntValue(1)))
}

func TestValueEqualNumericPromotion(t *testing.T) {
	assert.True(t, domain.IntValue(2).Equal(domain.FloatValue(2.0)))
	assert.False(t, domain.IntValue(2).Equal(domain.FloatValue(2.5)))
}

func TestValueCompareCrossTagIsTypeError(t *testing.T) {
	_, err := domain.StringValue("a").Compare(domain.IntValue(1))
	require.Error(t, err)
}

func TestValueCompareOrdersSameKind(t *testing.T) {
	lt, err := domain.StringValue("a").Compare(domain.StringValue("b"))
	require.NoError(t, err)
	assert.Equal(t, -1, lt)

	gt, err := domain.IntValue(5).Compare(domain.FloatValue(2.5))
	require.NoError(t, err)
	assert.Equal(t, 1, gt)
}

func TestValueWithFieldIsImmutable(t *testing.T) {
	orig := domain.NewObject(domain.Field{Name: "age", Value: domain.IntValue(20)})
	updated := orig.WithField("age", domain.IntValue(21))

	origAge, _ := orig.Field("age")
	v, _ := origAge.AsInt()
	assert.Equal(t, int64(20), v, "WithField must not mutate the receiver")

	updatedAge, _ := updated.Field("age")
	v, _ = updatedAge.AsInt()
	assert.Equal(t, int64(21), v)
}

func TestValueEqualObjectsCompareByFieldsNotOrder(t *testing.T) {
	a := domain.NewObject(
		domain.Field{Name: "x", Value: domain.IntValue(1)},
		domain.Field{Name: "y", Value: domain.IntValue(2)},
	)
	b := domain.ObjectFromMap(map[string]domain.Value{
		"y": domain.IntValue(2),
		"x": domain.IntValue(1),
	})
	assert.True(t, a.Equal(b))
}

func TestFromNativeRoundTrip(t *testing.T) {
	native := map[string]any{
		"name":   "widget",
		"amount": 42,
		"tags":   []any{"a", "b"},
	}
	v := domain.FromNative(native)
	name, ok := v.Field("name")
	require.True(t, ok)
	s, _ := name.AsString()
	assert.Equal(t, "widget", s)

	amount, ok := v.Field("amount")
	require.True(t, ok)
	i, ok := amount.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(42), i)

	back := v.Native()
	m, ok := back.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "widget", m["name"])
}
