package domain_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		typ     domain.ValueType
		want    domain.Value
		wantErr bool
	}{
		{"int from int", 4, domain.TypeInt, domain.IntValue(4), false},
		{"int from integral float", 4.0, domain.TypeInt, domain.IntValue(4), false},
		{"int from string", " 12 ", domain.TypeInt, domain.IntValue(12), false},
		{"int rejects fraction", 4.5, domain.TypeInt, domain.NoValue(), true},
		{"int rejects word", "four", domain.TypeInt, domain.NoValue(), true},
		{"float from int", 3, domain.TypeFloat, domain.FloatValue(3), false},
		{"float from string", "2.5", domain.TypeFloat, domain.FloatValue(2.5), false},
		{"float from duration", "1m30s", domain.TypeFloat, domain.FloatValue(90), false},
		{"float from clock", "01:02:03", domain.TypeFloat, domain.FloatValue(3723), false},
		{"float from short clock", "1:30.5", domain.TypeFloat, domain.FloatValue(90.5), false},
		{"float rejects word", "soon", domain.TypeFloat, domain.NoValue(), true},
		{"string keeps literal", "HIGH", domain.TypeString, domain.StringValue("HIGH"), false},
		{"string keeps number", 7, domain.TypeString, domain.IntValue(7), false},
		{"nil stays none", nil, domain.TypeInt, domain.NoValue(), false},
		{"unsupported literal", []int{1}, domain.TypeInt, domain.NoValue(), true},
		{"uint in range", uint64(42), domain.TypeInt, domain.IntValue(42), false},
		{"uint overflow", uint64(math.MaxInt64) + 1, domain.TypeInt, domain.NoValue(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.Coerce(tt.raw, tt.typ)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrTypeCoercion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEqualAndCompare(t *testing.T) {
	assert.True(t, domain.Equal(domain.IntValue(5), domain.FloatValue(5)))
	assert.False(t, domain.Equal(domain.IntValue(5), domain.StringValue("5")))
	assert.True(t, domain.Equal(domain.StringValue("LOW"), domain.StringValue("LOW")))
	assert.True(t, domain.Equal(domain.NoValue(), domain.NoValue()))

	c, err := domain.Compare(domain.FloatValue(2.5), domain.IntValue(2))
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	c, err = domain.Compare(domain.IntValue(1), domain.IntValue(3))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	_, err = domain.Compare(domain.StringValue("a"), domain.IntValue(1))
	assert.ErrorIs(t, err, domain.ErrTypeCoercion)
}

func TestValueJSON(t *testing.T) {
	data, err := json.Marshal(map[string]domain.Value{
		"count": domain.IntValue(3),
		"time":  domain.FloatValue(1.5),
		"state": domain.StringValue("HIGH"),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":3,"time":1.5,"state":"HIGH"}`, string(data))

	var back map[string]domain.Value
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, domain.IntValue(3), back["count"])
	assert.Equal(t, domain.FloatValue(1.5), back["time"])
	assert.Equal(t, domain.StringValue("HIGH"), back["state"])
}
