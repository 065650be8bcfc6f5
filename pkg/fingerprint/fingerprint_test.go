package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"sorted keys", `{"b":1,"a":2}`, `{"a":2,"b":1}`},
		{"whitespace", " {\n \"a\" : [1, 2] }\n", `{"a":[1,2]}`},
		{"nested", `{"z":{"y":1,"x":2}}`, `{"z":{"x":2,"y":1}}`},
		{"numbers kept", `{"n":1.50,"m":10000000000000000001}`, `{"m":10000000000000000001,"n":1.50}`},
		{"empty", ``, `null`},
		{"blank", "  ", `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestCanonicalizeRejectsInvalid(t *testing.T) {
	for _, in := range []string{`{`, `{"a":1} {"b":2}`, `nope`} {
		_, err := Canonicalize([]byte(in))
		assert.ErrorIs(t, err, ErrInvalidBody, in)
	}
}

func TestCompute(t *testing.T) {
	base, err := Compute("POST", "/earn", []byte(`{"customerId":"cust_1","amountMinor":10000,"currency":"NGN"}`), "key-1")
	require.NoError(t, err)
	assert.Len(t, base, 64)

	reordered, err := Compute("POST", "/earn", []byte(`{"currency":"NGN","amountMinor":10000,"customerId":"cust_1"}`), "key-1")
	require.NoError(t, err)
	assert.Equal(t, base, reordered)

	for name, args := range map[string][4]string{
		"token":  {"POST", "/earn", `{"customerId":"cust_1","amountMinor":10000,"currency":"NGN"}`, "key-2"},
		"path":   {"POST", "/redeem", `{"customerId":"cust_1","amountMinor":10000,"currency":"NGN"}`, "key-1"},
		"body":   {"POST", "/earn", `{"customerId":"cust_1","amountMinor":10001,"currency":"NGN"}`, "key-1"},
		"method": {"PUT", "/earn", `{"customerId":"cust_1","amountMinor":10000,"currency":"NGN"}`, "key-1"},
	} {
		got, err := Compute(args[0], args[1], []byte(args[2]), args[3])
		require.NoError(t, err)
		assert.NotEqual(t, base, got, name)
	}
}

func TestComputeLengthPrefixed(t *testing.T) {
	a, err := Compute("POST", "/earnx", nil, "y")
	require.NoError(t, err)
	b, err := Compute("POST", "/earn", nil, "xy")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
