package amount

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNative(t *testing.T) {
	t.Run("Whole XRP", func(t *testing.T) {
		s, err := FormatNative("1000000")
		require.NoError(t, err)
		assert.Equal(t, "1 XRP", s)
	})

	t.Run("Fractional XRP", func(t *testing.T) {
		s, err := FormatNative("1500000")
		require.NoError(t, err)
		assert.Equal(t, "1.5 XRP", s)
	})

	t.Run("Below one XRP", func(t *testing.T) {
		s, err := FormatNative("12")
		require.NoError(t, err)
		assert.Equal(t, "0.000012 XRP", s)
	})

	t.Run("Zero", func(t *testing.T) {
		s, err := FormatNative("0")
		require.NoError(t, err)
		assert.Equal(t, "0 XRP", s)
	})

	t.Run("Large value keeps full precision", func(t *testing.T) {
		// Close to the total XRP supply, well past float64 precision.
		s, err := FormatNative("99999999999999999")
		require.NoError(t, err)
		assert.Equal(t, "99999999999.999999 XRP", s)
	})

	t.Run("Rejects garbage", func(t *testing.T) {
		for _, in := range []string{"", "abc", "-5", "1.5", "+7", " 1"} {
			_, err := FormatNative(in)
			assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
		}
	})
}

func TestResolveSymbol(t *testing.T) {
	const xzilla = "585A494C4C410000000000000000000000000000"

	t.Run("Known hex code", func(t *testing.T) {
		assert.Equal(t, "XZILLA", ResolveSymbol(xzilla))
	})

	t.Run("Known hex code lowercased", func(t *testing.T) {
		assert.Equal(t, "XZILLA", ResolveSymbol("585a494c4c410000000000000000000000000000"))
	})

	t.Run("Standard code passes through", func(t *testing.T) {
		assert.Equal(t, "USD", ResolveSymbol("USD"))
	})

	t.Run("Unknown hex code passes through", func(t *testing.T) {
		unknown := "FF00000000000000000000000000000000000000"
		assert.Equal(t, unknown, ResolveSymbol(unknown))
	})

	t.Run("Idempotent", func(t *testing.T) {
		for _, in := range []string{xzilla, "USD", "EUR", "FF00000000000000000000000000000000000000", ""} {
			once := ResolveSymbol(in)
			assert.Equal(t, once, ResolveSymbol(once), "input %q", in)
		}
	})
}

func TestDecode(t *testing.T) {
	t.Run("Native string", func(t *testing.T) {
		a, err := Decode(json.RawMessage(`"20000000"`))
		require.NoError(t, err)
		assert.Equal(t, KindNative, a.Kind)
		assert.Equal(t, "20000000", a.Drops)
	})

	t.Run("Issued object", func(t *testing.T) {
		raw := json.RawMessage(`{"value":"12.5","currency":"USD","issuer":"rhub8VRN55s94qWKDv6jmDy1pUykJzF3wq"}`)
		a, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, KindIssued, a.Kind)
		assert.Equal(t, "12.5", a.Value)
		assert.Equal(t, "USD", a.Symbol)
	})

	t.Run("Issued object with hex currency", func(t *testing.T) {
		raw := json.RawMessage(`{"value":"3","currency":"585A494C4C410000000000000000000000000000","issuer":"r9cZA1mLK5R5Am25ArfXFmqgNwjZgnfk59"}`)
		a, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, "XZILLA", a.Symbol)
	})

	t.Run("Rejects negative native string", func(t *testing.T) {
		_, err := Decode(json.RawMessage(`"-1"`))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("Rejects unavailable marker", func(t *testing.T) {
		// Old partial payments report delivered_amount as "unavailable".
		_, err := Decode(json.RawMessage(`"unavailable"`))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("Rejects empty and malformed", func(t *testing.T) {
		_, err := Decode(nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = Decode(json.RawMessage(`{"currency":"USD"}`))
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = Decode(json.RawMessage(`42`))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestFormat(t *testing.T) {
	t.Run("Native", func(t *testing.T) {
		a, err := Native("20000000")
		require.NoError(t, err)
		s, err := Format(a)
		require.NoError(t, err)
		assert.Equal(t, "20 XRP", s)
	})

	t.Run("Issued", func(t *testing.T) {
		s, err := Format(Issued("12.5", "USD"))
		require.NoError(t, err)
		assert.Equal(t, "12.5 USD", s)
	})
}

func TestToDrops(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1", "1000000"},
		{"1.5", "1500000"},
		{"0.000001", "1"},
		{"20", "20000000"},
	}
	for _, tc := range cases {
		got, err := ToDrops(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}

	for _, in := range []string{"", "abc", "-1", "0.0000001"} {
		_, err := ToDrops(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
	}
}
