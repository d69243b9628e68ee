package wallet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureErase(t *testing.T) {
	t.Run("Erases data", func(t *testing.T) {
		data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
		SecureErase(data)
		assert.True(t, bytes.Equal(data, make([]byte, len(data))))
	})

	t.Run("Handles empty slice", func(t *testing.T) {
		SecureErase([]byte{})
		SecureErase(nil)
	})

	t.Run("Erases large buffer", func(t *testing.T) {
		data := make([]byte, 1024)
		for i := range data {
			data[i] = byte(i % 256)
		}
		SecureErase(data)
		for i := range data {
			if data[i] != 0 {
				t.Fatalf("byte %d not cleared", i)
			}
		}
	})
}

func TestSecret(t *testing.T) {
	t.Run("Close erases and blanks", func(t *testing.T) {
		data := []byte("sEdTM1uX8pu2do5XvTnutH6HsouMaM2")
		s := NewSecret(data)
		require.Equal(t, data, s.Data())

		s.Close()
		assert.Nil(t, s.Data())
		assert.True(t, s.IsClosed())
		assert.True(t, allZero(data), "backing bytes must be zeroed")
	})

	t.Run("Close is idempotent", func(t *testing.T) {
		s := NewSecretFromString("sEdSecret")
		s.Close()
		s.Close()
		assert.True(t, s.IsClosed())
	})

	t.Run("Nil secret is closed", func(t *testing.T) {
		var s *Secret
		assert.True(t, s.IsClosed())
		assert.Nil(t, s.Data())
		s.Close()
	})

	t.Run("FromString copies", func(t *testing.T) {
		s := NewSecretFromString("sEdSecret")
		require.Equal(t, []byte("sEdSecret"), s.Data())
		s.Close()
	})
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func TestGenerate(t *testing.T) {
	km, err := Generate()
	require.NoError(t, err)
	defer km.Seed.Close()

	assert.True(t, strings.HasPrefix(km.Address, "r"), "classic address starts with r, got %s", km.Address)
	assert.NotEmpty(t, km.PublicKey)
	require.False(t, km.Seed.IsClosed())
	assert.True(t, strings.HasPrefix(string(km.Seed.Data()), "sEd"), "ed25519 family seed starts with sEd")

	// Two generations never collide.
	km2, err := Generate()
	require.NoError(t, err)
	defer km2.Seed.Close()
	assert.NotEqual(t, km.Address, km2.Address)
}

func TestFromSecret(t *testing.T) {
	t.Run("Round-trips a generated seed", func(t *testing.T) {
		km, err := Generate()
		require.NoError(t, err)
		defer km.Seed.Close()

		sw, err := FromSecret(km.Seed)
		require.NoError(t, err)
		assert.Equal(t, km.Address, sw.Address())
	})

	t.Run("Malformed seed", func(t *testing.T) {
		s := NewSecretFromString("not-a-seed")
		defer s.Close()
		_, err := FromSecret(s)
		assert.ErrorIs(t, err, ErrSigning)
	})

	t.Run("Erased seed", func(t *testing.T) {
		s := NewSecretFromString("sEdTM1uX8pu2do5XvTnutH6HsouMaM2")
		s.Close()
		_, err := FromSecret(s)
		assert.ErrorIs(t, err, ErrSigning)
	})

	t.Run("Error never contains the seed", func(t *testing.T) {
		s := NewSecretFromString("sEdVerySecretSeedValue")
		defer s.Close()
		_, err := FromSecret(s)
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "sEdVerySecretSeedValue")
	})
}
