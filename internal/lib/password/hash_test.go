package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher() *Hasher {
	return NewHasher(bcrypt.MinCost)
}

func TestHash(t *testing.T) {
	h := newTestHasher()

	tests := []struct {
		name     string
		password string
	}{
		{name: "regular password", password: "password123"},
		{name: "password with special chars", password: "p@ssw0rd!@#$%^&*()"},
		{name: "unicode password", password: "пароль-секрет"},
		{name: "minimal password", password: "123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)
			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)

			ok, err := h.Verify(tt.password, hash)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestHash_IsSalted(t *testing.T) {
	h := newTestHasher()

	first, err := h.Hash("same_password")
	require.NoError(t, err)
	second, err := h.Hash("same_password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHash_LongPasswordUsesFirst72Bytes(t *testing.T) {
	h := newTestHasher()
	long := strings.Repeat("a", 80)

	hash, err := h.Hash(long)
	require.NoError(t, err)

	ok, err := h.Verify(long, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(strings.Repeat("a", MaxLength)+"different tail", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(strings.Repeat("a", MaxLength-1), hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify(t *testing.T) {
	h := newTestHasher()
	correctHash, err := h.Hash("correct_password")
	require.NoError(t, err)

	tests := []struct {
		name    string
		hash    string
		plain   string
		want    bool
		wantErr bool
	}{
		{name: "matching password", hash: correctHash, plain: "correct_password", want: true},
		{name: "wrong password", hash: correctHash, plain: "wrong_password", want: false},
		{name: "empty password", hash: correctHash, plain: "", want: false},
		{name: "corrupted hash", hash: "not-a-bcrypt-hash", plain: "correct_password", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify(tt.plain, tt.hash)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestNewHasher_FallsBackToDefaultCost(t *testing.T) {
	assert.Equal(t, DefaultCost, NewHasher(0).cost)
	assert.Equal(t, DefaultCost, NewHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 12, NewHasher(12).cost)
}
