package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hashed, err := HashPassword("MyPassword123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hashed, "$2a$"), hashed)

	again, err := HashPassword("MyPassword123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, hashed, again, "salt must differ")

	_, err = HashPassword("", bcrypt.MinCost)
	assert.Error(t, err)
}

func TestHashPasswordCost(t *testing.T) {
	tests := []struct {
		name string
		cost int
		want int
	}{
		{"min", bcrypt.MinCost, bcrypt.MinCost},
		{"too low", 1, bcrypt.DefaultCost},
		{"too high", 99, bcrypt.DefaultCost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed, err := HashPassword("pw", tt.cost)
			require.NoError(t, err)
			cost, err := bcrypt.Cost([]byte(hashed))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cost)
		})
	}
}

func TestCheckPassword(t *testing.T) {
	hashed, err := HashPassword("TestPass456", bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		stored   string
		want     bool
	}{
		{"match", "TestPass456", hashed, true},
		{"wrong password", "WrongPass", hashed, false},
		{"empty password", "", hashed, false},
		{"empty hash", "TestPass456", "", false},
		{"not a bcrypt hash", "TestPass456", "salt$hash", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckPassword(tt.password, tt.stored))
		})
	}
}

func TestRandomString(t *testing.T) {
	a, err := RandomString(32)
	require.NoError(t, err)
	assert.Len(t, a, 32)

	b, err := RandomString(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	for _, n := range []int{0, -5} {
		_, err := RandomString(n)
		assert.Error(t, err, "n=%d", n)
	}
}

func TestSnapshotPayloadRoundTrip(t *testing.T) {
	key, err := RandomString(32)
	require.NoError(t, err)

	payloads := map[string]string{
		"ledger state": `{"merchant_id":"MID-12345","state":{"balance":910,"parcels":[{"id":"EKS-000001","status":"Delivered"}]}}`,
		"bangla text":  `{"customer_name":"করিম","address":"মিরপুর ১০"}`,
		"empty":        "",
		"large":        strings.Repeat("A", 4096),
	}
	for name, plain := range payloads {
		t.Run(name, func(t *testing.T) {
			enc, err := EncryptAES(key, []byte(plain))
			require.NoError(t, err)
			assert.NotContains(t, string(enc), "EKS-000001")

			dec, err := DecryptAES(key, enc)
			require.NoError(t, err)
			assert.Equal(t, plain, string(dec))
		})
	}
}

func TestDecryptAESFailures(t *testing.T) {
	enc, err := EncryptAES("merchant-key", []byte(`{"balance":250}`))
	require.NoError(t, err)

	_, err = DecryptAES("other-key", enc)
	assert.Error(t, err, "wrong key")

	tampered := append([]byte(nil), enc...)
	tampered[len(tampered)-1] ^= 0xff
	_, err = DecryptAES("merchant-key", tampered)
	assert.Error(t, err, "tampered")

	_, err = DecryptAES("merchant-key", []byte{1, 2, 3})
	assert.Error(t, err, "short")
}

func TestEncryptField(t *testing.T) {
	const key = "audit-key"

	enc, err := EncryptField(key, "POST /api/parcels")
	require.NoError(t, err)
	assert.NotEqual(t, "POST /api/parcels", enc)
	assert.Equal(t, "POST /api/parcels", DecryptField(key, enc))

	// 空 key 或空值原样返回
	got, err := EncryptField("", "plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", got)
	got, err = EncryptField(key, "")
	require.NoError(t, err)
	assert.Empty(t, got)

	// 非法密文原样返回
	assert.Equal(t, "not-base64!", DecryptField(key, "not-base64!"))
}

func BenchmarkEncryptField(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = EncryptField("bench-key", "POST /api/parcels/EKS-123456/status")
	}
}
