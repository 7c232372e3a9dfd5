package secretbox

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBox(t *testing.T) *Box {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	box, err := New(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	return box
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	box := newTestBox(t)

	ct, err := box.Encrypt("govee-api-key-1234")
	require.NoError(t, err)

	pt, err := box.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, "govee-api-key-1234", pt)
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	box := newTestBox(t)

	a, err := box.Encrypt("same-secret")
	require.NoError(t, err)
	b, err := box.Encrypt("same-secret")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestEncrypt_WireFormat(t *testing.T) {
	box := newTestBox(t)

	ct, err := box.Encrypt("x")
	require.NoError(t, err)

	parts := strings.Split(ct, ":")
	require.Len(t, parts, 3)
	for _, p := range parts {
		_, err := base64.StdEncoding.DecodeString(p)
		assert.NoError(t, err)
	}
}

func TestDecrypt_TamperedTagFails(t *testing.T) {
	box := newTestBox(t)

	ct, err := box.Encrypt("secret")
	require.NoError(t, err)

	parts := strings.Split(ct, ":")
	tag, err := base64.StdEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	tag[0] ^= 0xff
	parts[1] = base64.StdEncoding.EncodeToString(tag)

	_, err = box.Decrypt(strings.Join(parts, ":"))
	assert.Error(t, err)
}

func TestDecrypt_Malformed(t *testing.T) {
	box := newTestBox(t)

	_, err := box.Decrypt("not-a-ciphertext")
	assert.Error(t, err)
}

func TestNew_RejectsBadKeys(t *testing.T) {
	_, err := New("too-short")
	assert.Error(t, err)

	_, err = New(base64.StdEncoding.EncodeToString(make([]byte, 16)))
	assert.Error(t, err)
}
