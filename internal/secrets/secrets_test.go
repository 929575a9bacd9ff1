package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	box, err := New("test-secret")
	require.NoError(t, err)

	sealed, err := box.Seal("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", sealed)

	opened, err := box.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", opened)
}

func TestSealUsesFreshNonce(t *testing.T) {
	box, err := New("test-secret")
	require.NoError(t, err)

	first, err := box.Seal("same plaintext")
	require.NoError(t, err)
	second, err := box.Seal("same plaintext")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestOpenRejectsWrongKey(t *testing.T) {
	box, err := New("secret-one")
	require.NoError(t, err)
	other, err := New("secret-two")
	require.NoError(t, err)

	sealed, err := box.Seal("hunter2")
	require.NoError(t, err)

	_, err = other.Open(sealed)
	assert.Error(t, err)
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	box, err := New("test-secret")
	require.NoError(t, err)

	sealed, err := box.Seal("hunter2")
	require.NoError(t, err)

	// Flip the first character, which lands in the nonce.
	flipped := "A"
	if sealed[0] == 'A' {
		flipped = "B"
	}
	_, err = box.Open(flipped + sealed[1:])
	assert.Error(t, err)
}

func TestOpenRejectsGarbage(t *testing.T) {
	box, err := New("test-secret")
	require.NoError(t, err)

	_, err = box.Open("not base64!!!")
	assert.Error(t, err)

	_, err = box.Open("c2hvcnQ=") // valid base64, shorter than a nonce
	assert.Error(t, err)
}

func TestNewRejectsEmptySecret(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
