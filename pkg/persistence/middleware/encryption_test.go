package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/onboarding/pkg/adapters/memory"
	"github.com/aretw0/onboarding/pkg/domain"
	"github.com/aretw0/onboarding/pkg/persistence/middleware"
	"github.com/aretw0/onboarding/pkg/ports"
	"github.com/aretw0/onboarding/pkg/wizards"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func secureStore(t *testing.T, underlying ports.StateStore, cfg middleware.EncryptionConfig) ports.StateStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(underlying)
}

func sampleState(id string) *domain.State {
	state := domain.NewState(id, wizards.KindSignup)
	state.Step = 5
	state.Fields[wizards.FieldEmail] = "ada@example.com"
	state.Fields[wizards.FieldPassword] = "Abc123!@"
	state.Touched[wizards.FieldPassword] = true
	return state
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := secureStore(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunStateStoreContract(t, store)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	store := secureStore(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", sampleState("s1")))

	raw, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotContains(t, raw.Fields, wizards.FieldPassword, "secrets never reach the backend in clear")
	assert.NotContains(t, raw.Fields, wizards.FieldEmail)
	assert.Contains(t, raw.Fields, "__encrypted__")
	assert.Equal(t, wizards.KindSignup, raw.Wizard)

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.Step)
	assert.Equal(t, "Abc123!@", loaded.Fields[wizards.FieldPassword])
	assert.True(t, loaded.Touched[wizards.FieldPassword])
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldStore := secureStore(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, oldStore.Save(ctx, "s1", sampleState("s1")))

	rotated := secureStore(t, underlying, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	loaded, err := rotated.Load(ctx, "s1")
	require.NoError(t, err, "fallback key decrypts old data")

	require.NoError(t, rotated.Save(ctx, "s1", loaded))
	_, err = oldStore.Load(ctx, "s1")
	assert.ErrorIs(t, err, middleware.ErrDecryptionFailed, "re-saved data uses the new key")
}

func TestEncryptionMiddleware_RefusesPlainState(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "plain", sampleState("plain")))

	store := secureStore(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := store.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrMissingEnvelope)

	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}

func TestDecodeKey(t *testing.T) {
	key := generateKey(t)
	decoded, err := middleware.DecodeKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, decoded)

	_, err = middleware.DecodeKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.DecodeKey("not base64!")
	assert.Error(t, err)
}
