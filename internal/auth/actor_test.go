package auth

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestActorVariants(t *testing.T) {
	var zero Actor
	assert.True(t, zero.IsAnonymous())

	c := Customer("alice")
	name, ok := c.CustomerName()
	assert.True(t, ok)
	assert.Equal(t, "alice", name)
	_, ok = c.SupplierName()
	assert.False(t, ok)

	s := Supplier("acme")
	assert.True(t, s.IsSupplier())
	assert.False(t, s.IsCustomer())
	assert.NotEqual(t, Customer("acme"), s)
}

func TestActorJSONRoundTrip(t *testing.T) {
	for _, a := range []Actor{Anonymous(), Customer("alice"), Supplier("acme")} {
		b, err := json.Marshal(a)
		require.NoError(t, err)

		var got Actor
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, a, got)
	}
}

func TestActorJSONRejectsBadInput(t *testing.T) {
	var a Actor
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"admin","id":"x"}`), &a))
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"customer"}`), &a))
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	assert.True(t, GetActor(ctx).IsAnonymous())

	ctx = WithActor(ctx, Supplier("acme"))
	assert.Equal(t, Supplier("acme"), GetActor(ctx))
}

func TestBcryptVerifier(t *testing.T) {
	v := NewBcryptVerifier(bcrypt.MinCost)

	hash, err := v.Hash("s3cret")
	require.NoError(t, err)

	assert.NoError(t, v.Verify(hash, "s3cret"))
	assert.ErrorIs(t, v.Verify(hash, "wrong"), ErrPasswordMismatch)
}
