package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanBigOne/mre-who-am-i/internal/content"
	"github.com/oceanBigOne/mre-who-am-i/internal/domain"
)

func TestNewClient_Connects(t *testing.T) {
	client := setupTestClient(t)

	require.NoError(t, client.Ping(context.Background()).Err())
}

func TestNameSource_ReadsReplacedList(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()

	require.NoError(t, ReplaceNames(ctx, client, "france", []string{"Molière", "Colette", "Victor Hugo"}))

	names, err := NewNameSource(client).Names(ctx, "france")
	require.NoError(t, err)
	assert.Equal(t, []string{"Molière", "Colette", "Victor Hugo"}, names)

	require.NoError(t, ReplaceNames(ctx, client, "france", []string{"Simone Veil"}))
	names, err = NewNameSource(client).Names(ctx, "france")
	require.NoError(t, err)
	assert.Equal(t, []string{"Simone Veil"}, names)
}

func TestNameSource_ClearedListIsUnknown(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()

	require.NoError(t, ReplaceNames(ctx, client, "world", []string{"Ada Lovelace"}))
	require.NoError(t, ReplaceNames(ctx, client, "world", nil))

	_, err := NewNameSource(client).Names(ctx, "world")
	assert.ErrorIs(t, err, domain.ErrUnknownCountry)
}

func TestNameSource_ChainFallsBackToEmbedded(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()

	require.NoError(t, ReplaceNames(ctx, client, "france", []string{"Colette"}))
	catalog := content.NewCatalog(content.Chain{NewNameSource(client), content.NewEmbeddedSource()})

	france, err := catalog.Names(ctx, "france")
	require.NoError(t, err)
	assert.Equal(t, []string{"Colette"}, france)

	world, err := catalog.Names(ctx, "world")
	require.NoError(t, err)
	assert.NotEmpty(t, world, "world comes from the embedded lists")
}

func TestSeedNames_WritesMissingList(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()

	embedded, err := content.NewEmbeddedSource().Names(ctx, "france")
	require.NoError(t, err)

	written, err := SeedNames(ctx, client, "france", embedded)
	require.NoError(t, err)
	assert.True(t, written)

	names, err := NewNameSource(client).Names(ctx, "france")
	require.NoError(t, err)
	assert.Equal(t, embedded, names)
}

func TestSeedNames_KeepsExistingList(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()

	require.NoError(t, ReplaceNames(ctx, client, "world", []string{"Ada Lovelace"}))

	written, err := SeedNames(ctx, client, "world", []string{"Alan Turing", "Grace Hopper"})
	require.NoError(t, err)
	assert.False(t, written)

	names, err := NewNameSource(client).Names(ctx, "world")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada Lovelace"}, names)
}
