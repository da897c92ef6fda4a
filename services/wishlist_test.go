package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistAdd(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "reader")
	ws := NewWishlistService()

	entry, created, err := ws.Add(context.Background(), user.ID, "Dune", "Frank Herbert", "")
	require.NoError(t, err)
	assert.True(t, created)

	// Повтор возвращает существующую запись
	again, created, err := ws.Add(context.Background(), user.ID, "Dune", "Frank Herbert", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, entry.ID, again.ID)

	_, _, err = ws.Add(context.Background(), user.ID, "", "A", "")
	assert.True(t, errors.Is(err, ErrValidation))

	entries, err := ws.List(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWishlistDelete(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "reader")
	stranger := createTestUser(t, "stranger")
	ws := NewWishlistService()

	entry, _, err := ws.Add(context.Background(), user.ID, "Dune", "", "")
	require.NoError(t, err)

	// Чужая запись не удаляется
	err = ws.Delete(context.Background(), stranger.ID, entry.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, ws.Delete(context.Background(), user.ID, entry.ID))
	entries, err := ws.List(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 0)
}

func TestWishlistMatches(t *testing.T) {
	setupTestDB(t)
	reader := createTestUser(t, "reader")
	owner := createTestUser(t, "owner")

	createTestBook(t, owner.ID, "Dune")
	createTestBook(t, owner.ID, "Hyperion")
	// Своя книга в подбор не попадает
	createTestBook(t, reader.ID, "Dune")

	ws := NewWishlistService()
	entry, _, err := ws.Add(context.Background(), reader.ID, "Dune", "", "")
	require.NoError(t, err)

	match, err := ws.FindMatches(context.Background(), reader.ID, entry.ID, 10)
	require.NoError(t, err)
	assert.True(t, match.HasAvailable)
	require.Len(t, match.AvailableBooks, 1)
	assert.Equal(t, owner.ID, match.AvailableBooks[0].OwnerID)

	// Чужая запись недоступна
	_, err = ws.FindMatches(context.Background(), owner.ID, entry.ID, 10)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestWishlistWithAvailability(t *testing.T) {
	setupTestDB(t)
	reader := createTestUser(t, "reader")
	owner := createTestUser(t, "owner")
	createTestBook(t, owner.ID, "Dune")

	ws := NewWishlistService()
	_, _, err := ws.Add(context.Background(), reader.ID, "Dune", "", "")
	require.NoError(t, err)
	_, _, err = ws.Add(context.Background(), reader.ID, "Nonexistent Book", "", "")
	require.NoError(t, err)

	result, err := ws.WithAvailability(context.Background(), reader.ID)
	require.NoError(t, err)
	require.Len(t, result, 2)

	byTitle := map[string]WishlistMatch{}
	for _, m := range result {
		byTitle[m.Item.Title] = m
	}
	assert.True(t, byTitle["Dune"].HasAvailable)
	assert.False(t, byTitle["Nonexistent Book"].HasAvailable)
}
