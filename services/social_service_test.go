package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/ws"
)

func newSocialFixture(t *testing.T) (*fakeStore, *fakeHub, SocialService) {
	t.Helper()

	fake := newFakeStore(testUsers()...)
	hub := newFakeHub()
	return fake, hub, NewSocialService(fake, fake, hub)
}

func TestFollowCreatesRelationAndNotifiesTarget(t *testing.T) {
	fake, hub, svc := newSocialFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Follow(ctx, "me", "alice"))

	rel, err := fake.GetFollow(ctx, "me", "alice")
	require.NoError(t, err)
	assert.True(t, rel.Following)

	events := hub.eventsFor("alice")
	require.Len(t, events, 1)
	assert.Equal(t, ws.OpFollowUpdate, events[0].Op)
}

func TestFollowIsIdempotent(t *testing.T) {
	_, _, svc := newSocialFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Follow(ctx, "me", "alice"))
	require.NoError(t, svc.Follow(ctx, "me", "alice"))

	followed, err := svc.ListFollowed(ctx, "me")
	require.NoError(t, err)
	require.Len(t, followed, 1)
	assert.Equal(t, "alice", followed[0].UserID)
}

func TestUnfollowNeverFollowedIsError(t *testing.T) {
	_, _, svc := newSocialFixture(t)

	err := svc.Unfollow(context.Background(), "me", "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestUnfollowDeactivatesWithoutDeleting(t *testing.T) {
	fake, _, svc := newSocialFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Follow(ctx, "me", "alice"))
	require.NoError(t, svc.Unfollow(ctx, "me", "alice"))

	// Satır durur, flag kapanır.
	rel, err := fake.GetFollow(ctx, "me", "alice")
	require.NoError(t, err)
	assert.False(t, rel.Following)

	followed, err := svc.ListFollowed(ctx, "me")
	require.NoError(t, err)
	assert.Empty(t, followed)

	// Tekrar unfollow idempotent — satır var olduğu için hata değil.
	require.NoError(t, svc.Unfollow(ctx, "me", "alice"))

	// Yeniden takip eski satırı canlandırır.
	require.NoError(t, svc.Follow(ctx, "me", "alice"))
	followed, err = svc.ListFollowed(ctx, "me")
	require.NoError(t, err)
	require.Len(t, followed, 1)
}

func TestFollowSelfOrUnknownTarget(t *testing.T) {
	_, _, svc := newSocialFixture(t)
	ctx := context.Background()

	err := svc.Follow(ctx, "me", "me")
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	err = svc.Follow(ctx, "me", "yok-boyle-biri")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestListFollowersAndFollowsYouFlag(t *testing.T) {
	_, _, svc := newSocialFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Follow(ctx, "alice", "me"))
	require.NoError(t, svc.Follow(ctx, "me", "alice"))
	require.NoError(t, svc.Follow(ctx, "me", "burak"))

	followers, err := svc.ListFollowers(ctx, "me")
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].UserID)
	assert.True(t, followers[0].FollowsYou)

	followed, err := svc.ListFollowed(ctx, "me")
	require.NoError(t, err)
	require.Len(t, followed, 2)
	// İsme göre sıralı: Alice, Burak.
	assert.Equal(t, "alice", followed[0].UserID)
	assert.True(t, followed[0].FollowsYou)
	assert.Equal(t, "burak", followed[1].UserID)
	assert.False(t, followed[1].FollowsYou)
}

func TestSuggestionsExcludeActivelyFollowed(t *testing.T) {
	_, _, svc := newSocialFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Follow(ctx, "me", "alice"))
	require.NoError(t, svc.Follow(ctx, "me", "burak"))
	require.NoError(t, svc.Unfollow(ctx, "me", "burak"))
	require.NoError(t, svc.Follow(ctx, "cem", "me"))

	suggestions, err := svc.ListSuggestions(ctx, "me")
	require.NoError(t, err)

	ids := make(map[string]bool)
	var cemFollowsYou bool
	for _, u := range suggestions {
		ids[u.UserID] = true
		if u.UserID == "cem" {
			cemFollowsYou = u.FollowsYou
		}
	}

	assert.False(t, ids["alice"], "aktif takip önerilmez")
	assert.True(t, ids["burak"], "bırakılmış takip önerilere geri düşer")
	assert.True(t, ids["cem"])
	assert.True(t, cemFollowsYou)
	assert.False(t, ids["me"])
}
