package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/sohbet/models"
)

func msgAt(id, sender, receiver, text string, t time.Time, read bool) models.Message {
	return models.Message{
		ID:         id,
		SenderID:   sender,
		ReceiverID: receiver,
		Text:       text,
		CreatedAt:  t,
		IsRead:     read,
	}
}

func TestFoldMessagesGroupsByCounterpart(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	msgs := []models.Message{
		msgAt("m1", "me", "alice", "selam", base, false),
		msgAt("m2", "alice", "me", "selam sana da", base.Add(time.Minute), false),
		msgAt("m3", "bob", "me", "naber", base.Add(2*time.Minute), false),
		msgAt("m4", "me", "bob", "iyidir", base.Add(3*time.Minute), false),
	}

	out := FoldMessages(msgs, "me")
	require.Len(t, out, 2)

	alice := out["alice"]
	require.NotNil(t, alice)
	assert.Equal(t, "m2", alice.LastMessageID)
	assert.Equal(t, models.DirectionReceived, alice.Direction)
	assert.Equal(t, 1, alice.UnreadCount)

	bob := out["bob"]
	require.NotNil(t, bob)
	assert.Equal(t, "m4", bob.LastMessageID)
	assert.Equal(t, models.DirectionSent, bob.Direction)
	assert.Equal(t, 1, bob.UnreadCount)
}

func TestFoldMessagesUnreadCountsOnlyIncomingUnread(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	msgs := []models.Message{
		msgAt("m1", "alice", "me", "bir", base, true),               // okunmuş — sayılmaz
		msgAt("m2", "alice", "me", "iki", base.Add(time.Minute), false),
		msgAt("m3", "alice", "me", "üç", base.Add(2*time.Minute), false),
		msgAt("m4", "me", "alice", "dört", base.Add(3*time.Minute), false), // giden — sayılmaz
	}

	out := FoldMessages(msgs, "me")
	require.Contains(t, out, "alice")
	assert.Equal(t, 2, out["alice"].UnreadCount)
}

func TestFoldMessagesEqualTimestampTieBreaksOnID(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	msgs := []models.Message{
		msgAt("m-b", "alice", "me", "ikinci", ts, false),
		msgAt("m-a", "alice", "me", "birinci", ts, false),
	}

	out := FoldMessages(msgs, "me")
	require.Contains(t, out, "alice")
	// Aynı zaman damgasında sözlüksel büyük id kazanır — girdi sırası fark etmez.
	assert.Equal(t, "m-b", out["alice"].LastMessageID)

	reversed := FoldMessages([]models.Message{msgs[1], msgs[0]}, "me")
	assert.Equal(t, "m-b", reversed["alice"].LastMessageID)
}

func TestFoldMessagesSkipsInvalidRecords(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	msgs := []models.Message{
		msgAt("", "alice", "me", "id yok", base, false),
		{SenderID: "alice", ReceiverID: "me", Text: "zaman yok", ID: "m2"},
		msgAt("m3", "me", "me", "kendine mesaj", base, false),
		msgAt("m4", "alice", "me", "geçerli", base.Add(time.Minute), false),
	}

	out := FoldMessages(msgs, "me")
	require.Len(t, out, 1)
	assert.Equal(t, "m4", out["alice"].LastMessageID)
	assert.Equal(t, 1, out["alice"].UnreadCount)
}

func TestFoldMessagesSkipsForeignRecords(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// İki tarafı da başkası olan kayıt bu kullanıcının hiçbir konuşmasına
	// girmemeli — CounterpartID böyle bir kayıt için sender'ı döndüğünden
	// guard taraflara bakmak zorundadır.
	msgs := []models.Message{
		msgAt("m1", "cem", "deniz", "bizi ilgilendirmez", base, false),
		msgAt("m2", "alice", "me", "geçerli", base, false),
	}

	out := FoldMessages(msgs, "me")
	require.Len(t, out, 1)
	assert.NotContains(t, out, "cem")
	assert.Contains(t, out, "alice")
}

func TestFoldFollowsSoftToggle(t *testing.T) {
	rels := []models.FollowRelation{
		{FollowerID: "me", FollowedID: "alice", Following: true},
		{FollowerID: "me", FollowedID: "bob", Following: false}, // pasif — elenecek
		{FollowerID: "cem", FollowedID: "me", Following: true},
		{FollowerID: "bob", FollowedID: "me", Following: false},
	}

	state := FoldFollows(rels, "me")
	assert.Equal(t, map[string]bool{"alice": true}, state.Followed)
	assert.Equal(t, map[string]bool{"cem": true}, state.Followers)
}

func TestFoldFavoritesDropsInactive(t *testing.T) {
	rels := []models.FavoriteRelation{
		{OwnerID: "me", CounterpartID: "alice", IsMyFav: true},
		{OwnerID: "me", CounterpartID: "bob", IsMyFav: false},
	}

	out := FoldFavorites(rels)
	assert.Equal(t, map[string]bool{"alice": true}, out)
}
