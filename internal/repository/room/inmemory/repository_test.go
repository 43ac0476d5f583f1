package inmemory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchroom/server/internal/repository/room"
)

func TestCreateRoomIsIdempotent(t *testing.T) {
	repo := NewRepo(100)
	ctx := context.Background()

	require.NoError(t, repo.CreateRoom(ctx, "ABCD"))
	require.NoError(t, repo.AddParticipant(ctx, &room.AddParticipantParams{
		RoomId:      "ABCD",
		Participant: room.Participant{Id: "p1", Username: "alice"},
	}))

	// a second create must not wipe existing state
	require.NoError(t, repo.CreateRoom(ctx, "ABCD"))

	participants, err := repo.GetParticipants(ctx, "ABCD")
	require.NoError(t, err)
	assert.Len(t, participants, 1)
}

func TestParticipantsKeepJoinOrder(t *testing.T) {
	repo := NewRepo(100)
	ctx := context.Background()

	require.NoError(t, repo.CreateRoom(ctx, "ABCD"))
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		require.NoError(t, repo.AddParticipant(ctx, &room.AddParticipantParams{
			RoomId:      "ABCD",
			Participant: room.Participant{Id: id, Username: "user-" + id},
		}))
	}

	removed, err := repo.RemoveParticipant(ctx, &room.RemoveParticipantParams{
		ParticipantId: "p2",
		RoomId:        "ABCD",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-p2", removed.Username)

	participants, err := repo.GetParticipants(ctx, "ABCD")
	require.NoError(t, err)
	require.Len(t, participants, 3)
	assert.Equal(t, "p1", participants[0].Id)
	assert.Equal(t, "p3", participants[1].Id)
	assert.Equal(t, "p4", participants[2].Id)
}

func TestRemoveUnknownParticipant(t *testing.T) {
	repo := NewRepo(100)
	ctx := context.Background()

	_, err := repo.RemoveParticipant(ctx, &room.RemoveParticipantParams{
		ParticipantId: "p1",
		RoomId:        "ABCD",
	})
	require.ErrorIs(t, err, room.ErrRoomNotFound)

	require.NoError(t, repo.CreateRoom(ctx, "ABCD"))
	_, err = repo.RemoveParticipant(ctx, &room.RemoveParticipantParams{
		ParticipantId: "p1",
		RoomId:        "ABCD",
	})
	require.ErrorIs(t, err, room.ErrParticipantNotFound)
}

func TestGetParticipantsReturnsCopy(t *testing.T) {
	repo := NewRepo(100)
	ctx := context.Background()

	require.NoError(t, repo.CreateRoom(ctx, "ABCD"))
	require.NoError(t, repo.AddParticipant(ctx, &room.AddParticipantParams{
		RoomId:      "ABCD",
		Participant: room.Participant{Id: "p1", Username: "alice"},
	}))

	participants, err := repo.GetParticipants(ctx, "ABCD")
	require.NoError(t, err)
	participants[0].Username = "mallory"

	participants, err = repo.GetParticipants(ctx, "ABCD")
	require.NoError(t, err)
	assert.Equal(t, "alice", participants[0].Username)
}

func TestDeleteRoomIfEmpty(t *testing.T) {
	repo := NewRepo(100)
	ctx := context.Background()

	deleted, err := repo.DeleteRoomIfEmpty(ctx, "NOPE")
	require.NoError(t, err)
	assert.False(t, deleted, "unknown room is a no-op")

	require.NoError(t, repo.CreateRoom(ctx, "ABCD"))
	require.NoError(t, repo.AddParticipant(ctx, &room.AddParticipantParams{
		RoomId:      "ABCD",
		Participant: room.Participant{Id: "p1", Username: "alice"},
	}))

	deleted, err = repo.DeleteRoomIfEmpty(ctx, "ABCD")
	require.NoError(t, err)
	assert.False(t, deleted, "occupied room must not be deleted")

	_, err = repo.RemoveParticipant(ctx, &room.RemoveParticipantParams{
		ParticipantId: "p1",
		RoomId:        "ABCD",
	})
	require.NoError(t, err)

	deleted, err = repo.DeleteRoomIfEmpty(ctx, "ABCD")
	require.NoError(t, err)
	assert.True(t, deleted)

	exists, err := repo.RoomExists(ctx, "ABCD")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAppendChatEntryAssignsIncreasingIds(t *testing.T) {
	repo := NewRepo(100)
	ctx := context.Background()

	require.NoError(t, repo.CreateRoom(ctx, "ABCD"))

	for i := int64(1); i <= 3; i++ {
		entry, err := repo.AppendChatEntry(ctx, &room.AppendChatEntryParams{
			Kind:   room.ChatEntryKindSystem,
			Text:   "entry",
			RoomId: "ABCD",
		})
		require.NoError(t, err)
		assert.Equal(t, i, entry.Id, "ids start at 1 and increase by 1")
		assert.NotEmpty(t, entry.RenderedTime)
	}
}

func TestChatHistoryEvictsOldestAtCapacity(t *testing.T) {
	repo := NewRepo(3)
	ctx := context.Background()

	require.NoError(t, repo.CreateRoom(ctx, "ABCD"))

	for i := 0; i < 5; i++ {
		_, err := repo.AppendChatEntry(ctx, &room.AppendChatEntryParams{
			Kind:       room.ChatEntryKindUser,
			AuthorName: "alice",
			Text:       fmt.Sprintf("message %d", i),
			RoomId:     "ABCD",
		})
		require.NoError(t, err)
	}

	history, err := repo.GetChatHistory(ctx, "ABCD")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "message 2", history[0].Text)
	assert.Equal(t, "message 3", history[1].Text)
	assert.Equal(t, "message 4", history[2].Text)
	assert.Equal(t, int64(3), history[0].Id, "evicted ids are never reused")
}

func TestIdCounterSurvivesEviction(t *testing.T) {
	repo := NewRepo(2)
	ctx := context.Background()

	require.NoError(t, repo.CreateRoom(ctx, "ABCD"))

	var last room.ChatEntry
	for i := 0; i < 10; i++ {
		entry, err := repo.AppendChatEntry(ctx, &room.AppendChatEntryParams{
			Kind:   room.ChatEntryKindSystem,
			Text:   "entry",
			RoomId: "ABCD",
		})
		require.NoError(t, err)
		last = entry
	}

	assert.Equal(t, int64(10), last.Id)
}

func TestPlaybackRoundTrip(t *testing.T) {
	repo := NewRepo(100)
	ctx := context.Background()

	require.NoError(t, repo.CreateRoom(ctx, "ABCD"))

	playback, err := repo.GetPlayback(ctx, "ABCD")
	require.NoError(t, err)
	assert.Nil(t, playback.VideoRef, "a new room has no video loaded")
	assert.False(t, playback.IsPlaying)

	videoRef := &room.VideoRef{VideoId: "xyz123", Title: "Song"}
	require.NoError(t, repo.SetPlayback(ctx, &room.SetPlaybackParams{
		Playback: room.Playback{VideoRef: videoRef, IsPlaying: true, Position: 12.5},
		RoomId:   "ABCD",
	}))

	// mutating the caller's struct must not leak into stored state
	videoRef.Title = "Other"

	playback, err = repo.GetPlayback(ctx, "ABCD")
	require.NoError(t, err)
	require.NotNil(t, playback.VideoRef)
	assert.Equal(t, "Song", playback.VideoRef.Title)
	assert.True(t, playback.IsPlaying)
	assert.Equal(t, 12.5, playback.Position)
}

func TestGetStats(t *testing.T) {
	repo := NewRepo(100)
	ctx := context.Background()

	require.NoError(t, repo.CreateRoom(ctx, "WXYZ"))
	require.NoError(t, repo.CreateRoom(ctx, "ABCD"))
	require.NoError(t, repo.AddParticipant(ctx, &room.AddParticipantParams{
		RoomId:      "ABCD",
		Participant: room.Participant{Id: "p1", Username: "alice"},
	}))

	stats, err := repo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Rooms)
	assert.Equal(t, 1, stats.Participants)
	assert.Equal(t, []string{"ABCD", "WXYZ"}, stats.RoomIds, "room ids are sorted")
}

func TestUnknownRoomErrors(t *testing.T) {
	repo := NewRepo(100)
	ctx := context.Background()

	_, err := repo.GetParticipants(ctx, "NOPE")
	require.ErrorIs(t, err, room.ErrRoomNotFound)

	_, err = repo.GetPlayback(ctx, "NOPE")
	require.ErrorIs(t, err, room.ErrRoomNotFound)

	_, err = repo.GetChatHistory(ctx, "NOPE")
	require.ErrorIs(t, err, room.ErrRoomNotFound)

	_, err = repo.GetHostId(ctx, "NOPE")
	require.ErrorIs(t, err, room.ErrRoomNotFound)

	err = repo.SetHostId(ctx, &room.SetHostIdParams{HostId: "p1", RoomId: "NOPE"})
	require.ErrorIs(t, err, room.ErrRoomNotFound)
}
