package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"Lumen_Blog/internal/event"
	"Lumen_Blog/internal/model"
	"Lumen_Blog/internal/repository"
	"Lumen_Blog/internal/testdb"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func encode(t *testing.T, msg event.CommentEventMessage) []byte {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return body
}

func TestCommentEventConsumer_Handle(t *testing.T) {
	db := testdb.Open(t)
	repo := repository.NewCommentEventRepository(db)
	consumer := NewCommentEventConsumer(repo)
	ctx := context.Background()

	msg := event.CommentEventMessage{
		EventID:    "8c7f0b7e-0000-4000-8000-000000000001",
		Action:     model.CommentActionModerated,
		CommentID:  11,
		SubjectID:  3,
		Actor:      "mod",
		Published:  true,
		OccurredAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}

	t.Run("stores event", func(t *testing.T) {
		assert.Equal(t, Ack, consumer.Handle(ctx, encode(t, msg)))
		events, err := repo.FindByComment(ctx, 11)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "mod", events[0].Actor)
		assert.True(t, events[0].Published)
	})

	t.Run("redelivery is acked once stored", func(t *testing.T) {
		assert.Equal(t, Ack, consumer.Handle(ctx, encode(t, msg)))
		events, err := repo.FindByComment(ctx, 11)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("bad json is rejected", func(t *testing.T) {
		assert.Equal(t, Reject, consumer.Handle(ctx, []byte("{not json")))
	})

	t.Run("incomplete message is rejected", func(t *testing.T) {
		bad := msg
		bad.EventID = ""
		assert.Equal(t, Reject, consumer.Handle(ctx, encode(t, bad)))
	})

	t.Run("store failure is requeued", func(t *testing.T) {
		sqlDB, err := db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		other := msg
		other.EventID = "8c7f0b7e-0000-4000-8000-000000000002"
		assert.Equal(t, Requeue, consumer.Handle(ctx, encode(t, other)))
	})
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKey(fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})))
	assert.False(t, isDuplicateKey(&mysql.MySQLError{Number: 1045}))
	assert.False(t, isDuplicateKey(errors.New("boom")))
}
