package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"Lumen_Blog/internal/model"
	"Lumen_Blog/internal/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func insertComment(t *testing.T, repo CommentRepository, subjectID uint64, parentID *uint64, body string) *model.Comment {
	t.Helper()
	c := &model.Comment{SubjectID: subjectID, ParentID: parentID, AuthorName: "tester", Body: body}
	require.NoError(t, repo.Insert(context.Background(), c))
	require.NotZero(t, c.ID)
	return c
}

func TestCommentRepository_InsertAndFind(t *testing.T) {
	db := testdb.Open(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	root := insertComment(t, repo, 1, nil, "root")
	reply := insertComment(t, repo, 1, &root.ID, "reply")
	insertComment(t, repo, 2, nil, "other post")

	t.Run("find by id", func(t *testing.T) {
		got, err := repo.FindByID(ctx, reply.ID)
		require.NoError(t, err)
		assert.Equal(t, "reply", got.Body)
		require.NotNil(t, got.ParentID)
		assert.Equal(t, root.ID, *got.ParentID)
		assert.False(t, got.Published, "new comments default to unpublished")
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 999)
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	})

	t.Run("find by subject", func(t *testing.T) {
		got, err := repo.FindBySubject(ctx, 1)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, root.ID, got[0].ID)
		assert.Equal(t, reply.ID, got[1].ID)
	})

	t.Run("find children", func(t *testing.T) {
		got, err := repo.FindChildren(ctx, root.ID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, reply.ID, got[0].ID)

		none, err := repo.FindChildren(ctx, reply.ID)
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestCommentRepository_Update(t *testing.T) {
	db := testdb.Open(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	c := insertComment(t, repo, 1, nil, "draft")
	time.Sleep(5 * time.Millisecond)

	got, err := repo.Update(ctx, c.ID, map[string]interface{}{"published": true, "body": "edited"})
	require.NoError(t, err)
	assert.True(t, got.Published)
	assert.Equal(t, "edited", got.Body)
	assert.True(t, got.UpdatedAt.After(c.UpdatedAt), "updated_at must move forward")
	assert.True(t, got.CreatedAt.Equal(c.CreatedAt), "created_at is immutable")

	t.Run("setting false works with map updates", func(t *testing.T) {
		got, err := repo.Update(ctx, c.ID, map[string]interface{}{"published": false})
		require.NoError(t, err)
		assert.False(t, got.Published)
	})

	t.Run("missing comment", func(t *testing.T) {
		_, err := repo.Update(ctx, 12345, map[string]interface{}{"published": true})
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	})
}

func TestCommentRepository_Delete(t *testing.T) {
	db := testdb.Open(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	c := insertComment(t, repo, 1, nil, "bye")

	deleted, err := repo.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.FindByID(ctx, c.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	rows, err := repo.FindBySubject(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, rows)

	deleted, err = repo.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "deleting twice reports nothing removed")
}

func TestCommentRepository_WithTxRollsBack(t *testing.T) {
	db := testdb.Open(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	c := insertComment(t, repo, 1, nil, "kept")
	boom := errors.New("boom")

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := repo.WithTx(tx).Delete(ctx, c.ID); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.FindByID(ctx, c.ID)
	assert.NoError(t, err)
}
