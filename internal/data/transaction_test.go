package data

import (
	"context"
	"errors"
	"testing"

	"Lumen_Blog/internal/model"
	"Lumen_Blog/internal/repository"
	"Lumen_Blog/internal/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork(t *testing.T) {
	db := testdb.Open(t)
	comments := repository.NewCommentRepository(db)
	uow := NewUnitOfWork(db, comments)
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		err := uow.Execute(ctx, func(repos *TransactionalRepositories) error {
			return repos.CommentRepo.Insert(ctx, &model.Comment{SubjectID: 1, AuthorName: "a", Body: "committed"})
		})
		require.NoError(t, err)

		rows, err := comments.FindBySubject(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := uow.Execute(ctx, func(repos *TransactionalRepositories) error {
			if err := repos.CommentRepo.Insert(ctx, &model.Comment{SubjectID: 2, AuthorName: "a", Body: "lost"}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		rows, err := comments.FindBySubject(ctx, 2)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}
