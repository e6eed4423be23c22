package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountModel "books-commons/internal/domains/account/model"
	catalogModel "books-commons/internal/domains/catalog/model"
	"books-commons/internal/domains/review/model"
	"books-commons/internal/shared/apperror"
	"books-commons/internal/testutil/memstore"
)

type fixture struct {
	store  *memstore.Store
	svc    Service
	author accountModel.Member
	reader accountModel.Member
	book   catalogModel.Book
}

func newFixture() *fixture {
	store := memstore.New()
	isbn := "9784152098702"
	return &fixture{
		store:  store,
		svc:    NewReviewService(store, store.Reviews()),
		author: store.AddMember("葉子"),
		reader: store.AddMember("湊"),
		book:   store.AddBook(catalogModel.Book{ISBN: &isbn, Title: "三体", Author: "劉慈欣"}),
	}
}

func (f *fixture) create(t *testing.T, author uuid.UUID, rating int, visibility model.Visibility) *model.Review {
	t.Helper()
	r, err := f.svc.CreateReview(context.Background(), author, f.book.ID, model.CreateReviewRequest{
		Rating:     rating,
		Visibility: string(visibility),
	})
	require.NoError(t, err)
	return r
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// =====================================================
// CREATE
// =====================================================

func TestCreateReview(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	r, err := f.svc.CreateReview(ctx, f.author.ID, f.book.ID, model.CreateReviewRequest{
		Rating: 5,
		Body:   strPtr("  一気に読んだ  "),
		ReadAt: strPtr("2024-03-10"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.VisibilityCommunity, r.Visibility, "default visibility")
	require.NotNil(t, r.Body)
	assert.Equal(t, "一気に読んだ", *r.Body)
	require.NotNil(t, r.ReadAt)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), *r.ReadAt)

	stored, ok := f.store.Review(r.ID)
	require.True(t, ok)
	assert.Equal(t, f.author.ID, stored.UserID)
	assert.Equal(t, f.book.ID, stored.BookID)
}

func TestCreateReview_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := map[string]model.CreateReviewRequest{
		"rating missing":     {},
		"rating too high":    {Rating: 6},
		"rating negative":    {Rating: -1},
		"body too long":      {Rating: 3, Body: strPtr(strings.Repeat("あ", model.MaxBodyLength+1))},
		"read_at not a date": {Rating: 3, ReadAt: strPtr("10/03/2024")},
		"unknown visibility": {Rating: 3, Visibility: "friends"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.CreateReview(ctx, f.author.ID, f.book.ID, req)
			assert.True(t, apperror.IsKind(err, apperror.KindValidation), "got %v", err)
		})
	}

	_, err := f.svc.CreateReview(ctx, f.author.ID, f.book.ID, model.CreateReviewRequest{
		Rating: 4,
		Body:   strPtr(strings.Repeat("あ", model.MaxBodyLength)),
	})
	assert.NoError(t, err, "body at the limit is accepted")
}

func TestCreateReview_UnknownBook(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateReview(context.Background(), f.author.ID, uuid.New(), model.CreateReviewRequest{Rating: 3})
	assert.True(t, errors.Is(err, model.ErrBookNotFound))
}

// =====================================================
// UPDATE / DELETE
// =====================================================

func TestUpdateReview(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r, err := f.svc.CreateReview(ctx, f.author.ID, f.book.ID, model.CreateReviewRequest{
		Rating: 3,
		Body:   strPtr("まあまあ"),
		ReadAt: strPtr("2024-03-10"),
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateReview(ctx, f.author.ID, r.ID, model.UpdateReviewRequest{
		Rating:     intPtr(4),
		Visibility: strPtr("private"),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)
	assert.Equal(t, model.VisibilityPrivate, updated.Visibility)
	require.NotNil(t, updated.Body, "fields not sent are kept")
	assert.Equal(t, "まあまあ", *updated.Body)
	assert.True(t, updated.UpdatedAt.After(r.UpdatedAt))

	// chuỗi rỗng xoá body và read_at
	updated, err = f.svc.UpdateReview(ctx, f.author.ID, r.ID, model.UpdateReviewRequest{
		Body:   strPtr(""),
		ReadAt: strPtr(""),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Body)
	assert.Nil(t, updated.ReadAt)

	stored, _ := f.store.Review(r.ID)
	assert.Equal(t, 4, stored.Rating)
	assert.Nil(t, stored.Body)
}

func TestUpdateReview_OnlyAuthor(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r := f.create(t, f.author.ID, 3, model.VisibilityPublic)

	_, err := f.svc.UpdateReview(ctx, f.reader.ID, r.ID, model.UpdateReviewRequest{Rating: intPtr(1)})
	assert.True(t, errors.Is(err, model.ErrReviewNotFound))

	stored, _ := f.store.Review(r.ID)
	assert.Equal(t, 3, stored.Rating)

	_, err = f.svc.UpdateReview(ctx, f.author.ID, uuid.New(), model.UpdateReviewRequest{Rating: intPtr(1)})
	assert.True(t, errors.Is(err, model.ErrReviewNotFound))
}

func TestUpdateReview_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r := f.create(t, f.author.ID, 3, model.VisibilityPublic)

	_, err := f.svc.UpdateReview(ctx, f.author.ID, r.ID, model.UpdateReviewRequest{Rating: intPtr(0)})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = f.svc.UpdateReview(ctx, f.author.ID, r.ID, model.UpdateReviewRequest{Visibility: strPtr("")})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	// body rỗng thì không có gì thay đổi
	same, err := f.svc.UpdateReview(ctx, f.author.ID, r.ID, model.UpdateReviewRequest{})
	require.NoError(t, err)
	assert.Equal(t, r.UpdatedAt, same.UpdatedAt)
}

func TestUpdateReview_StorageFailureRollsBack(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r := f.create(t, f.author.ID, 3, model.VisibilityPublic)

	boom := errors.New("connection reset")
	f.store.FailNext("reviews.Update", boom)

	_, err := f.svc.UpdateReview(ctx, f.author.ID, r.ID, model.UpdateReviewRequest{Rating: intPtr(5)})
	assert.ErrorIs(t, err, boom)

	stored, _ := f.store.Review(r.ID)
	assert.Equal(t, 3, stored.Rating)
}

func TestDeleteReview(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r := f.create(t, f.author.ID, 2, model.VisibilityCommunity)

	err := f.svc.DeleteReview(ctx, f.reader.ID, r.ID)
	assert.True(t, errors.Is(err, model.ErrReviewNotFound))
	_, ok := f.store.Review(r.ID)
	assert.True(t, ok, "non-author cannot delete")

	require.NoError(t, f.svc.DeleteReview(ctx, f.author.ID, r.ID))
	_, ok = f.store.Review(r.ID)
	assert.False(t, ok)

	err = f.svc.DeleteReview(ctx, f.author.ID, r.ID)
	assert.True(t, errors.Is(err, model.ErrReviewNotFound))
}

// =====================================================
// LIST / FEED
// =====================================================

func TestListByBook_PrivateOnlyForAuthor(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	public := f.create(t, f.author.ID, 5, model.VisibilityPublic)
	private := f.create(t, f.author.ID, 1, model.VisibilityPrivate)
	community := f.create(t, f.reader.ID, 4, model.VisibilityCommunity)

	list, err := f.svc.ListByBook(ctx, f.reader.ID, f.book.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, community.ID, list[0].ID, "newest first")
	assert.Equal(t, public.ID, list[1].ID)
	assert.Equal(t, "葉子", list[1].AuthorName)

	list, err = f.svc.ListByBook(ctx, f.author.ID, f.book.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, private.ID, list[1].ID)

	list, err = f.svc.ListByBook(ctx, f.author.ID, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFeed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	hidden := f.create(t, f.author.ID, 2, model.VisibilityPrivate)
	for i := 0; i < model.FeedLimit+5; i++ {
		f.create(t, f.reader.ID, 1+i%5, model.VisibilityCommunity)
	}
	newest := f.create(t, f.author.ID, 5, model.VisibilityPublic)

	feed, err := f.svc.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, model.FeedLimit)
	assert.Equal(t, newest.ID, feed[0].ID)
	assert.Equal(t, "三体", feed[0].BookTitle)
	assert.Equal(t, "葉子", feed[0].AuthorName)
	for _, item := range feed {
		assert.NotEqual(t, hidden.ID, item.ID)
		assert.NotEqual(t, model.VisibilityPrivate, item.Visibility)
	}
	for i := 1; i < len(feed); i++ {
		assert.False(t, feed[i].CreatedAt.After(feed[i-1].CreatedAt))
	}
}
