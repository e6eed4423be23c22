package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	accountModel "books-commons/internal/domains/account/model"
	accountRepo "books-commons/internal/domains/account/repository"
	catalogModel "books-commons/internal/domains/catalog/model"
	catalogRepo "books-commons/internal/domains/catalog/repository"
	loanModel "books-commons/internal/domains/loan/model"
	loanRepo "books-commons/internal/domains/loan/repository"
	notificationModel "books-commons/internal/domains/notification/model"
	notificationRepo "books-commons/internal/domains/notification/repository"
	reviewModel "books-commons/internal/domains/review/model"
	reviewRepo "books-commons/internal/domains/review/repository"
	shelfModel "books-commons/internal/domains/shelf/model"
	shelfRepo "books-commons/internal/domains/shelf/repository"
)

func (s *Store) Copies() shelfRepo.Repository                  { return copyRepo{s} }
func (s *Store) Loans() loanRepo.Repository                    { return loanRepoImpl{s} }
func (s *Store) Notifications() notificationRepo.Repository    { return notificationRepoImpl{s} }
func (s *Store) Books() catalogRepo.Repository                 { return bookRepo{s} }
func (s *Store) Members() accountRepo.MemberRepository         { return memberRepo{s} }
func (s *Store) Invitations() accountRepo.InvitationRepository { return invitationRepo{s} }
func (s *Store) Reviews() reviewRepo.Repository                { return reviewRepoImpl{s} }

// =====================================================
// COPIES (user_books)
// =====================================================

type copyRepo struct{ s *Store }

func (r copyRepo) Create(ctx context.Context, c *shelfModel.Copy) error {
	release, err := r.s.begin(ctx, "copies.Create", true)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := r.s.data.books[c.BookID]; !ok {
		return shelfModel.ErrBookNotFound
	}
	at := r.s.tick()
	c.CreatedAt, c.UpdatedAt = at, at
	r.s.data.copies[c.ID] = *c
	return nil
}

func (r copyRepo) GetByID(ctx context.Context, id uuid.UUID) (*shelfModel.Copy, error) {
	release, err := r.s.begin(ctx, "copies.GetByID", false)
	if err != nil {
		return nil, err
	}
	defer release()

	c, ok := r.s.data.copies[id]
	if !ok {
		return nil, shelfModel.ErrCopyNotFound
	}
	return &c, nil
}

func (r copyRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*shelfModel.Copy, error) {
	release, err := r.s.begin(ctx, "copies.GetByIDForUpdate", false)
	if err != nil {
		return nil, err
	}
	defer release()

	c, ok := r.s.data.copies[id]
	if !ok {
		return nil, shelfModel.ErrCopyNotFound
	}
	return &c, nil
}

func (r copyRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to shelfModel.CopyStatus) error {
	release, err := r.s.begin(ctx, "copies.UpdateStatus", true)
	if err != nil {
		return err
	}
	defer release()

	c, ok := r.s.data.copies[id]
	if !ok {
		return shelfModel.ErrCopyNotFound
	}
	if c.Status != from {
		return shelfModel.ErrCopyStatusChanged
	}
	c.Status = to
	c.UpdatedAt = r.s.tick()
	r.s.data.copies[id] = c
	return nil
}

func (r copyRepo) UpdateDetails(ctx context.Context, c *shelfModel.Copy) error {
	release, err := r.s.begin(ctx, "copies.UpdateDetails", true)
	if err != nil {
		return err
	}
	defer release()

	current, ok := r.s.data.copies[c.ID]
	if !ok || current.Status == shelfModel.StatusLentOut || c.Status == shelfModel.StatusLentOut {
		return shelfModel.ErrStatusLocked
	}
	current.Status, current.Condition, current.Note = c.Status, c.Condition, c.Note
	current.UpdatedAt = r.s.tick()
	c.UpdatedAt = current.UpdatedAt
	r.s.data.copies[c.ID] = current
	return nil
}

func (r copyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	release, err := r.s.begin(ctx, "copies.Delete", true)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := r.s.data.copies[id]; !ok {
		return shelfModel.ErrCopyNotFound
	}
	delete(r.s.data.copies, id)
	return nil
}

func (r copyRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, includePrivate bool) ([]shelfModel.ShelfItem, error) {
	release, err := r.s.begin(ctx, "copies.ListByOwner", false)
	if err != nil {
		return nil, err
	}
	defer release()

	items := make([]shelfModel.ShelfItem, 0)
	for _, c := range r.s.data.copies {
		if c.OwnerID != ownerID || (!includePrivate && c.Status == shelfModel.StatusPrivate) {
			continue
		}
		b := r.s.data.books[c.BookID]
		items = append(items, shelfModel.ShelfItem{
			Copy:     c,
			Title:    b.Title,
			Author:   b.Author,
			ISBN:     b.ISBN,
			CoverURL: b.CoverURL,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (r copyRepo) ListByBook(ctx context.Context, bookID uuid.UUID) ([]shelfModel.Copy, error) {
	release, err := r.s.begin(ctx, "copies.ListByBook", false)
	if err != nil {
		return nil, err
	}
	defer release()

	copies := make([]shelfModel.Copy, 0)
	for _, c := range r.s.data.copies {
		if c.BookID == bookID {
			copies = append(copies, c)
		}
	}
	sort.Slice(copies, func(i, j int) bool { return copies[i].CreatedAt.Before(copies[j].CreatedAt) })
	return copies, nil
}

func (r copyRepo) AvailabilityByISBN(ctx context.Context, isbns []string) (map[string]shelfModel.Availability, error) {
	release, err := r.s.begin(ctx, "copies.AvailabilityByISBN", false)
	if err != nil {
		return nil, err
	}
	defer release()

	wanted := make(map[string]bool, len(isbns))
	for _, isbn := range isbns {
		wanted[isbn] = true
	}

	result := make(map[string]shelfModel.Availability, len(isbns))
	for _, c := range r.s.data.copies {
		if c.Status == shelfModel.StatusPrivate {
			continue
		}
		b, ok := r.s.data.books[c.BookID]
		if !ok || b.ISBN == nil || !wanted[*b.ISBN] {
			continue
		}
		a := result[*b.ISBN]
		a.Total++
		if c.Status == shelfModel.StatusAvailable {
			a.Available++
		}
		result[*b.ISBN] = a
	}
	return result, nil
}

// =====================================================
// LOANS
// =====================================================

type loanRepoImpl struct{ s *Store }

func (r loanRepoImpl) Create(ctx context.Context, loan *loanModel.Loan) error {
	release, err := r.s.begin(ctx, "loans.Create", true)
	if err != nil {
		return err
	}
	defer release()

	// loans_open_per_copy_key
	for _, l := range r.s.data.loans {
		if l.CopyID == loan.CopyID && l.Status.IsOpen() {
			return loanModel.ErrCopyAlreadyPending
		}
	}
	loan.RequestedAt = r.s.tick()
	r.s.data.loans[loan.ID] = *loan
	return nil
}

func (r loanRepoImpl) GetByID(ctx context.Context, id uuid.UUID) (*loanModel.Loan, error) {
	release, err := r.s.begin(ctx, "loans.GetByID", false)
	if err != nil {
		return nil, err
	}
	defer release()

	l, ok := r.s.data.loans[id]
	if !ok {
		return nil, loanModel.ErrLoanNotFound
	}
	return &l, nil
}

func (r loanRepoImpl) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*loanModel.Loan, error) {
	release, err := r.s.begin(ctx, "loans.GetByIDForUpdate", false)
	if err != nil {
		return nil, err
	}
	defer release()

	l, ok := r.s.data.loans[id]
	if !ok {
		return nil, loanModel.ErrLoanNotFound
	}
	return &l, nil
}

func (r loanRepoImpl) UpdateStatus(ctx context.Context, id uuid.UUID, from, to loanModel.Status, at time.Time) error {
	release, err := r.s.begin(ctx, "loans.UpdateStatus", true)
	if err != nil {
		return err
	}
	defer release()

	if !from.CanTransitionTo(to) {
		return loanModel.ErrInvalidTransition
	}
	l, ok := r.s.data.loans[id]
	if !ok {
		return loanModel.ErrLoanNotFound
	}
	if l.Status != from {
		return loanModel.ErrInvalidTransition
	}
	l.Stamp(to, at)
	r.s.data.loans[id] = l
	return nil
}

func (r loanRepoImpl) HasOpenLoanForCopy(ctx context.Context, copyID uuid.UUID) (bool, error) {
	release, err := r.s.begin(ctx, "loans.HasOpenLoanForCopy", false)
	if err != nil {
		return false, err
	}
	defer release()

	for _, l := range r.s.data.loans {
		if l.CopyID == copyID && l.Status.IsOpen() {
			return true, nil
		}
	}
	return false, nil
}

func (r loanRepoImpl) ListByParticipant(ctx context.Context, memberID uuid.UUID, status *loanModel.Status) ([]loanModel.Loan, error) {
	release, err := r.s.begin(ctx, "loans.ListByParticipant", false)
	if err != nil {
		return nil, err
	}
	defer release()

	loans := make([]loanModel.Loan, 0)
	for _, l := range r.s.data.loans {
		if !l.IsParticipant(memberID) {
			continue
		}
		if status != nil && l.Status != *status {
			continue
		}
		loans = append(loans, l)
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].RequestedAt.After(loans[j].RequestedAt) })
	return loans, nil
}

// =====================================================
// NOTIFICATIONS
// =====================================================

type notificationRepoImpl struct{ s *Store }

func (r notificationRepoImpl) Append(ctx context.Context, n *notificationModel.Notification) error {
	release, err := r.s.begin(ctx, "notifications.Append", true)
	if err != nil {
		return err
	}
	defer release()

	n.CreatedAt = r.s.tick()
	r.s.data.notifications = append(r.s.data.notifications, *n)
	return nil
}

func (r notificationRepoImpl) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]notificationModel.Notification, error) {
	release, err := r.s.begin(ctx, "notifications.ListByUser", false)
	if err != nil {
		return nil, err
	}
	defer release()

	list := make([]notificationModel.Notification, 0)
	for i := len(r.s.data.notifications) - 1; i >= 0 && len(list) < limit; i-- {
		if n := r.s.data.notifications[i]; n.UserID == userID {
			list = append(list, n)
		}
	}
	return list, nil
}

func (r notificationRepoImpl) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	release, err := r.s.begin(ctx, "notifications.MarkRead", true)
	if err != nil {
		return err
	}
	defer release()

	for i, n := range r.s.data.notifications {
		if n.ID == id && n.UserID == userID {
			r.s.data.notifications[i].IsRead = true
			return nil
		}
	}
	return notificationModel.ErrNotificationNotFound
}

func (r notificationRepoImpl) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	release, err := r.s.begin(ctx, "notifications.MarkAllRead", true)
	if err != nil {
		return 0, err
	}
	defer release()

	var count int64
	for i, n := range r.s.data.notifications {
		if n.UserID == userID && !n.IsRead {
			r.s.data.notifications[i].IsRead = true
			count++
		}
	}
	return count, nil
}

// =====================================================
// BOOKS
// =====================================================

type bookRepo struct{ s *Store }

func cloneBook(b catalogModel.Book) catalogModel.Book {
	b.Genres = append(pq.StringArray(nil), b.Genres...)
	return b
}

func (r bookRepo) SearchText(ctx context.Context, query string, limit int) ([]catalogModel.Book, error) {
	release, err := r.s.begin(ctx, "books.SearchText", false)
	if err != nil {
		return nil, err
	}
	defer release()

	q := strings.ToLower(query)
	books := make([]catalogModel.Book, 0)
	for _, b := range r.s.data.books {
		if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q) {
			books = append(books, cloneBook(b))
		}
	}
	sort.Slice(books, func(i, j int) bool { return books[i].CreatedAt.Before(books[j].CreatedAt) })
	if len(books) > limit {
		books = books[:limit]
	}
	return books, nil
}

func (r bookRepo) GetByID(ctx context.Context, id uuid.UUID) (*catalogModel.Book, error) {
	release, err := r.s.begin(ctx, "books.GetByID", false)
	if err != nil {
		return nil, err
	}
	defer release()

	b, ok := r.s.data.books[id]
	if !ok {
		return nil, catalogModel.ErrBookNotFound
	}
	b = cloneBook(b)
	return &b, nil
}

func (r bookRepo) GetByISBN(ctx context.Context, isbn string) (*catalogModel.Book, error) {
	release, err := r.s.begin(ctx, "books.GetByISBN", false)
	if err != nil {
		return nil, err
	}
	defer release()

	if b, ok := r.s.findByISBN(isbn); ok {
		return &b, nil
	}
	return nil, catalogModel.ErrBookNotFound
}

func (s *Store) findByISBN(isbn string) (catalogModel.Book, bool) {
	for _, b := range s.data.books {
		if b.ISBN != nil && *b.ISBN == isbn {
			return cloneBook(b), true
		}
	}
	return catalogModel.Book{}, false
}

func (r bookRepo) Create(ctx context.Context, b *catalogModel.Book) (*catalogModel.Book, bool, error) {
	release, err := r.s.begin(ctx, "books.Create", true)
	if err != nil {
		return nil, false, err
	}
	defer release()

	if b.ISBN != nil {
		if existing, ok := r.s.findByISBN(*b.ISBN); ok {
			return &existing, false, nil
		}
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Genres == nil {
		b.Genres = pq.StringArray{}
	}
	at := r.s.tick()
	b.CreatedAt, b.UpdatedAt = at, at
	r.s.data.books[b.ID] = cloneBook(*b)
	return b, true, nil
}

func (r bookRepo) UpdateMetadata(ctx context.Context, b *catalogModel.Book) error {
	release, err := r.s.begin(ctx, "books.UpdateMetadata", true)
	if err != nil {
		return err
	}
	defer release()

	current, ok := r.s.data.books[b.ID]
	if !ok {
		return catalogModel.ErrBookNotFound
	}
	current.Author, current.Publisher, current.PublishedDate = b.Author, b.Publisher, b.PublishedDate
	current.Description, current.CoverURL, current.PageCount = b.Description, b.CoverURL, b.PageCount
	current.Genres = append(pq.StringArray{}, b.Genres...)
	current.UpdatedAt = r.s.tick()
	b.UpdatedAt = current.UpdatedAt
	r.s.data.books[b.ID] = current
	return nil
}

func (r bookRepo) ListIncomplete(ctx context.Context, limit int) ([]catalogModel.Book, error) {
	release, err := r.s.begin(ctx, "books.ListIncomplete", false)
	if err != nil {
		return nil, err
	}
	defer release()

	books := make([]catalogModel.Book, 0)
	for _, b := range r.s.data.books {
		if b.NeedsEnrichment() {
			books = append(books, cloneBook(b))
		}
	}
	sort.Slice(books, func(i, j int) bool { return books[i].UpdatedAt.Before(books[j].UpdatedAt) })
	if len(books) > limit {
		books = books[:limit]
	}
	return books, nil
}

// =====================================================
// MEMBERS / INVITATIONS
// =====================================================

type memberRepo struct{ s *Store }

func (r memberRepo) Create(ctx context.Context, m *accountModel.Member) error {
	release, err := r.s.begin(ctx, "members.Create", true)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := r.s.data.members[m.ID]; ok {
		return errDuplicateMember
	}
	m.CreatedAt = r.s.tick()
	r.s.data.members[m.ID] = *m
	return nil
}

func (r memberRepo) GetByID(ctx context.Context, id uuid.UUID) (*accountModel.Member, error) {
	release, err := r.s.begin(ctx, "members.GetByID", false)
	if err != nil {
		return nil, err
	}
	defer release()

	m, ok := r.s.data.members[id]
	if !ok {
		return nil, accountModel.ErrMemberNotFound
	}
	return &m, nil
}

type invitationRepo struct{ s *Store }

func (r invitationRepo) GetByCode(ctx context.Context, code string) (*accountModel.Invitation, error) {
	release, err := r.s.begin(ctx, "invitations.GetByCode", false)
	if err != nil {
		return nil, err
	}
	defer release()

	for _, inv := range r.s.data.invitations {
		if inv.Code == code {
			return &inv, nil
		}
	}
	return nil, accountModel.ErrInvalidInviteCode
}

func (r invitationRepo) Consume(ctx context.Context, id, memberID uuid.UUID, at time.Time) error {
	release, err := r.s.begin(ctx, "invitations.Consume", true)
	if err != nil {
		return err
	}
	defer release()

	inv, ok := r.s.data.invitations[id]
	if !ok || inv.UsedBy != nil || !at.Before(inv.ExpiresAt) {
		return accountModel.ErrInvalidInviteCode
	}
	inv.UsedBy, inv.UsedAt = &memberID, &at
	r.s.data.invitations[id] = inv
	return nil
}

// =====================================================
// REVIEWS
// =====================================================

type reviewRepoImpl struct{ s *Store }

func (r reviewRepoImpl) Create(ctx context.Context, review *reviewModel.Review) error {
	release, err := r.s.begin(ctx, "reviews.Create", true)
	if err != nil {
		return err
	}
	defer release()

	// reviews_book_id_fkey
	if _, ok := r.s.data.books[review.BookID]; !ok {
		return reviewModel.ErrBookNotFound
	}
	at := r.s.tick()
	review.CreatedAt, review.UpdatedAt = at, at
	r.s.data.reviews[review.ID] = *review
	return nil
}

func (r reviewRepoImpl) GetByID(ctx context.Context, id uuid.UUID) (*reviewModel.Review, error) {
	release, err := r.s.begin(ctx, "reviews.GetByID", false)
	if err != nil {
		return nil, err
	}
	defer release()

	review, ok := r.s.data.reviews[id]
	if !ok {
		return nil, reviewModel.ErrReviewNotFound
	}
	return &review, nil
}

func (r reviewRepoImpl) Update(ctx context.Context, review *reviewModel.Review) error {
	release, err := r.s.begin(ctx, "reviews.Update", true)
	if err != nil {
		return err
	}
	defer release()

	current, ok := r.s.data.reviews[review.ID]
	if !ok || current.UserID != review.UserID {
		return reviewModel.ErrReviewNotFound
	}
	current.Rating, current.Body, current.ReadAt, current.Visibility = review.Rating, review.Body, review.ReadAt, review.Visibility
	current.UpdatedAt = r.s.tick()
	review.UpdatedAt = current.UpdatedAt
	r.s.data.reviews[review.ID] = current
	return nil
}

func (r reviewRepoImpl) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	release, err := r.s.begin(ctx, "reviews.Delete", true)
	if err != nil {
		return err
	}
	defer release()

	current, ok := r.s.data.reviews[id]
	if !ok || current.UserID != authorID {
		return reviewModel.ErrReviewNotFound
	}
	delete(r.s.data.reviews, id)
	return nil
}

func (r reviewRepoImpl) ListByBook(ctx context.Context, bookID, viewerID uuid.UUID) ([]reviewModel.ReviewView, error) {
	release, err := r.s.begin(ctx, "reviews.ListByBook", false)
	if err != nil {
		return nil, err
	}
	defer release()

	return r.views(-1, func(review reviewModel.Review) bool {
		if review.BookID != bookID {
			return false
		}
		return review.Visibility != reviewModel.VisibilityPrivate || review.UserID == viewerID
	}), nil
}

func (r reviewRepoImpl) Feed(ctx context.Context, limit int) ([]reviewModel.ReviewView, error) {
	release, err := r.s.begin(ctx, "reviews.Feed", false)
	if err != nil {
		return nil, err
	}
	defer release()

	return r.views(limit, func(review reviewModel.Review) bool {
		return review.Visibility == reviewModel.VisibilityPublic || review.Visibility == reviewModel.VisibilityCommunity
	}), nil
}

// views join members + books, mới nhất trước. limit < 0 = không giới hạn.
func (r reviewRepoImpl) views(limit int, keep func(reviewModel.Review) bool) []reviewModel.ReviewView {
	views := make([]reviewModel.ReviewView, 0)
	for _, review := range r.s.data.reviews {
		if !keep(review) {
			continue
		}
		views = append(views, reviewModel.ReviewView{
			Review:     review,
			AuthorName: r.s.data.members[review.UserID].DisplayName,
			BookTitle:  r.s.data.books[review.BookID].Title,
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].CreatedAt.After(views[j].CreatedAt) })
	if limit >= 0 && len(views) > limit {
		views = views[:limit]
	}
	return views
}
