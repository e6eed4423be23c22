package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"books-commons/internal/domains/loan/model"
	"books-commons/internal/domains/loan/repository"
	notificationModel "books-commons/internal/domains/notification/model"
	shelfModel "books-commons/internal/domains/shelf/model"
	"books-commons/internal/infrastructure/metrics"
	"books-commons/internal/shared/apperror"
	"books-commons/pkg/database"
)

type loanService struct {
	tx            database.Transactor
	loans         repository.Repository
	copies        CopyStore
	notifications NotificationSink
	now           func() time.Time
}

func NewLoanService(
	tx database.Transactor,
	loans repository.Repository,
	copies CopyStore,
	notifications NotificationSink,
) Service {
	return &loanService{
		tx:            tx,
		loans:         loans,
		copies:        copies,
		notifications: notifications,
		now:           time.Now,
	}
}

// =====================================================
// REQUEST
// =====================================================

// RequestLoan tạo loan `requested` và báo cho owner.
// Copy được lock FOR UPDATE để re-validate status trong cùng transaction.
func (s *loanService) RequestLoan(ctx context.Context, borrowerID uuid.UUID, req model.CreateLoanRequest) (*model.Loan, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}
	copyID := uuid.MustParse(req.CopyID)

	loan, err := database.WithTransactionResult(ctx, s.tx, func(ctx context.Context) (*model.Loan, error) {
		c, err := s.copies.GetByIDForUpdate(ctx, copyID)
		if err != nil {
			return nil, err
		}
		// copy private không tồn tại đối với người khác
		if !c.VisibleTo(borrowerID) {
			return nil, shelfModel.ErrCopyNotFound
		}
		if c.OwnerID == borrowerID {
			return nil, model.ErrSelfLoan
		}
		if c.Status != shelfModel.StatusAvailable {
			return nil, model.ErrCopyUnavailable
		}

		open, err := s.loans.HasOpenLoanForCopy(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if open {
			return nil, model.ErrCopyAlreadyPending
		}

		loan := &model.Loan{
			ID:         uuid.New(),
			CopyID:     c.ID,
			BorrowerID: borrowerID,
			OwnerID:    c.OwnerID,
			Status:     model.StatusRequested,
		}
		if req.Message != nil {
			loan.Message = strings.TrimSpace(*req.Message)
		}
		if err := s.loans.Create(ctx, loan); err != nil {
			return nil, err
		}

		n := notificationModel.New(c.OwnerID, notificationModel.TypeLoanRequest, loan.ID, notificationModel.MessageLoanRequest)
		if err := s.notifications.Append(ctx, n); err != nil {
			return nil, fmt.Errorf("append loan_request notification: %w", err)
		}
		return loan, nil
	})
	metrics.LoanTransitionsTotal.WithLabelValues("request", outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("loan_id", loan.ID.String()).
		Str("copy_id", loan.CopyID.String()).
		Str("borrower_id", borrowerID.String()).
		Msg("Loan requested")
	return loan, nil
}

// =====================================================
// TRANSITIONS
// =====================================================

func (s *loanService) Approve(ctx context.Context, actorID, loanID uuid.UUID) (*model.Loan, error) {
	return s.transition(ctx, actorID, loanID, model.TransitionApprove)
}

func (s *loanService) Reject(ctx context.Context, actorID, loanID uuid.UUID) (*model.Loan, error) {
	return s.transition(ctx, actorID, loanID, model.TransitionReject)
}

// Handover: loan approved -> active và copy available -> lent_out, cùng một transaction
func (s *loanService) Handover(ctx context.Context, actorID, loanID uuid.UUID) (*model.Loan, error) {
	return s.transition(ctx, actorID, loanID, model.TransitionHandover)
}

// Return: loan active -> returned, copy lent_out -> available, notification cho borrower.
// Copy update fail thì rollback toàn bộ.
func (s *loanService) Return(ctx context.Context, actorID, loanID uuid.UUID) (*model.Loan, error) {
	return s.transition(ctx, actorID, loanID, model.TransitionReturn)
}

// transition - lock loan, kiểm tra quyền rồi precondition trên giá trị vừa đọc,
// conditional update, sau đó là side effects (copy status, notification).
// Lock order: loan -> copy.
func (s *loanService) transition(ctx context.Context, actorID, loanID uuid.UUID, t model.Transition) (*model.Loan, error) {
	loan, err := database.WithTransactionResult(ctx, s.tx, func(ctx context.Context) (*model.Loan, error) {
		loan, err := s.loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return nil, err
		}
		if !loan.IsParticipant(actorID) {
			return nil, model.ErrLoanNotFound
		}
		if loan.OwnerID != actorID {
			return nil, model.ErrNotCopyOwner
		}
		if !t.AllowedFrom(loan.Status) {
			return nil, model.InvalidTransition(t, loan.Status)
		}

		at := s.now().UTC()
		if err := s.loans.UpdateStatus(ctx, loan.ID, loan.Status, t.To(), at); err != nil {
			return nil, err
		}
		loan.Stamp(t.To(), at)

		if err := s.applyCopyEffect(ctx, loan, t); err != nil {
			return nil, err
		}
		if err := s.notify(ctx, loan, t); err != nil {
			return nil, err
		}
		return loan, nil
	})
	metrics.LoanTransitionsTotal.WithLabelValues(string(t), outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("loan_id", loan.ID.String()).
		Str("transition", string(t)).
		Str("status", loan.Status.String()).
		Msg("Loan transitioned")
	return loan, nil
}

// applyCopyEffect - chỉ handover và return được chạm vào lent_out
func (s *loanService) applyCopyEffect(ctx context.Context, loan *model.Loan, t model.Transition) error {
	var from, to shelfModel.CopyStatus
	switch t {
	case model.TransitionHandover:
		from, to = shelfModel.StatusAvailable, shelfModel.StatusLentOut
	case model.TransitionReturn:
		from, to = shelfModel.StatusLentOut, shelfModel.StatusAvailable
	default:
		return nil
	}

	if _, err := s.copies.GetByIDForUpdate(ctx, loan.CopyID); err != nil {
		return fmt.Errorf("lock copy %s: %w", loan.CopyID, err)
	}
	if err := s.copies.UpdateStatus(ctx, loan.CopyID, from, to); err != nil {
		return fmt.Errorf("set copy %s %s: %w", loan.CopyID, to, err)
	}
	return nil
}

func (s *loanService) notify(ctx context.Context, loan *model.Loan, t model.Transition) error {
	var (
		typ     notificationModel.Type
		message string
	)
	switch t {
	case model.TransitionApprove:
		typ, message = notificationModel.TypeLoanApproved, notificationModel.MessageLoanApproved
	case model.TransitionReject:
		typ, message = notificationModel.TypeLoanRejected, notificationModel.MessageLoanRejected
	case model.TransitionReturn:
		typ, message = notificationModel.TypeLoanReturned, notificationModel.MessageLoanReturned
	default:
		// handover: không gửi notification
		return nil
	}

	n := notificationModel.New(loan.BorrowerID, typ, loan.ID, message)
	if err := s.notifications.Append(ctx, n); err != nil {
		return fmt.Errorf("append %s notification: %w", typ, err)
	}
	return nil
}

// =====================================================
// QUERIES
// =====================================================

// Get - chỉ borrower và owner thấy loan
func (s *loanService) Get(ctx context.Context, actorID, loanID uuid.UUID) (*model.Loan, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.IsParticipant(actorID) {
		return nil, model.ErrLoanNotFound
	}
	return loan, nil
}

func (s *loanService) ListMine(ctx context.Context, actorID uuid.UUID, status *model.Status) ([]model.Loan, error) {
	if status != nil && !status.IsValid() {
		return nil, apperror.Validation(errors.New("status: must be one of requested, approved, active, returned, rejected"))
	}
	return s.loans.ListByParticipant(ctx, actorID, status)
}

// outcome - label cho metrics
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return strings.ToLower(string(apperror.KindOf(err)))
}
