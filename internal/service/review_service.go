package service

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/RoyceAzure/lab/storefront/internal/authz"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/rs/zerolog/log"
)

const maxReviewLength = 4000

var (
	ErrEmptyReview   = apperr.New(apperr.ValidationCode, "review content is required")
	ErrReviewTooLong = apperr.Newf(apperr.ValidationCode, "review content exceeds %d characters", maxReviewLength)
)

type IReviewService interface {
	Add(ctx context.Context, caller authz.Identity, productID int64, content string) (*model.Review, error)
	List(ctx context.Context, productID int64) ([]model.Review, error)
	Delete(ctx context.Context, reviewID int64, caller authz.Identity) error
}

type ReviewService struct {
	store db.IStore
}

func NewReviewService(store db.IStore) *ReviewService {
	if store == nil {
		panic("review service dependency store is nil")
	}
	return &ReviewService{store: store}
}

// Add 新增評論, 時間由伺服器決定
// 錯誤:
//   - ValidationCode: 內容為空或過長
//   - NotFoundCode: 商品或呼叫者不存在
func (r *ReviewService) Add(ctx context.Context, caller authz.Identity, productID int64, content string) (*model.Review, error) {
	if caller.IsZero() {
		return nil, ErrForbidden
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyReview
	}
	if utf8.RuneCountInString(content) > maxReviewLength {
		return nil, ErrReviewTooLong
	}

	review := &model.Review{
		Username:  caller.Username,
		ProductID: productID,
		Content:   content,
	}
	err := r.store.ExecTx(ctx, func(q *db.Queries) error {
		if _, err := q.GetProduct(ctx, productID); err != nil {
			return err
		}
		return q.CreateReview(ctx, review)
	})
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrUserNotFound
		}
		return nil, toAppErr(err)
	}
	return review, nil
}

// List 新到舊
func (r *ReviewService) List(ctx context.Context, productID int64) ([]model.Review, error) {
	reviews, err := r.store.ListReviewsByProduct(ctx, productID)
	if err != nil {
		return nil, toAppErr(err)
	}
	return reviews, nil
}

// Delete 作者或管理員可刪除
// 錯誤:
//   - NotFoundCode: 評論不存在
//   - ForbiddenCode: 非作者且非管理員
func (r *ReviewService) Delete(ctx context.Context, reviewID int64, caller authz.Identity) error {
	err := r.store.ExecTx(ctx, func(q *db.Queries) error {
		review, err := q.GetReview(ctx, reviewID)
		if err != nil {
			return err
		}
		if !authz.CanDeleteReview(caller, *review) {
			return ErrForbidden
		}
		if err := q.DeleteReview(ctx, review.ID); err != nil {
			return err
		}
		return q.InsertOutboxEvent(ctx, &event.ReviewDeletedEvent{
			BaseEvent: event.NewBaseEvent(event.ReviewDeletedEventName, strconv.FormatInt(review.ProductID, 10)),
			ReviewID:  review.ID,
			ProductID: review.ProductID,
			DeletedBy: caller.Username,
		})
	})
	if err != nil {
		return toAppErr(err)
	}
	log.Info().Int64("review_id", reviewID).Str("by", caller.Username).Msg("review deleted")
	return nil
}

var _ IReviewService = (*ReviewService)(nil)
