package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
)

func (q *Queries) CreateReview(ctx context.Context, review *model.Review) error {
	return q.db.WithContext(ctx).Create(review).Error
}

func (q *Queries) GetReview(ctx context.Context, id int64) (*model.Review, error) {
	var review model.Review
	err := q.db.WithContext(ctx).Where("id = ?", id).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

// Read - 商品評論, 新到舊
func (q *Queries) ListReviewsByProduct(ctx context.Context, productID int64) ([]model.Review, error) {
	reviews := []model.Review{}
	err := q.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	return reviews, err
}

func (q *Queries) DeleteReview(ctx context.Context, id int64) error {
	res := q.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}
