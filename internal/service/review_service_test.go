package service

import (
	"context"
	"strings"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/authz"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db/dbtest"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ReviewServiceTestSuite struct {
	suite.Suite
	store   *db.Store
	dao     *db.DbDao
	reviews *ReviewService
	p1      int64
}

func (suite *ReviewServiceTestSuite) SetupTest() {
	suite.store, suite.dao = dbtest.NewStore(suite.T())
	dbtest.SeedUser(suite.T(), suite.store, "alice", model.RoleUser)
	dbtest.SeedUser(suite.T(), suite.store, "bob", model.RoleUser)
	dbtest.SeedUser(suite.T(), suite.store, "root", model.RoleAdmin)
	suite.p1 = dbtest.SeedProduct(suite.T(), suite.dao, "p1", "10.00", 5)
	suite.reviews = NewReviewService(suite.store)
}

func (suite *ReviewServiceTestSuite) TestAddAndListNewestFirst() {
	ctx := context.Background()

	first, err := suite.reviews.Add(ctx, alice, suite.p1, "  good  ")
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "good", first.Content)
	require.False(suite.T(), first.CreatedAt.IsZero())

	second, err := suite.reviews.Add(ctx, bob, suite.p1, "better")
	require.NoError(suite.T(), err)

	list, err := suite.reviews.List(ctx, suite.p1)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), list, 2)
	require.Equal(suite.T(), second.ID, list[0].ID)
	require.Equal(suite.T(), first.ID, list[1].ID)
}

func (suite *ReviewServiceTestSuite) TestAddValidation() {
	ctx := context.Background()

	_, err := suite.reviews.Add(ctx, alice, suite.p1, "   ")
	require.True(suite.T(), apperr.IsCode(err, apperr.ValidationCode))

	_, err = suite.reviews.Add(ctx, alice, suite.p1, strings.Repeat("a", maxReviewLength+1))
	require.True(suite.T(), apperr.IsCode(err, apperr.ValidationCode))

	_, err = suite.reviews.Add(ctx, alice, 9999, "hello")
	require.True(suite.T(), apperr.IsCode(err, apperr.NotFoundCode))
}

func (suite *ReviewServiceTestSuite) TestDeleteAuthorization() {
	ctx := context.Background()

	review, err := suite.reviews.Add(ctx, alice, suite.p1, "mine")
	require.NoError(suite.T(), err)

	err = suite.reviews.Delete(ctx, review.ID, bob)
	require.True(suite.T(), apperr.IsCode(err, apperr.ForbiddenCode))

	require.NoError(suite.T(), suite.reviews.Delete(ctx, review.ID, alice))

	err = suite.reviews.Delete(ctx, review.ID, alice)
	require.True(suite.T(), apperr.IsCode(err, apperr.NotFoundCode))
}

func (suite *ReviewServiceTestSuite) TestAdminCanDeleteAnyReview() {
	ctx := context.Background()

	review, err := suite.reviews.Add(ctx, bob, suite.p1, "spam")
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.reviews.Delete(ctx, review.ID, root))
	list, err := suite.reviews.List(ctx, suite.p1)
	require.NoError(suite.T(), err)
	require.Empty(suite.T(), list)
	require.EqualValues(suite.T(), 1, dbtest.Count(suite.T(), suite.dao, "outbox_events"))
}

func (suite *ReviewServiceTestSuite) TestAddForUnknownUser() {
	carol := authz.Identity{Username: "carol", Role: model.RoleUser}

	_, err := suite.reviews.Add(context.Background(), carol, suite.p1, "hello")
	require.True(suite.T(), apperr.IsCode(err, apperr.NotFoundCode), "%v", err)
	require.ErrorIs(suite.T(), err, ErrUserNotFound)
	require.Zero(suite.T(), dbtest.Count(suite.T(), suite.dao, "reviews"))
}

func TestReviewServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReviewServiceTestSuite))
}
