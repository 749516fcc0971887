package repository

import (
	"context"
	"testing"

	"rental-backend/internal/models"
	"rental-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBookingsListByUser(t *testing.T) {
	db := testutil.OpenDB(t)
	f := testutil.Seed(t, db)
	bookings := NewBookingReader(db)

	list, err := bookings.ListByUser(context.Background(), f.Member.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, f.Booking.ID, list[0].ID)
	assert.Equal(t, "Harbour Loft", list[0].Property.Title)

	list, err = bookings.ListByUser(context.Background(), f.Other.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestFavorites(t *testing.T) {
	db := testutil.OpenDB(t)
	f := testutil.Seed(t, db)
	favorites := NewFavoriteReader(db)
	ctx := context.Background()

	list, err := favorites.ListByUser(ctx, f.Member.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Harbour Loft", list[0].Property.Title)

	fav, ok, err := favorites.FindPair(ctx, f.Member.ID, f.Loft.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, f.Favorite.ID, fav.ID)

	fav, ok, err = favorites.FindPair(ctx, f.Member.ID, f.Cabin.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, fav)
}

func TestPropertiesListByStatus(t *testing.T) {
	db := testutil.OpenDB(t)
	f := testutil.Seed(t, db)
	props := NewPropertyReader(db)

	all, err := props.ListByStatus(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	available, err := props.ListByStatus(context.Background(), models.PropertyAvailable)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, f.Loft.ID, available[0].ID)
}

func TestReviewsListByProperty(t *testing.T) {
	db := testutil.OpenDB(t)
	f := testutil.Seed(t, db)

	list, err := NewReviewReader(db).ListByProperty(context.Background(), f.Loft.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Mel Member", list[0].User.Name)
	assert.Equal(t, 5, list[0].Rating)
}

func TestFavoritesFindPairInTransaction(t *testing.T) {
	db := testutil.OpenDB(t)
	f := testutil.Seed(t, db)
	favorites := NewFavoriteReader(db)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		fav := models.Favorite{UserID: f.Other.ID, PropertyID: f.Cabin.ID}
		require.NoError(t, tx.Omit("Property").Create(&fav).Error)

		got, found, err := favorites.In(tx).FindPair(ctx, f.Other.ID, f.Cabin.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, fav.ID, got.ID)
		return nil
	})
	require.NoError(t, err)
}
