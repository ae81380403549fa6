package store

import (
	"context"
	"time"

	"coinledger/internal/models"
)

type ListingStore struct {
	db DB
}

func NewListingStore(db DB) *ListingStore {
	return &ListingStore{db: db}
}

func (s *ListingStore) Create(ctx context.Context, tx Execer, id, sellerID, title string, price int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO listings (id, seller_id, title, price, status)
		VALUES ($1, $2, $3, $4, $5)
	`, id, sellerID, title, price, models.ListingStatusActive)
	return err
}

const listingColumns = `
	id, seller_id, title, price, status, is_boosted, boost_tier,
	boost_expires_at, fee_applied, created_at`

func (s *ListingStore) GetByID(ctx context.Context, id string) (models.Listing, error) {
	var row models.Listing
	err := s.db.GetContext(ctx, &row, `
		SELECT `+listingColumns+`
		FROM listings
		WHERE id = $1
	`, id)
	if err != nil {
		return models.Listing{}, err
	}
	return row, nil
}

// GetForUpdate locks the listing row. The one-shot fee flag check and the
// fee charge must happen under this lock.
func (s *ListingStore) GetForUpdate(ctx context.Context, tx Getter, id string) (models.Listing, error) {
	var row models.Listing
	err := tx.GetContext(ctx, &row, `
		SELECT `+listingColumns+`
		FROM listings
		WHERE id = $1
		FOR UPDATE
	`, id)
	if err != nil {
		return models.Listing{}, err
	}
	return row, nil
}

func (s *ListingStore) MarkSold(ctx context.Context, tx Execer, id string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE listings
		SET status = $1, fee_applied = TRUE
		WHERE id = $2
	`, models.ListingStatusSold, id)
	return err
}

func (s *ListingStore) SetBoost(ctx context.Context, tx Execer, id, tier string, expiresAt time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE listings
		SET is_boosted = TRUE, boost_tier = $1, boost_expires_at = $2
		WHERE id = $3
	`, tier, expiresAt.UTC(), id)
	return err
}

func (s *ListingStore) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]models.Listing, error) {
	var rows []models.Listing
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+listingColumns+`
		FROM listings
		WHERE seller_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, sellerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
