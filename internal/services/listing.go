package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"coinledger/internal/db"
	"coinledger/internal/models"
	"coinledger/internal/policy"
	"coinledger/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type ListingStore interface {
	Create(ctx context.Context, tx store.Execer, id, sellerID, title string, price int64) error
	GetForUpdate(ctx context.Context, tx store.Getter, id string) (models.Listing, error)
	MarkSold(ctx context.Context, tx store.Execer, id string) error
	SetBoost(ctx context.Context, tx store.Execer, id, tier string, expiresAt time.Time) error
}

// Listings drives the coin-costing listing workflows. Creation and boosting
// are cost-gated; the sale fee is charged unconditionally, even into a
// negative balance, because a completed real-world sale is never reversed
// for a coin shortfall.
type Listings struct {
	txRunner   db.TxRunner
	listings   ListingStore
	ledger     *Ledger
	feePercent decimal.Decimal
}

func NewListings(txRunner db.TxRunner, listings ListingStore, ledger *Ledger, feePercent decimal.Decimal) *Listings {
	return &Listings{
		txRunner:   txRunner,
		listings:   listings,
		ledger:     ledger,
		feePercent: feePercent,
	}
}

type ListingResult struct {
	ListingID   string                 `json:"listing_id"`
	Transaction models.CoinTransaction `json:"transaction"`
}

func (s *Listings) CreateListing(ctx context.Context, sellerID, title string, price int64) (ListingResult, error) {
	started := time.Now()
	listingID := uuid.NewString()
	var charged models.CoinTransaction
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.listings.Create(ctx, tx, listingID, sellerID, title, price); err != nil {
			return err
		}
		var err error
		charged, err = s.ledger.CreateTransactionTx(ctx, tx, CreateTransactionRequest{
			UserID:                   sellerID,
			Type:                     models.TypeSpend,
			Amount:                   policy.ListingCost,
			Reason:                   models.ReasonCreateListing,
			Description:              fmt.Sprintf("Listing fee for %q", title),
			RelatedProductID:         &listingID,
			RequireSufficientBalance: true,
		})
		return err
	})
	if err != nil {
		return ListingResult{}, err
	}
	s.ledger.published(charged, time.Since(started))
	return ListingResult{ListingID: listingID, Transaction: charged}, nil
}

func (s *Listings) BoostListing(ctx context.Context, sellerID, listingID, tierName string) (ListingResult, error) {
	started := time.Now()
	tier, ok := policy.BoostTierByName(tierName)
	if !ok {
		return ListingResult{}, ErrUnknownBoostTier
	}
	var charged models.CoinTransaction
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		listing, err := s.listings.GetForUpdate(ctx, tx, listingID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrListingNotFound
			}
			return err
		}
		if listing.SellerID != sellerID {
			return ErrNotListingOwner
		}
		if listing.Status != models.ListingStatusActive {
			return ErrListingNotActive
		}
		charged, err = s.ledger.CreateTransactionTx(ctx, tx, CreateTransactionRequest{
			UserID:                   sellerID,
			Type:                     models.TypeSpend,
			Amount:                   tier.Cost,
			Reason:                   models.ReasonBoostListing,
			Description:              fmt.Sprintf("%s boost for %q", tier.Name, listing.Title),
			RelatedProductID:         &listingID,
			Metadata:                 map[string]string{"boost_tier": tier.Name},
			RequireSufficientBalance: true,
		})
		if err != nil {
			return err
		}
		expiresAt := time.Now().UTC().AddDate(0, 0, tier.DurationDays)
		return s.listings.SetBoost(ctx, tx, listingID, tier.Name, expiresAt)
	})
	if err != nil {
		return ListingResult{}, err
	}
	s.ledger.published(charged, time.Since(started))
	return ListingResult{ListingID: listingID, Transaction: charged}, nil
}

type SaleResult struct {
	ListingID      string                  `json:"listing_id"`
	Fee            int64                   `json:"fee"`
	FeeTransaction *models.CoinTransaction `json:"fee_transaction,omitempty"`
}

// MarkSold closes a listing and charges the seller the sale fee exactly
// once. The fee-applied flag is read under the listing row lock in the same
// transaction that charges the fee, so a second sale attempt can never
// double-charge. The charge itself is never balance-gated.
func (s *Listings) MarkSold(ctx context.Context, actorID, listingID string, actorIsAdmin bool) (SaleResult, error) {
	started := time.Now()
	var result SaleResult
	var charged models.CoinTransaction
	var feeCharged bool
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		feeCharged = false
		listing, err := s.listings.GetForUpdate(ctx, tx, listingID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrListingNotFound
			}
			return err
		}
		if listing.SellerID != actorID && !actorIsAdmin {
			return ErrNotListingOwner
		}
		if listing.Status != models.ListingStatusActive {
			return ErrListingNotActive
		}
		result = SaleResult{ListingID: listingID}
		if !listing.FeeApplied {
			fee := policy.SaleFee(listing.Price, s.feePercent)
			if fee > 0 {
				charged, err = s.ledger.CreateTransactionTx(ctx, tx, CreateTransactionRequest{
					UserID:           listing.SellerID,
					Type:             models.TypeSpend,
					Amount:           fee,
					Reason:           models.ReasonTransactionFee,
					Description:      fmt.Sprintf("Sale fee for %q", listing.Title),
					RelatedProductID: &listingID,
					Metadata:         map[string]string{"sale_price": fmt.Sprintf("%d", listing.Price)},
				})
				if err != nil {
					return err
				}
				feeCharged = true
				result.Fee = fee
			}
		}
		return s.listings.MarkSold(ctx, tx, listingID)
	})
	if err != nil {
		return SaleResult{}, err
	}
	if feeCharged {
		s.ledger.published(charged, time.Since(started))
		result.FeeTransaction = &charged
	}
	return result, nil
}
