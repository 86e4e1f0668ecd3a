package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"bidsmart-backend/internal/logger"
	"bidsmart-backend/internal/models"
	"bidsmart-backend/internal/supabase"
)

// maxBidReads bounds concurrent detail reads per request.
const maxBidReads = 4

type BidService struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

func NewBidService(store Store, log *logger.Logger) *BidService {
	return &BidService{store: store, log: log.With("service", "BidService"), now: time.Now}
}

// ProjectBids loads every bid of a project together with its children.
// Bid order follows ListBidsByProject.
func (s *BidService) ProjectBids(ctx context.Context, projectID uuid.UUID) ([]models.BidDetail, error) {
	bids, err := s.store.ListBidsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	details := make([]models.BidDetail, len(bids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxBidReads)
	for i := range bids {
		i := i
		g.Go(func() error {
			d, err := s.detail(gctx, bids[i])
			if err != nil {
				return fmt.Errorf("bid %s: %w", bids[i].ID, err)
			}
			details[i] = *d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}

func (s *BidService) detail(ctx context.Context, bid models.ContractorBid) (*models.BidDetail, error) {
	d := &models.BidDetail{ContractorBid: bid}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.LineItems, err = s.store.ListLineItems(gctx, bid.ID)
		return err
	})
	g.Go(func() (err error) {
		d.Equipment, err = s.store.ListEquipment(gctx, bid.ID)
		return err
	})
	g.Go(func() (err error) {
		d.Faqs, err = s.store.ListFaqs(gctx, bid.ID)
		return err
	})
	g.Go(func() (err error) {
		d.Questions, err = s.store.ListQuestions(gctx, bid.ID)
		return err
	})
	g.Go(func() (err error) {
		d.Score, err = s.store.GetBidScore(gctx, bid.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateBid applies the user flags to a bid the user owns through its project.
func (s *BidService) UpdateBid(ctx context.Context, userID, bidID uuid.UUID, req models.UpdateBidRequest) (*models.ContractorBid, error) {
	bid, err := s.store.GetBid(ctx, bidID)
	if err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBidNotFound, bidID)
		}
		return nil, err
	}
	if _, err := s.store.GetProject(ctx, bid.ProjectID, userID); err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBidNotFound, bidID)
		}
		return nil, err
	}

	if req.IsFavorite == nil && req.VerifiedByUser == nil {
		return bid, nil
	}
	at := s.now().UTC()
	if err := s.store.UpdateBidFlags(ctx, bid.ID, req.IsFavorite, req.VerifiedByUser, at); err != nil {
		return nil, err
	}

	if req.IsFavorite != nil {
		bid.IsFavorite = *req.IsFavorite
	}
	if req.VerifiedByUser != nil {
		bid.VerifiedByUser = *req.VerifiedByUser
		if bid.VerifiedByUser {
			bid.VerifiedAt = &at
		} else {
			bid.VerifiedAt = nil
		}
	}
	s.log.Info("bid updated", "bid_id", bid.ID, "user_id", userID)
	return bid, nil
}
