package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant_manager/constants"
	"restaurant_manager/model"
	"restaurant_manager/repository"

	"github.com/gosimple/slug"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const maxCodeAttempts = 20

// EligibilityFunc quyết định khách có được áp dụng chiến dịch hay không.
type EligibilityFunc func(customerID uint, c model.PromotionalCampaign) bool

// EveryoneEligible: điều kiện dạng text của chiến dịch chưa được đánh giá.
func EveryoneEligible(uint, model.PromotionalCampaign) bool { return true }

type CampaignSelector struct {
	store    repository.Store
	clock    clockwork.Clock
	log      *zap.Logger
	Eligible EligibilityFunc
}

func NewCampaignSelector(store repository.Store, clock clockwork.Clock, log *zap.Logger) *CampaignSelector {
	return &CampaignSelector{store: store, clock: clock, log: log, Eligible: EveryoneEligible}
}

// BestMultiplier là hệ số lớn nhất trong các chiến dịch đang chạy tại now, mặc định 1.0.
func (s *CampaignSelector) BestMultiplier(ctx context.Context, customerID uint, now time.Time) (float64, error) {
	campaigns, err := s.store.Campaigns().FindActive(ctx, now)
	if err != nil {
		return 1, err
	}
	best := 1.0
	for _, c := range campaigns {
		if !c.IsActive(now) || !s.eligible(customerID, c) {
			continue
		}
		if c.BonusMultiplier > best {
			best = c.BonusMultiplier
		}
	}
	return best, nil
}

func (s *CampaignSelector) eligible(customerID uint, c model.PromotionalCampaign) bool {
	if s.Eligible == nil {
		return true
	}
	return s.Eligible(customerID, c)
}

func (s *CampaignSelector) CreateCampaign(ctx context.Context, input model.CreateCampaignInput) (*model.PromotionalCampaign, error) {
	if input.BonusMultiplier <= 1 {
		return nil, fmt.Errorf("bonus multiplier must be greater than 1: %w", ErrInvalidInput)
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, fmt.Errorf("end date before start date: %w", ErrInvalidInput)
	}
	campaign := &model.PromotionalCampaign{
		Name:            input.Name,
		Description:     input.Description,
		BonusMultiplier: input.BonusMultiplier,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Conditions:      input.Conditions,
		Status:          constants.STATUS_ACTIVE,
	}
	// mã trùng thì thêm hậu tố -1, -2, ...
	base := strings.ToUpper(slug.Make(input.Name + " " + input.StartDate.Format("2006-01-02")))
	for i := 0; ; i++ {
		campaign.Code = base
		if i > 0 {
			campaign.Code = fmt.Sprintf("%s-%d", base, i)
		}
		err := s.store.Campaigns().Create(ctx, campaign)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
		if i >= maxCodeAttempts {
			return nil, fmt.Errorf("campaign %s: %w", base, ErrStorageConflict)
		}
	}
	s.log.Info("campaign created", zap.String("code", campaign.Code), zap.Float64("multiplier", campaign.BonusMultiplier))
	return campaign, nil
}

func (s *CampaignSelector) ListCampaigns(ctx context.Context, activeOnly bool) ([]model.PromotionalCampaign, error) {
	if activeOnly {
		return s.store.Campaigns().FindActive(ctx, s.clock.Now())
	}
	return s.store.Campaigns().List(ctx)
}
