// Package admin is the merchant marketplace back office: the approval
// queue, the sponsor directory, revenue figures and integrity reports.
package admin

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/nearby/internal/domain"
	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/metrics"
)

const (
	DefaultBid      domain.Bid = 1.50
	DefaultCategory            = "Food & Drink"

	// SubscriptionPrice is the monthly verification fee per active merchant.
	SubscriptionPrice = 29.99
)

var (
	ErrMerchantNotFound = errors.New("merchant not found")
	ErrInvalidMerchant  = errors.New("invalid merchant")
)

type MerchantRepo interface {
	List(ctx context.Context) ([]domain.MerchantRequest, error)
	Save(ctx context.Context, list []domain.MerchantRequest) error
}

type ReportRepo interface {
	List(ctx context.Context) ([]domain.Report, error)
	Resolve(ctx context.Context, id string) (domain.Report, error)
}

type InsightsRepo interface {
	Get(ctx context.Context) (domain.UsageInsights, error)
}

// NewMerchant is the add-merchant form as submitted.
type NewMerchant struct {
	BusinessName string `json:"businessName"`
	Category     string `json:"category"`
	Bid          string `json:"bid"`
}

type Stats struct {
	DailyRevenue           float64 `json:"dailyRevenue"`
	MonthlySubscriptionRev float64 `json:"monthlySubscriptionRev"`
	Active                 int     `json:"active"`
	Pending                int     `json:"pending"`
}

type Service struct {
	merchants MerchantRepo
	reports   ReportRepo
	insights  InsightsRepo
	logger    logger.Logger
	now       func() time.Time
	newID     func() string
}

func NewService(m MerchantRepo, r ReportRepo, i InsightsRepo, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		merchants: m,
		reports:   r,
		insights:  i,
		logger:    log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// CheckPasskey compares in constant time. The shared secret keeps casual
// visitors out of the back office; it is not an authentication system.
func CheckPasskey(expected, got string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}

// Merchants lists the directory, optionally filtered by a case-insensitive
// substring of the business name.
func (s *Service) Merchants(ctx context.Context, filter string) ([]domain.MerchantRequest, error) {
	all, err := s.merchants.List(ctx)
	if err != nil {
		return nil, err
	}
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return all, nil
	}

	out := make([]domain.MerchantRequest, 0, len(all))
	for _, m := range all {
		if strings.Contains(strings.ToLower(m.BusinessName), filter) {
			out = append(out, m)
		}
	}
	return out, nil
}

// Applications is the approval queue.
func (s *Service) Applications(ctx context.Context) ([]domain.MerchantRequest, error) {
	all, err := s.merchants.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MerchantRequest, 0)
	for _, m := range all {
		if m.Status == domain.MerchantPending {
			out = append(out, m)
		}
	}
	return out, nil
}

// AddMerchant registers a pending application. A blank, non-numeric or
// zero bid becomes DefaultBid.
func (s *Service) AddMerchant(ctx context.Context, in NewMerchant) (domain.MerchantRequest, error) {
	name := strings.TrimSpace(in.BusinessName)
	if name == "" {
		return domain.MerchantRequest{}, fmt.Errorf("%w: business name is required", ErrInvalidMerchant)
	}
	bid := domain.ParseBid(in.Bid, DefaultBid)
	if bid == 0 {
		bid = DefaultBid
	}
	if bid < 0 {
		return domain.MerchantRequest{}, fmt.Errorf("%w: bid must be positive", ErrInvalidMerchant)
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultCategory
	}

	all, err := s.merchants.List(ctx)
	if err != nil {
		return domain.MerchantRequest{}, err
	}

	m := domain.MerchantRequest{
		ID:           s.newID(),
		BusinessName: name,
		Category:     category,
		AppliedDate:  s.now().Format(time.DateOnly),
		Status:       domain.MerchantPending,
		BidAmount:    bid,
	}
	if err := s.merchants.Save(ctx, append(all, m)); err != nil {
		return domain.MerchantRequest{}, err
	}

	metrics.AdminActions.WithLabelValues("add").Inc()
	s.logger.Info("merchant application added",
		logger.String("id", m.ID),
		logger.String("business", m.BusinessName),
		logger.Float64("bid", float64(m.BidAmount)))
	return m, nil
}

// Approve activates a merchant and marks its billing as paid.
func (s *Service) Approve(ctx context.Context, id string) (domain.MerchantRequest, error) {
	all, err := s.merchants.List(ctx)
	if err != nil {
		return domain.MerchantRequest{}, err
	}

	for i := range all {
		if all[i].ID != id {
			continue
		}
		all[i].Status = domain.MerchantActive
		all[i].BillingStatus = domain.BillingPaid
		if err := s.merchants.Save(ctx, all); err != nil {
			return domain.MerchantRequest{}, err
		}
		metrics.AdminActions.WithLabelValues("approve").Inc()
		s.logger.Info("merchant approved", logger.String("id", id))
		return all[i], nil
	}
	return domain.MerchantRequest{}, fmt.Errorf("%w: %s", ErrMerchantNotFound, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	all, err := s.merchants.List(ctx)
	if err != nil {
		return err
	}

	kept := make([]domain.MerchantRequest, 0, len(all))
	for _, m := range all {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(all) {
		return fmt.Errorf("%w: %s", ErrMerchantNotFound, id)
	}
	if err := s.merchants.Save(ctx, kept); err != nil {
		return err
	}

	metrics.AdminActions.WithLabelValues("delete").Inc()
	s.logger.Info("merchant removed", logger.String("id", id))
	return nil
}

// Stats sums active bids as daily revenue; non-numeric bids already
// decode as 0.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.merchants.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	var st Stats
	for _, m := range all {
		switch m.Status {
		case domain.MerchantActive:
			st.Active++
			st.DailyRevenue += float64(m.BidAmount.Finite())
		case domain.MerchantPending:
			st.Pending++
		}
	}
	st.MonthlySubscriptionRev = float64(st.Active) * SubscriptionPrice
	return st, nil
}

func (s *Service) Reports(ctx context.Context) ([]domain.Report, error) {
	return s.reports.List(ctx)
}

func (s *Service) ResolveReport(ctx context.Context, id string) (domain.Report, error) {
	rp, err := s.reports.Resolve(ctx, id)
	if err != nil {
		return domain.Report{}, err
	}
	metrics.AdminActions.WithLabelValues("resolve_report").Inc()
	return rp, nil
}

func (s *Service) Insights(ctx context.Context) (domain.UsageInsights, error) {
	return s.insights.Get(ctx)
}
