package revenue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bcdservices/dashboard-api/internal/model"
	"github.com/bcdservices/dashboard-api/internal/repository"
	"github.com/bcdservices/dashboard-api/internal/schedule"
	"github.com/bcdservices/dashboard-api/pkg/logger"
)

const monthLayout = "2006-01"

// FiscalYearStartMonth is the first month of the business's fiscal year.
const FiscalYearStartMonth = time.April

type RevenueServicer interface {
	Report(ctx context.Context) (*model.RevenueReport, error)
}

// Config holds the figures that never made it into the backend. Keys are
// YYYY-MM months.
type Config struct {
	PreviousYear map[string]float64
	Adjustments  map[string]float64
}

type Service struct {
	repo repository.InvoiceRepository
	cfg  Config
	loc  *time.Location
	now  func() time.Time
	log  *logger.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(repo repository.InvoiceRepository, cfg Config, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{repo: repo, cfg: cfg, loc: loc, now: time.Now, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FiscalYear returns the bounds [start, end) of the fiscal year holding t.
func FiscalYear(t time.Time) (time.Time, time.Time) {
	year := t.Year()
	if t.Month() < FiscalYearStartMonth {
		year--
	}
	start := time.Date(year, FiscalYearStartMonth, 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(1, 0, 0)
}

// Report builds the revenue chart. Both sources are fetched together; a
// failed source leaves its series empty and is listed in Errors. An error
// is returned only when both sources fail.
func (s *Service) Report(ctx context.Context) (*model.RevenueReport, error) {
	var (
		g         errgroup.Group
		invoices  []model.Invoice
		estimated []model.EstimatedSale
		salesErr  error
		estErr    error
	)
	g.Go(func() error {
		invoices, salesErr = s.repo.List(ctx, model.InvoiceQuery{})
		return nil
	})
	g.Go(func() error {
		estimated, estErr = s.repo.Estimated(ctx)
		return nil
	})
	_ = g.Wait()

	report := &model.RevenueReport{Months: []model.MonthRevenue{}}
	if salesErr != nil {
		s.log.Error(salesErr, "failed to fetch completed sales")
		report.Errors = append(report.Errors, fmt.Sprintf("completed sales unavailable: %v", salesErr))
	}
	if estErr != nil {
		s.log.Error(estErr, "failed to fetch estimated revenue")
		report.Errors = append(report.Errors, fmt.Sprintf("estimated revenue unavailable: %v", estErr))
	}
	if salesErr != nil && estErr != nil {
		return nil, errors.Join(salesErr, estErr)
	}

	start, end := FiscalYear(s.now().In(s.loc))
	report.FiscalYearStart = schedule.ISODate(start)
	report.FiscalYearEnd = schedule.ISODate(end.AddDate(0, 0, -1))

	// Sums are kept exact and converted once per figure.
	annual := decimal.Zero
	actual := make(map[string]decimal.Decimal)
	for _, inv := range invoices {
		at, ok := inv.RevenueDate()
		if !ok {
			continue
		}
		at = at.In(s.loc)
		amount := decimal.NewFromFloat(inv.CartTotal)
		key := at.Format(monthLayout)
		actual[key] = actual[key].Add(amount)
		if !at.Before(start) && at.Before(end) {
			annual = annual.Add(amount)
		}
	}
	if salesErr == nil {
		for month, v := range s.cfg.Adjustments {
			amount := decimal.NewFromFloat(v)
			actual[month] = actual[month].Add(amount)
			if t, err := time.ParseInLocation(monthLayout, month, s.loc); err == nil && !t.Before(start) && t.Before(end) {
				annual = annual.Add(amount)
			}
		}
	}
	report.AnnualRevenue = annual.Round(2).InexactFloat64()

	forecast := make(map[string]decimal.Decimal)
	for _, sale := range estimated {
		if sale.DeliverySlot.Date.IsZero() {
			continue
		}
		key := sale.DeliverySlot.Date.In(s.loc).Format(monthLayout)
		forecast[key] = forecast[key].Add(decimal.NewFromFloat(sale.CartTotal))
	}

	report.Months = s.series(actual, forecast)
	return report, nil
}

// series merges both maps over the union of their months, oldest first.
func (s *Service) series(actual, forecast map[string]decimal.Decimal) []model.MonthRevenue {
	months := make(map[string]struct{}, len(actual)+len(forecast))
	for m := range actual {
		months[m] = struct{}{}
	}
	for m := range forecast {
		months[m] = struct{}{}
	}
	keys := make([]string, 0, len(months))
	for m := range months {
		keys = append(keys, m)
	}
	sort.Strings(keys)

	title := cases.Title(language.French)
	out := make([]model.MonthRevenue, 0, len(keys))
	for _, key := range keys {
		t, err := time.Parse(monthLayout, key)
		if err != nil {
			continue
		}
		point := model.MonthRevenue{
			Month: key,
			Label: title.String(schedule.FormatMonth(t.Year(), t.Month())),
		}
		if v, ok := actual[key]; ok {
			f := v.Round(2).InexactFloat64()
			point.Actual = &f
		}
		if v, ok := forecast[key]; ok {
			f := v.Round(2).InexactFloat64()
			point.Estimated = &f
		}
		if v, ok := s.cfg.PreviousYear[t.AddDate(-1, 0, 0).Format(monthLayout)]; ok {
			point.Previous = &v
		}
		out = append(out, point)
	}
	return out
}
