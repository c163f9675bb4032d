package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bcdservices/dashboard-api/internal/model"
	"github.com/bcdservices/dashboard-api/internal/repository"
	"github.com/bcdservices/dashboard-api/internal/schedule"
	apperrors "github.com/bcdservices/dashboard-api/pkg/errors"
	"github.com/bcdservices/dashboard-api/pkg/logger"
	"github.com/bcdservices/dashboard-api/pkg/messaging"
	"github.com/bcdservices/dashboard-api/pkg/metrics"
	pkgvalidator "github.com/bcdservices/dashboard-api/pkg/validator"
)

const (
	sourceOrders       = "orders"
	sourceBlockedDates = "blockedDates"
)

type Scheduler interface {
	Now() time.Time
	Location() *time.Location
	Week() schedule.Window
	View(now time.Time) schedule.WeekView
	Slot(day int, label string, now time.Time) (schedule.SlotView, error)
	Summary() schedule.WeekSummary
	Navigate(ctx context.Context, ref time.Time) error
	Shift(ctx context.Context, weeks int) error
	Refresh(ctx context.Context) error
	ToggleDayBlock(ctx context.Context, day int) (BlockToggle, error)
	ToggleSlotBlock(ctx context.Context, day int, label string) (BlockToggle, error)
	SaveAppointment(ctx context.Context, req model.SaveAppointmentRequest) (model.Appointment, error)
	DeleteAppointment(ctx context.Context, key schedule.SlotKey, id string) error
}

var _ Scheduler = (*Service)(nil)

// Service owns the selected week and its projection: the appointment board
// and the blocked-date index. Mutations run one at a time; fetch results
// only land if their week is still selected.
type Service struct {
	orders    repository.OrderRepository
	blocked   repository.BlockedDateRepository
	publisher messaging.Publisher
	metrics   *metrics.Metrics
	log       *logger.Logger
	loc       *time.Location
	now       func() time.Time
	validate  *validator.Validate

	ops sync.Mutex

	mu     sync.RWMutex
	window schedule.Window
	board  *schedule.Board
	blocks *schedule.BlockIndex
	errs   map[string]string
}

type Option func(*Service)

func WithPublisher(p messaging.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(orders repository.OrderRepository, blocked repository.BlockedDateRepository, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		orders:    orders,
		blocked:   blocked,
		publisher: messaging.NopPublisher{},
		log:       logger.Nop(),
		loc:       loc,
		now:       time.Now,
		validate:  pkgvalidator.New(),
		errs:      make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.window = schedule.WeekOf(s.Now())
	s.board, _ = schedule.NewBoard(nil, loc)
	s.blocks = schedule.NewBlockIndex(nil)
	return s
}

// Now is the current time in the business location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) Week() schedule.Window {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window
}

// View renders the selected week as of now.
func (s *Service) View(now time.Time) schedule.WeekView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := schedule.BuildWeekView(s.window, s.board, s.blocks, now.In(s.loc))
	view.Errors = s.errorsLocked()
	return view
}

// Slot renders one cell of the selected week.
func (s *Service) Slot(day int, label string, now time.Time) (schedule.SlotView, error) {
	key := schedule.SlotKey{Day: day, Label: label}
	if !key.Valid() {
		return schedule.SlotView{}, apperrors.NewBadRequest("day must be between 0 and 4 and slot is required", nil)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !schedule.IsGridLabel(label) && !s.board.Occupied(key) {
		return schedule.SlotView{}, apperrors.NewNotFound("slot "+label, nil)
	}
	return schedule.BuildSlotView(s.window, s.board, s.blocks, key, now.In(s.loc)), nil
}

func (s *Service) Summary() schedule.WeekSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return schedule.AggregateWeek(s.board)
}

// Errors lists the fetch failures of the last reconciliation.
func (s *Service) Errors() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errorsLocked()
}

func (s *Service) errorsLocked() []string {
	if len(s.errs) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.errs))
	for _, msg := range s.errs {
		out = append(out, msg)
	}
	sort.Strings(out)
	return out
}

// publish is best effort; a broker outage never fails a mutation.
func (s *Service) publish(ctx context.Context, w schedule.Window, event model.ScheduleEvent) {
	event.ID = uuid.NewString()
	event.WeekStart = schedule.ISODate(w.Start())
	event.At = s.now().UTC()

	err := s.publisher.Publish(ctx, string(event.Type), event)
	s.metrics.ObservePublish(string(event.Type), err)
	if err != nil {
		s.log.Error(err, "failed to publish schedule event", "type", string(event.Type))
	}
}
