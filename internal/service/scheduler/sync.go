package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bcdservices/dashboard-api/internal/model"
	"github.com/bcdservices/dashboard-api/internal/schedule"
)

// Navigate selects the week containing ref and loads it. The previous
// week's appointments are cleared at once so they never show under the
// new dates.
func (s *Service) Navigate(ctx context.Context, ref time.Time) error {
	w := schedule.WeekOf(ref.In(s.loc))

	s.mu.Lock()
	if !s.window.Equal(w) {
		s.window = w
		s.board, _ = schedule.NewBoard(nil, s.loc)
		delete(s.errs, sourceOrders)
	}
	s.mu.Unlock()

	return s.reconcile(ctx, w)
}

// Shift moves the selection by whole weeks.
func (s *Service) Shift(ctx context.Context, weeks int) error {
	return s.Navigate(ctx, s.Week().Shift(weeks).Start())
}

// Refresh reloads the selected week.
func (s *Service) Refresh(ctx context.Context) error {
	return s.reconcile(ctx, s.Week())
}

// reconcile fetches orders and blocked dates for w concurrently. Each
// result is applied on its own and only while w is still selected. A
// failed fetch empties that source and is recorded for the view; the
// joined fetch errors are returned.
func (s *Service) reconcile(ctx context.Context, w schedule.Window) error {
	var (
		g          errgroup.Group
		ordersErr  error
		blockedErr error
	)
	weekStart := schedule.ISODate(w.Start())

	g.Go(func() error {
		records, err := s.orders.ListWeek(ctx, weekStart)
		ordersErr = err
		s.applyOrders(w, records, err)
		return nil
	})
	g.Go(func() error {
		records, err := s.blocked.List(ctx)
		blockedErr = err
		s.applyBlockedDates(w, records, err)
		return nil
	})
	_ = g.Wait()

	return errors.Join(ordersErr, blockedErr)
}

func (s *Service) applyOrders(w schedule.Window, records []model.OrderRecord, err error) {
	s.metrics.ObserveReconcile(sourceOrders, err)

	appointments := make([]model.Appointment, 0, len(records))
	for _, r := range records {
		appointments = append(appointments, r.ToAppointment())
	}
	board, dropped := schedule.NewBoard(appointments, s.loc)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.window.Equal(w) {
		s.metrics.IncStale()
		s.log.Debug("discarding orders for a week no longer selected", "week", schedule.ISODate(w.Start()))
		return
	}

	if err != nil {
		s.log.Error(err, "failed to fetch week orders", "week", schedule.ISODate(w.Start()))
		s.board, _ = schedule.NewBoard(nil, s.loc)
		s.errs[sourceOrders] = fmt.Sprintf("orders unavailable: %v", err)
		return
	}

	for _, apt := range dropped {
		s.log.Warn("appointment outside the business week dropped", "id", apt.ID, "date", apt.Date.Format(time.RFC3339))
	}
	s.metrics.AddDropped(len(dropped))
	s.board = board
	delete(s.errs, sourceOrders)
}

func (s *Service) applyBlockedDates(w schedule.Window, records []model.BlockedDate, err error) {
	s.metrics.ObserveReconcile(sourceBlockedDates, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.window.Equal(w) {
		s.metrics.IncStale()
		s.log.Debug("discarding blocked dates for a week no longer selected", "week", schedule.ISODate(w.Start()))
		return
	}

	if err != nil {
		s.log.Error(err, "failed to fetch blocked dates")
		s.blocks = schedule.NewBlockIndex(nil)
		s.errs[sourceBlockedDates] = fmt.Sprintf("blocked dates unavailable: %v", err)
		return
	}
	s.blocks = schedule.NewBlockIndex(records)
	delete(s.errs, sourceBlockedDates)
}
