package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bcdservices/dashboard-api/internal/model"
	"github.com/bcdservices/dashboard-api/internal/schedule"
	apperrors "github.com/bcdservices/dashboard-api/pkg/errors"
	pkgvalidator "github.com/bcdservices/dashboard-api/pkg/validator"
)

// Every command follows the same steps: read what it needs from the
// projection, call the backend, patch the projection on success and then
// reconcile the captured week whatever the outcome. A failed call leaves
// the projection untouched.

func validDay(day int) error {
	if day < 0 || day >= schedule.DaysPerWeek {
		return apperrors.NewBadRequest(fmt.Sprintf("day must be between 0 and %d", schedule.DaysPerWeek-1), nil)
	}
	return nil
}

// patch applies fn to the projection if w is still the selected week.
func (s *Service) patch(w schedule.Window, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.window.Equal(w) {
		fn()
	}
}

// settle reconciles after a mutation. Fetch failures are already recorded
// for the view and do not undo a successful mutation.
func (s *Service) settle(ctx context.Context, w schedule.Window) {
	if err := s.reconcile(ctx, w); err != nil {
		s.log.Warn("reconciliation after mutation incomplete", "error", err.Error())
	}
}

// BlockToggle is the outcome of a block toggle. Date is the day the toggle
// acted on, whatever week is selected by the time the caller reads it.
type BlockToggle struct {
	Day     int    `json:"day"`
	Date    string `json:"date"`
	Slot    string `json:"slot,omitempty"`
	Blocked bool   `json:"blocked"`
}

// ToggleDayBlock blocks every unoccupied slot of the day, or lifts the
// block when the day is already flagged. It reports the new flag.
func (s *Service) ToggleDayBlock(ctx context.Context, day int) (BlockToggle, error) {
	if err := validDay(day); err != nil {
		return BlockToggle{}, err
	}
	s.ops.Lock()
	defer s.ops.Unlock()

	s.mu.RLock()
	w := s.window
	iso := w.ISODate(day)
	flagged := s.blocks.DayBlocked(iso)
	free := schedule.FreeLabels(s.board, day)
	s.mu.RUnlock()

	res := BlockToggle{Day: day, Date: iso, Blocked: flagged}
	defer s.settle(ctx, w)

	if flagged {
		if err := s.blocked.Unblock(ctx, iso, &model.UnblockRequest{}); err != nil {
			return res, err
		}
		s.patch(w, func() { s.blocks.UnblockDay(iso) })
		s.publish(ctx, w, model.ScheduleEvent{Type: model.EventDayUnblocked, Date: iso})
		res.Blocked = false
		return res, nil
	}

	req := &model.BlockRequest{Date: iso, BlockedTimes: free, DayBlocked: true}
	if req.BlockedTimes == nil {
		req.BlockedTimes = []string{}
	}
	if err := s.blocked.Block(ctx, req); err != nil {
		return res, err
	}
	s.patch(w, func() { s.blocks.BlockDay(iso, free) })
	s.publish(ctx, w, model.ScheduleEvent{Type: model.EventDayBlocked, Date: iso, Slots: free})
	res.Blocked = true
	return res, nil
}

// ToggleSlotBlock adds the slot to the date's blocked set, or removes it
// when it is already there. A slot holding appointments cannot be blocked.
// Blocked reports whether the slot is now in the set.
func (s *Service) ToggleSlotBlock(ctx context.Context, day int, label string) (BlockToggle, error) {
	if err := validDay(day); err != nil {
		return BlockToggle{}, err
	}
	if !schedule.IsGridLabel(label) {
		return BlockToggle{}, apperrors.NewBadRequest(fmt.Sprintf("unknown slot %q", label), nil)
	}
	s.ops.Lock()
	defer s.ops.Unlock()

	s.mu.RLock()
	w := s.window
	iso := w.ISODate(day)
	inSet := s.blocks.SlotBlocked(iso, label)
	occupied := s.board.Occupied(schedule.SlotKey{Day: day, Label: label})
	s.mu.RUnlock()

	res := BlockToggle{Day: day, Date: iso, Slot: label, Blocked: inSet}
	if !inSet && occupied {
		return res, apperrors.NewBadRequest(fmt.Sprintf("slot %s on %s has appointments", label, iso), nil)
	}

	defer s.settle(ctx, w)

	if inSet {
		if err := s.blocked.Unblock(ctx, iso, &model.UnblockRequest{Times: []string{label}}); err != nil {
			return res, err
		}
		s.patch(w, func() { s.blocks.UnblockSlot(iso, label) })
		s.publish(ctx, w, model.ScheduleEvent{Type: model.EventSlotUnblocked, Date: iso, Slots: []string{label}})
		res.Blocked = false
		return res, nil
	}

	if err := s.blocked.Block(ctx, &model.BlockRequest{Date: iso, BlockedTimes: []string{label}}); err != nil {
		return res, err
	}
	s.patch(w, func() { s.blocks.BlockSlot(iso, label) })
	s.publish(ctx, w, model.ScheduleEvent{Type: model.EventSlotBlocked, Date: iso, Slots: []string{label}})
	res.Blocked = true
	return res, nil
}

// SaveAppointment creates the order when req has no id and updates it
// otherwise. The saved copy replaces any previous one on the board.
func (s *Service) SaveAppointment(ctx context.Context, req model.SaveAppointmentRequest) (model.Appointment, error) {
	if err := s.validate.Struct(req); err != nil {
		return model.Appointment{}, apperrors.NewBadRequest(pkgvalidator.Summary(err), err)
	}
	at, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.Time, s.loc)
	if err != nil {
		return model.Appointment{}, apperrors.NewBadRequest("invalid date or time", err)
	}
	if req.UserName == "" {
		req.UserName = strings.TrimSpace(req.UserInfo.Prenom + " " + req.UserInfo.Nom)
	}

	payload := &model.OrderPayload{
		DeliverySlot: model.DeliverySlot{Date: at.UTC()},
		CartItems:    req.Items,
		DeliveryFee:  req.DeliveryFee,
		Discount:     req.Discount,
		CartTotal:    req.CartTotal(),
		UserInfo:     req.UserInfo,
		UserName:     req.UserName,
		Status:       req.Status,
	}
	kind := req.Kind
	if kind == "" {
		kind = model.OrderKindDelivery
	}

	s.ops.Lock()
	defer s.ops.Unlock()
	w := s.Week()
	defer s.settle(ctx, w)

	var saved *model.SavedOrder
	if req.ID == "" {
		saved, err = s.orders.Create(ctx, payload)
	} else {
		saved, err = s.orders.Update(ctx, kind, req.ID, payload)
	}
	if err != nil {
		return model.Appointment{}, err
	}

	apt := saved.ToAppointment()
	if apt.ID == "" {
		apt.ID = req.ID
	}
	if apt.Date.IsZero() {
		apt.Date = at.UTC()
	}
	if len(apt.Items) == 0 {
		apt.Items = model.ResolveCategories(req.Items)
	}

	s.patch(w, func() {
		_, inWeek := w.DayOf(schedule.ISODate(apt.Date.In(s.loc)))
		if inWeek {
			s.board.Upsert(apt)
		} else if apt.ID != "" {
			s.board.RemoveByID(apt.ID)
		}
	})
	s.publish(ctx, w, model.ScheduleEvent{
		Type:          model.EventAppointmentSaved,
		Date:          schedule.ISODate(apt.Date.In(s.loc)),
		AppointmentID: apt.ID,
	})
	return apt, nil
}

// DeleteAppointment removes the order; key locates its cell on the board.
func (s *Service) DeleteAppointment(ctx context.Context, key schedule.SlotKey, id string) error {
	if id == "" {
		return apperrors.NewBadRequest("appointment id is required", nil)
	}
	if err := validDay(key.Day); err != nil {
		return err
	}

	s.ops.Lock()
	defer s.ops.Unlock()
	w := s.Week()
	defer s.settle(ctx, w)

	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}
	s.patch(w, func() {
		if !s.board.Remove(key, id) {
			s.board.RemoveByID(id)
		}
	})
	s.publish(ctx, w, model.ScheduleEvent{
		Type:          model.EventAppointmentDeleted,
		Date:          w.ISODate(key.Day),
		Slots:         []string{key.Label},
		AppointmentID: id,
	})
	return nil
}
