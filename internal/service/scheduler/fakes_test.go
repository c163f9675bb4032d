package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bcdservices/dashboard-api/internal/model"
	"github.com/bcdservices/dashboard-api/internal/schedule"
	apperrors "github.com/bcdservices/dashboard-api/pkg/errors"
)

var errBackendDown = apperrors.NewUpstream("backend error", errors.New("status 502"))

// fakeOrders keeps orders in memory and serves them per week like the
// backend does.
type fakeOrders struct {
	mu       sync.Mutex
	records  []model.OrderRecord
	listErr  error
	writeErr error
	gates    map[string]*gate
	nextID   int

	created []model.OrderPayload
	updates []model.OrderKind
	deleted []string
}

func newFakeOrders(records ...model.OrderRecord) *fakeOrders {
	return &fakeOrders{records: records, gates: make(map[string]*gate)}
}

type gate struct {
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

// hold makes ListWeek for weekStart wait until the returned func is called.
// The channel is closed once a caller is waiting.
func (f *fakeOrders) hold(weekStart string) (<-chan struct{}, func()) {
	g := &gate{arrived: make(chan struct{}), release: make(chan struct{})}
	f.mu.Lock()
	f.gates[weekStart] = g
	f.mu.Unlock()
	return g.arrived, func() { close(g.release) }
}

func (f *fakeOrders) ListWeek(ctx context.Context, weekStart string) ([]model.OrderRecord, error) {
	f.mu.Lock()
	g := f.gates[weekStart]
	f.mu.Unlock()
	if g != nil {
		g.once.Do(func() { close(g.arrived) })
		<-g.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.OrderRecord
	for _, r := range f.records {
		if schedule.ISODate(schedule.MondayOf(r.Date.UTC())) == weekStart {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeOrders) store(id string, order *model.OrderPayload) *model.SavedOrder {
	rec := model.OrderRecord{
		ID:          id,
		Date:        order.DeliverySlot.Date,
		Items:       order.CartItems,
		CartTotal:   order.CartTotal,
		Status:      order.Status,
		UserName:    order.UserName,
		UserInfo:    order.UserInfo,
		DeliveryFee: order.DeliveryFee,
		Discount:    order.Discount,
	}
	replaced := false
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i] = rec
			replaced = true
		}
	}
	if !replaced {
		f.records = append(f.records, rec)
	}
	return &model.SavedOrder{
		MongoID:      id,
		DeliverySlot: order.DeliverySlot,
		CartItems:    order.CartItems,
		CartTotal:    order.CartTotal,
		UserName:     order.UserName,
		UserInfo:     order.UserInfo,
		Status:       order.Status,
	}
}

func (f *fakeOrders) Create(ctx context.Context, order *model.OrderPayload) (*model.SavedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.nextID++
	f.created = append(f.created, *order)
	return f.store(fmt.Sprintf("new-%d", f.nextID), order), nil
}

func (f *fakeOrders) Update(ctx context.Context, kind model.OrderKind, id string, order *model.OrderPayload) (*model.SavedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.updates = append(f.updates, kind)
	return f.store(id, order), nil
}

func (f *fakeOrders) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.deleted = append(f.deleted, id)
	kept := f.records[:0]
	for _, r := range f.records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	f.records = kept
	return nil
}

// fakeBlocked mirrors the backend's blocked-dates semantics.
type fakeBlocked struct {
	mu       sync.Mutex
	dates    map[string]*model.BlockedDate
	listErr  error
	writeErr error
	blocks   []model.BlockRequest
	unblocks []model.UnblockRequest
	// onBlock runs before Block records anything, outside the lock.
	onBlock func()
}

func newFakeBlocked(records ...model.BlockedDate) *fakeBlocked {
	f := &fakeBlocked{dates: make(map[string]*model.BlockedDate)}
	for i := range records {
		r := records[i]
		f.dates[r.Date] = &r
	}
	return f
}

func (f *fakeBlocked) List(ctx context.Context) ([]model.BlockedDate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.BlockedDate, 0, len(f.dates))
	for _, d := range f.dates {
		out = append(out, model.BlockedDate{
			Date:         d.Date,
			DayBlocked:   d.DayBlocked,
			BlockedTimes: append([]string(nil), d.BlockedTimes...),
		})
	}
	return out, nil
}

func (f *fakeBlocked) Block(ctx context.Context, req *model.BlockRequest) error {
	if f.onBlock != nil {
		f.onBlock()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.blocks = append(f.blocks, *req)
	if req.DayBlocked {
		f.dates[req.Date] = &model.BlockedDate{Date: req.Date, DayBlocked: true, BlockedTimes: append([]string(nil), req.BlockedTimes...)}
		return nil
	}
	d, ok := f.dates[req.Date]
	if !ok {
		d = &model.BlockedDate{Date: req.Date}
		f.dates[req.Date] = d
	}
	d.BlockedTimes = append(d.BlockedTimes, req.BlockedTimes...)
	return nil
}

func (f *fakeBlocked) Unblock(ctx context.Context, date string, req *model.UnblockRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.unblocks = append(f.unblocks, *req)
	d, ok := f.dates[date]
	if !ok {
		return nil
	}
	if len(req.Times) == 0 {
		delete(f.dates, date)
		return nil
	}
	remove := make(map[string]bool, len(req.Times))
	for _, t := range req.Times {
		remove[t] = true
	}
	var kept []string
	for _, t := range d.BlockedTimes {
		if !remove[t] {
			kept = append(kept, t)
		}
	}
	d.BlockedTimes = kept
	d.DayBlocked = false
	if len(kept) == 0 {
		delete(f.dates, date)
	}
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return p.err
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
