package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcdservices/dashboard-api/internal/model"
	"github.com/bcdservices/dashboard-api/internal/repository/backend"
	"github.com/bcdservices/dashboard-api/internal/service/scheduler"
	"github.com/bcdservices/dashboard-api/pkg/messaging"
)

type memoryBroker struct {
	ch chan []byte
}

func (b *memoryBroker) Publish(_ context.Context, _ string, message interface{}) error {
	raw, err := json.Marshal(message)
	if err != nil {
		return err
	}
	b.ch <- raw
	return nil
}

func (b *memoryBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return b.ch, nil
}

func (b *memoryBroker) Close() error {
	close(b.ch)
	return nil
}

func newTestContext(t *testing.T) (*Context, *bytes.Buffer, *[]model.BlockRequest) {
	t.Helper()
	var (
		mu     sync.Mutex
		blocks []model.BlockRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/get-week-orders":
			_ = json.NewEncoder(w).Encode([]model.OrderRecord{{
				ID:        "o1",
				Date:      time.Date(2024, 6, 4, 8, 0, 0, 0, time.UTC),
				Items:     []model.LineItem{{Name: "Stère en 33 cm", Quantity: 2, Price: 95}},
				CartTotal: 190,
				UserName:  "marie curie",
			}})
		case "/blocked-dates":
			if r.Method == http.MethodPost {
				var req model.BlockRequest
				_ = json.NewDecoder(r.Body).Decode(&req)
				blocks = append(blocks, req)
				_, _ = w.Write([]byte(`{}`))
				return
			}
			_, _ = w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	client, err := backend.NewClient(backend.Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	out := &bytes.Buffer{}
	ctx := &Context{
		Ctx: context.Background(),
		Out: out,
		Scheduler: scheduler.NewService(
			backend.NewOrderRepository(client),
			backend.NewBlockedDateRepository(client),
			paris,
			scheduler.WithClock(func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }),
		),
	}
	return ctx, out, &blocks
}

func TestShowDrawsSelectedWeek(t *testing.T) {
	ctx, out, _ := newTestContext(t)

	cmd := &ShowCmd{WeekFlag: WeekFlag{Date: "2024-06-05"}}
	require.NoError(t, cmd.Run(ctx))

	assert.Equal(t, "2024-06-03", ctx.Scheduler.Week().ISODate(0))
	assert.Contains(t, out.String(), "Marie Curie")
}

func TestShowRejectsBadDate(t *testing.T) {
	ctx, _, _ := newTestContext(t)
	assert.Error(t, (&ShowCmd{WeekFlag: WeekFlag{Date: "05/06/2024"}}).Run(ctx))
}

func TestSummaryCommand(t *testing.T) {
	ctx, out, _ := newTestContext(t)

	require.NoError(t, (&SummaryCmd{WeekFlag: WeekFlag{Date: "2024-06-03"}}).Run(ctx))
	assert.Contains(t, out.String(), "Bois: 2 stères")
	assert.Contains(t, out.String(), "190,00")
}

func TestBlockSlotCommand(t *testing.T) {
	ctx, out, blocks := newTestContext(t)

	cmd := &BlockSlotCmd{WeekFlag: WeekFlag{Date: "2024-06-03"}, Day: 2, Slot: "9:30"}
	require.NoError(t, cmd.Run(ctx))

	assert.Equal(t, "2024-06-05 9:30 blocked\n", out.String())
	require.Len(t, *blocks, 1)
	assert.Equal(t, "2024-06-05", (*blocks)[0].Date)
	assert.Equal(t, []string{"9:30"}, (*blocks)[0].BlockedTimes)

	bad := &BlockSlotCmd{WeekFlag: WeekFlag{Date: "2024-06-03"}, Day: 2, Slot: "9:45"}
	assert.Error(t, bad.Run(ctx))
}

func TestBlockDayRejectsWeekend(t *testing.T) {
	ctx, _, _ := newTestContext(t)
	assert.Error(t, (&BlockDayCmd{WeekFlag: WeekFlag{Date: "2024-06-03"}, Day: 5}).Run(ctx))
}

func TestWatchPrintsEvents(t *testing.T) {
	broker := &memoryBroker{ch: make(chan []byte, 2)}
	pub := messaging.NewChannelPublisher(broker, "schedule.events")
	require.NoError(t, pub.Publish(context.Background(), string(model.EventSlotBlocked), model.ScheduleEvent{
		Type:  model.EventSlotBlocked,
		Date:  "2024-06-05",
		Slots: []string{"9:30"},
		At:    time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC),
	}))
	broker.ch <- []byte("not json")
	require.NoError(t, broker.Close())

	out := &bytes.Buffer{}
	ctx := &Context{Ctx: context.Background(), Out: out, Broker: broker, Channel: "schedule.events"}
	require.NoError(t, (&WatchCmd{}).Run(ctx))

	assert.Contains(t, out.String(), "slot.blocked 2024-06-05 9:30")
	assert.Contains(t, out.String(), "skipping message")
}

func TestWatchNeedsBroker(t *testing.T) {
	ctx := &Context{Ctx: context.Background(), Out: &bytes.Buffer{}}
	assert.Error(t, (&WatchCmd{}).Run(ctx))
}
