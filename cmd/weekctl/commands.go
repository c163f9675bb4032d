package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bcdservices/dashboard-api/internal/model"
	"github.com/bcdservices/dashboard-api/internal/render"
	"github.com/bcdservices/dashboard-api/internal/service/scheduler"
	"github.com/bcdservices/dashboard-api/pkg/messaging"
)

// Context is handed to every command's Run.
type Context struct {
	Ctx       context.Context
	Out       io.Writer
	Scheduler scheduler.Scheduler
	Broker    messaging.Broker
	Channel   string
}

// WeekFlag selects the week holding Date.
type WeekFlag struct {
	Date string `help:"Any date in the week (YYYY-MM-DD or 'today')." default:"today"`
}

func (f WeekFlag) load(ctx *Context) error {
	ref := ctx.Scheduler.Now()
	if f.Date != "today" && f.Date != "" {
		var err error
		ref, err = time.ParseInLocation(time.DateOnly, f.Date, ctx.Scheduler.Location())
		if err != nil {
			return fmt.Errorf("invalid date format, use YYYY-MM-DD or 'today': %w", err)
		}
	}
	// Fetch failures show up in the view's errors.
	_ = ctx.Scheduler.Navigate(ctx.Ctx, ref)
	return nil
}

type ShowCmd struct {
	WeekFlag `embed:""`
}

func (c *ShowCmd) Run(ctx *Context) error {
	if err := c.load(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprint(ctx.Out, render.Week(ctx.Scheduler.View(ctx.Scheduler.Now())))
	return err
}

type SummaryCmd struct {
	WeekFlag `embed:""`
}

func (c *SummaryCmd) Run(ctx *Context) error {
	if err := c.load(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprint(ctx.Out, render.Summary(ctx.Scheduler.View(ctx.Scheduler.Now())))
	return err
}

type BlockDayCmd struct {
	WeekFlag `embed:""`
	Day int `arg:"" help:"Day of the week, 0 (Monday) to 4 (Friday)."`
}

func (c *BlockDayCmd) Run(ctx *Context) error {
	if err := c.load(ctx); err != nil {
		return err
	}
	res, err := ctx.Scheduler.ToggleDayBlock(ctx.Ctx, c.Day)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "%s %s\n", res.Date, blockedWord(res.Blocked))
	return nil
}

type BlockSlotCmd struct {
	WeekFlag `embed:""`
	Day  int    `arg:"" help:"Day of the week, 0 (Monday) to 4 (Friday)."`
	Slot string `arg:"" help:"Half-hour label, e.g. 9:30."`
}

func (c *BlockSlotCmd) Run(ctx *Context) error {
	if err := c.load(ctx); err != nil {
		return err
	}
	res, err := ctx.Scheduler.ToggleSlotBlock(ctx.Ctx, c.Day, c.Slot)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "%s %s %s\n", res.Date, res.Slot, blockedWord(res.Blocked))
	return nil
}

func blockedWord(blocked bool) string {
	if blocked {
		return "blocked"
	}
	return "unblocked"
}

type WatchCmd struct{}

func (c *WatchCmd) Run(ctx *Context) error {
	if ctx.Broker == nil {
		return errors.New("watch needs redis.url to be configured")
	}
	messages, err := ctx.Broker.Subscribe(ctx.Ctx, ctx.Channel)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Ctx.Done():
			return nil
		case raw, ok := <-messages:
			if !ok {
				return nil
			}
			var event model.ScheduleEvent
			if _, err := messaging.Decode(raw, &event); err != nil {
				fmt.Fprintf(ctx.Out, "skipping message: %v\n", err)
				continue
			}
			fmt.Fprintln(ctx.Out, render.Event(event))
		}
	}
}
