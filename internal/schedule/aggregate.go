package schedule

import (
	"github.com/shopspring/decimal"

	"github.com/bcdservices/dashboard-api/internal/model"
)

type ItemTotal struct {
	Name     string             `json:"name"`
	Quantity int                `json:"quantity"`
	Category model.ItemCategory `json:"-"`
}

// WeekSummary rolls the whole week up.
type WeekSummary struct {
	Items         []ItemTotal              `json:"items"`
	FirewoodTotal int                      `json:"firewoodTotal"`
	Firewood      []ItemTotal              `json:"firewood"`
	Others        []ItemTotal              `json:"others"`
	Revenue       float64                  `json:"revenue"`
	DailyRevenue  [DaysPerWeek]float64     `json:"dailyRevenue"`
	DailyItems    [DaysPerWeek][]ItemTotal `json:"dailyItems"`
}

// tally sums quantities by item name, remembering first-encounter order.
type tally struct {
	totals   map[string]int
	category map[string]model.ItemCategory
	seen     []string
}

func newTally() *tally {
	return &tally{totals: make(map[string]int), category: make(map[string]model.ItemCategory)}
}

func (t *tally) add(item model.LineItem) {
	if _, ok := t.totals[item.Name]; !ok {
		t.seen = append(t.seen, item.Name)
		t.category[item.Name] = item.Category
	}
	t.totals[item.Name] += item.Quantity
}

func (t *tally) addAppointments(appointments []model.Appointment) {
	for _, apt := range appointments {
		for _, item := range apt.Items {
			t.add(item)
		}
	}
}

// ordered returns catalog items first, in catalog order, then the rest in
// encounter order. Catalog items only appear with a positive quantity.
func (t *tally) ordered(keep func(model.ItemCategory) bool) []ItemTotal {
	out := []ItemTotal{}
	for _, c := range model.Catalog {
		qty, ok := t.totals[c.Name]
		if !ok || qty <= 0 || !keep(c.Category) {
			continue
		}
		out = append(out, ItemTotal{Name: c.Name, Quantity: qty, Category: c.Category})
	}
	for _, name := range t.seen {
		if _, ok := model.CatalogPosition(name); ok {
			continue
		}
		if !keep(t.category[name]) {
			continue
		}
		out = append(out, ItemTotal{Name: name, Quantity: t.totals[name], Category: t.category[name]})
	}
	return out
}

func anyCategory(model.ItemCategory) bool { return true }

// AggregateDay sums the items of every appointment of a day.
func AggregateDay(b *Board, day int) []ItemTotal {
	t := newTally()
	t.addAppointments(b.Day(day))
	return t.ordered(anyCategory)
}

func dayRevenue(b *Board, day int) decimal.Decimal {
	total := decimal.Zero
	for _, apt := range b.Day(day) {
		total = total.Add(decimal.NewFromFloat(apt.CartTotal))
	}
	return total
}

func weekRevenue(b *Board) decimal.Decimal {
	total := decimal.Zero
	for day := 0; day < DaysPerWeek; day++ {
		total = total.Add(dayRevenue(b, day))
	}
	return total
}

func cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// DailyRevenue sums cart totals of a day, rounded to cents.
func DailyRevenue(b *Board, day int) float64 {
	return cents(dayRevenue(b, day))
}

// WeeklyRevenue sums cart totals across the week, rounded to cents.
func WeeklyRevenue(b *Board) float64 {
	return cents(weekRevenue(b))
}

// AggregateWeek rolls items and revenue up across Monday to Friday and
// splits items into firewood and others.
func AggregateWeek(b *Board) WeekSummary {
	week := newTally()
	var s WeekSummary
	for day := 0; day < DaysPerWeek; day++ {
		appointments := b.Day(day)
		week.addAppointments(appointments)

		daily := newTally()
		daily.addAppointments(appointments)
		s.DailyItems[day] = daily.ordered(anyCategory)
		s.DailyRevenue[day] = DailyRevenue(b, day)
	}
	s.Revenue = WeeklyRevenue(b)

	isFirewood := func(c model.ItemCategory) bool { return c == model.ItemCategoryFirewood }
	s.Items = week.ordered(anyCategory)
	s.Firewood = week.ordered(isFirewood)
	s.Others = week.ordered(func(c model.ItemCategory) bool { return !isFirewood(c) })
	for _, item := range s.Firewood {
		s.FirewoodTotal += item.Quantity
	}
	return s
}
