// ABOUTME: Outreach analytics aggregator over calendar-day windows
// ABOUTME: Computes daily, weekly, monthly, and filtered per-day rollups on demand
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/remotearmz/commandcenter/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// WeekDays and MonthDays are how many days before today a summary reaches
	// back. Windows include today, so they span N+1 calendar days.
	WeekDays  = 7
	MonthDays = 30
)

// OutreachSource lists outreach whose OutreachDate falls in [start, end).
type OutreachSource interface {
	ListByDateRange(ctx context.Context, start, end time.Time) ([]models.Outreach, error)
}

type Aggregator struct {
	source OutreachSource
	now    func() time.Time
	loc    *time.Location
	logger *zap.Logger
}

type Option func(*Aggregator)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithLocation sets the zone used for calendar-day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.loc = loc
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func New(source OutreachSource, opts ...Option) *Aggregator {
	a := &Aggregator{
		source: source,
		now:    time.Now,
		loc:    time.Local,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Location returns the zone used for day boundaries.
func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// Today returns midnight of the current day in the aggregator's location.
func (a *Aggregator) Today() time.Time {
	return a.startOfDay(a.now())
}

func (a *Aggregator) startOfDay(t time.Time) time.Time {
	y, m, d := t.In(a.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, a.loc)
}

// addDays moves by calendar days so DST transitions keep midnight at midnight.
func (a *Aggregator) addDays(day time.Time, n int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, a.loc)
}

func (a *Aggregator) fetch(ctx context.Context, start, end time.Time) ([]models.Outreach, error) {
	records, err := a.source.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load outreach for %s..%s: %w",
			start.Format(models.DateLayout), end.Format(models.DateLayout), err)
	}
	a.logger.Debug("loaded outreach window",
		zap.Time("start", start), zap.Time("end", end), zap.Int("records", len(records)))
	return records, nil
}

// Daily aggregates the outreach of the calendar day containing date.
func (a *Aggregator) Daily(ctx context.Context, date time.Time) (models.OutreachAnalytics, error) {
	start := a.startOfDay(date)
	records, err := a.fetch(ctx, start, a.addDays(start, 1))
	if err != nil {
		return models.OutreachAnalytics{}, err
	}
	return Summarize(start, records), nil
}

// Trend returns n+1 daily results for today back to today-n, newest first.
func (a *Aggregator) Trend(ctx context.Context, n int) ([]models.OutreachAnalytics, error) {
	if n < 0 {
		return nil, fmt.Errorf("trend length must not be negative, got %d", n)
	}
	today := a.Today()
	trend := make([]models.OutreachAnalytics, 0, n+1)
	for i := 0; i <= n; i++ {
		day, err := a.Daily(ctx, a.addDays(today, -i))
		if err != nil {
			return nil, err
		}
		trend = append(trend, day)
	}
	return trend, nil
}

func (a *Aggregator) Weekly(ctx context.Context) (models.OutreachAnalyticsSummary, error) {
	return a.summary(ctx, WeekDays)
}

func (a *Aggregator) Monthly(ctx context.Context) (models.OutreachAnalyticsSummary, error) {
	return a.summary(ctx, MonthDays)
}

func (a *Aggregator) summary(ctx context.Context, days int) (models.OutreachAnalyticsSummary, error) {
	today := a.Today()
	start, end := a.addDays(today, -days), a.addDays(today, 1)
	records, err := a.fetch(ctx, start, end)
	if err != nil {
		return models.OutreachAnalyticsSummary{}, err
	}

	weekly, err := a.Trend(ctx, WeekDays)
	if err != nil {
		return models.OutreachAnalyticsSummary{}, err
	}
	monthly, err := a.Trend(ctx, MonthDays)
	if err != nil {
		return models.OutreachAnalyticsSummary{}, err
	}

	agg := Summarize(start, records)
	return models.OutreachAnalyticsSummary{
		Start:               start,
		End:                 end,
		Total:               agg.Total,
		Successful:          agg.Successful,
		ConversionRate:      agg.ConversionRate,
		AverageResponseTime: agg.AverageResponseTime,
		ByType:              agg.ByType,
		ByStatus:            agg.ByStatus,
		TopPerformingType:   agg.TopPerformingType,
		LeastPerformingType: agg.LeastPerformingType,
		WeeklyTrend:         weekly,
		MonthlyTrend:        monthly,
	}, nil
}

// ByType returns one entry per day for today back to today-30, each built
// from only that day's records of type t.
func (a *Aggregator) ByType(ctx context.Context, t models.OutreachType) ([]models.OutreachAnalytics, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: outreach type %q", models.ErrInvalidEnum, t)
	}
	return a.perDay(ctx, func(o models.Outreach) bool { return o.Type == t }, func(day *models.OutreachAnalytics) {
		day.TopPerformingType = t
		day.LeastPerformingType = t
	})
}

// ByStatus is ByType for a status. Conversion rate is 100 for every completed
// day, empty days included, and 0 for any other status.
func (a *Aggregator) ByStatus(ctx context.Context, s models.OutreachStatus) ([]models.OutreachAnalytics, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: outreach status %q", models.ErrInvalidEnum, s)
	}
	rate := 0.0
	if s == models.OutreachCompleted {
		rate = 100
	}
	return a.perDay(ctx, func(o models.Outreach) bool { return o.Status == s }, func(day *models.OutreachAnalytics) {
		day.ConversionRate = rate
	})
}

func (a *Aggregator) perDay(ctx context.Context, keep func(models.Outreach) bool, adjust func(*models.OutreachAnalytics)) ([]models.OutreachAnalytics, error) {
	today := a.Today()
	records, err := a.fetch(ctx, a.addDays(today, -MonthDays), a.addDays(today, 1))
	if err != nil {
		return nil, err
	}

	buckets := make(map[string][]models.Outreach)
	for _, o := range filterRecords(records, keep) {
		key := o.OutreachDate.In(a.loc).Format(models.DateLayout)
		buckets[key] = append(buckets[key], o)
	}

	days := make([]models.OutreachAnalytics, 0, MonthDays+1)
	for i := 0; i <= MonthDays; i++ {
		date := a.addDays(today, -i)
		day := Summarize(date, buckets[date.Format(models.DateLayout)])
		adjust(&day)
		days = append(days, day)
	}
	return days, nil
}

// ConversionRate covers the trailing 31-day window.
func (a *Aggregator) ConversionRate(ctx context.Context) (float64, error) {
	records, err := a.monthWindow(ctx)
	if err != nil {
		return 0, err
	}
	return ConversionRate(records), nil
}

// AverageResponseTime covers the trailing 31-day window.
func (a *Aggregator) AverageResponseTime(ctx context.Context) (time.Duration, error) {
	records, err := a.monthWindow(ctx)
	if err != nil {
		return 0, err
	}
	return AverageResponseTime(records), nil
}

func (a *Aggregator) monthWindow(ctx context.Context) ([]models.Outreach, error) {
	today := a.Today()
	return a.fetch(ctx, a.addDays(today, -MonthDays), a.addDays(today, 1))
}

// Dashboard bundles the weekly and monthly summaries.
type Dashboard struct {
	Weekly  models.OutreachAnalyticsSummary `json:"weekly"`
	Monthly models.OutreachAnalyticsSummary `json:"monthly"`
}

// Overview loads the weekly and monthly summaries concurrently.
func (a *Aggregator) Overview(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.Weekly, err = a.Weekly(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.Monthly, err = a.Monthly(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}
