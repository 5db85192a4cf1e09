package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/sartorproj/goforecast/stats"
	"github.com/sartorproj/goforecast/timeseries"
)

var (
	// ErrNoObservations indicates an empty input series.
	ErrNoObservations = errors.New("series has no observations")

	// ErrOnsetNotReached indicates no observation reaches the configured
	// onset threshold.
	ErrOnsetNotReached = errors.New("no observation reaches the onset threshold")

	// ErrAllTruncated indicates truncation removed every observation.
	ErrAllTruncated = errors.New("truncation removed every observation")

	// ErrTooShort indicates too few observations for stationarity testing.
	ErrTooShort = errors.New("series too short for stationarity testing")

	// ErrUndefinedValues indicates NaN where defined values are required.
	ErrUndefinedValues = errors.New("series contains undefined values")
)

// Config controls the conditioning stages. The zero value disables
// truncation and smoothing, skips seasonal differencing, and tests
// stationarity at the 5% level.
type Config struct {
	// Cutoff drops observations before this instant. The zero time
	// disables date truncation.
	Cutoff time.Time

	// OnsetThreshold, when positive, truncates the series at the first
	// observation reaching the threshold. Ignored when Cutoff is set.
	// The sparse pre-onset segment of a count series carries no signal
	// and destabilizes variance estimates.
	OnsetThreshold float64

	// HalfWindow is the centered moving-average half-window, smoothing
	// over 2*HalfWindow+1 observations. Zero disables smoothing.
	HalfWindow int

	// Period is the seasonal period for the differencing decision, e.g.
	// 7 for daily data with a weekly cycle. Values below 2 disable
	// seasonal differencing.
	Period int

	// Transform overrides the automatic power transform choice. Nil
	// chooses from the data: square root when the series contains
	// zeros, log otherwise.
	Transform *timeseries.PowerTransform

	// Alpha is the significance level for the stationarity tests.
	// Values outside (0, 1) fall back to 0.05.
	Alpha float64
}

// Result collects the output of every conditioning stage.
type Result struct {
	// Raw is the input series, untouched.
	Raw *timeseries.Series

	// Truncated is the series after cutoff or onset truncation. It is
	// the input itself when no truncation was configured.
	Truncated *timeseries.Series

	// Weekday is the weekday-effect diagnostic estimated on the
	// truncated series.
	Weekday *stats.WeekdayEffectResult

	// Smoothed is the centered moving average with NaN at the window
	// boundaries, nil when smoothing is disabled.
	Smoothed *timeseries.Series

	// Transform is the configured override when set, otherwise chosen
	// from the truncated series, so a count series with zeros keeps the
	// square root even when smoothing removes the zeros. The inverse
	// must stay valid on the original scale.
	Transform timeseries.PowerTransform

	// Transformed is the conditioned series handed to model fitting:
	// smoothed when enabled, trimmed of boundary NaN, and transformed.
	Transformed *timeseries.Series

	// Decision is the differencing-order decision for Transformed.
	Decision *DifferencingDecision
}

// Conditioner runs the conditioning stages in order: truncation, weekday
// diagnostic, smoothing, variance-stabilizing transform, differencing
// decision. Every stage allocates fresh series; the input is never
// modified.
type Conditioner struct {
	cfg Config
	log *slog.Logger
}

// New returns a Conditioner for the given configuration. A nil logger
// falls back to slog.Default().
func New(cfg Config, logger *slog.Logger) *Conditioner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Alpha <= 0 || cfg.Alpha >= 1 {
		cfg.Alpha = 0.05
	}
	if cfg.HalfWindow < 0 {
		cfg.HalfWindow = 0
	}
	return &Conditioner{cfg: cfg, log: logger}
}

// Run conditions the series and reports each stage's output. The context
// is attached to log records for correlation; Run has no cancellation
// points.
func (c *Conditioner) Run(ctx context.Context, s *timeseries.Series) (*Result, error) {
	if s == nil || s.Len() == 0 {
		return nil, ErrNoObservations
	}

	res := &Result{Raw: s}

	truncated, err := c.truncate(ctx, s)
	if err != nil {
		return nil, err
	}
	res.Truncated = truncated

	weekday, err := stats.WeekdayEffect(truncated)
	if err != nil {
		return nil, fmt.Errorf("weekday effect: %w", err)
	}
	res.Weekday = weekday
	c.log.InfoContext(ctx, "weekday effect estimated",
		"imbalance", weekday.Imbalance,
		"min_weekday", weekday.MinWeekday().String(),
		"max_weekday", weekday.MaxWeekday().String(),
	)

	work := truncated
	if c.cfg.HalfWindow > 0 {
		res.Smoothed = truncated.CenteredMovingAverage(c.cfg.HalfWindow)
		work = res.Smoothed.TrimUndefined()
		c.log.InfoContext(ctx, "smoothed series",
			"window", 2*c.cfg.HalfWindow+1,
			"defined", work.Len(),
		)
		if work.Len() == 0 {
			return nil, fmt.Errorf("smoothing left no defined observations: %w", ErrTooShort)
		}
	}

	if c.cfg.Transform != nil {
		res.Transform = *c.cfg.Transform
	} else {
		res.Transform = timeseries.ChooseTransform(truncated)
	}
	res.Transformed = res.Transform.Apply(work)
	c.log.InfoContext(ctx, "applied power transform",
		"lambda", res.Transform.Lambda,
		"log", res.Transform.IsLog(),
	)

	decision, err := SelectDifferencing(res.Transformed, c.cfg.Period, c.cfg.Alpha)
	if err != nil {
		return nil, fmt.Errorf("select differencing: %w", err)
	}
	res.Decision = decision

	if decision.Disagreement {
		c.log.WarnContext(ctx, "stationarity tests disagree",
			"d", decision.D,
			"seasonal_d", decision.SeasonalD,
			"kpss_stat", decision.KPSSAfter.Statistic,
			"adf_stat", decision.ADFAfter.Statistic,
		)
	} else {
		c.log.InfoContext(ctx, "differencing order selected",
			"d", decision.D,
			"seasonal_d", decision.SeasonalD,
			"confirmed", decision.Confirmed,
		)
	}

	return res, nil
}

func (c *Conditioner) truncate(ctx context.Context, s *timeseries.Series) (*timeseries.Series, error) {
	cutoff := c.cfg.Cutoff
	if cutoff.IsZero() {
		if c.cfg.OnsetThreshold <= 0 {
			return s, nil
		}
		onset, err := DetectOnset(s, c.cfg.OnsetThreshold)
		if err != nil {
			return nil, err
		}
		cutoff = onset
	}

	truncated := s.TruncateBefore(cutoff)
	if truncated.Len() == 0 {
		return nil, fmt.Errorf("%w: cutoff %s", ErrAllTruncated, cutoff.Format("2006-01-02"))
	}
	c.log.InfoContext(ctx, "truncated series",
		"cutoff", cutoff.Format("2006-01-02"),
		"kept", truncated.Len(),
		"dropped", s.Len()-truncated.Len(),
	)
	return truncated, nil
}

// DetectOnset returns the timestamp of the first observation at or above
// threshold, for configurations that anchor truncation to a magnitude
// instead of a date. Undefined values are skipped.
func DetectOnset(s *timeseries.Series, threshold float64) (time.Time, error) {
	for i, v := range s.Values {
		if !math.IsNaN(v) && v >= threshold {
			return s.Timestamps[i], nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: threshold %g", ErrOnsetNotReached, threshold)
}
