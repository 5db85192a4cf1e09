// Command goforecast conditions a count series, evaluates configured
// forecasting candidates, and writes a results document with forecasts,
// residual diagnostics, and holdout accuracy.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/sartorproj/goforecast/eval"
	"github.com/sartorproj/goforecast/pipeline"
	"github.com/sartorproj/goforecast/stats"
	"github.com/sartorproj/goforecast/timeseries"
)

type modelReport struct {
	Name      string    `json:"name"`
	Error     string    `json:"error,omitempty"`
	AICc      *float64  `json:"aicc,omitempty"`
	NumParams int       `json:"num_params,omitempty"`
	LjungBoxP *float64  `json:"ljung_box_pvalue,omitempty"`
	Adequate  bool      `json:"adequate"`
	Selected  bool      `json:"selected,omitempty"`
	RMSE      *float64  `json:"rmse,omitempty"`
	MAE       *float64  `json:"mae,omitempty"`
	MAPE      *float64  `json:"mape,omitempty"`
	Forecast  []float64 `json:"forecast,omitempty"`
	Lower     []float64 `json:"lower,omitempty"`
	Upper     []float64 `json:"upper,omitempty"`
}

type reportDoc struct {
	Source       string             `json:"source"`
	Observations int                `json:"n_obs"`
	Conditioned  int                `json:"conditioned_obs"`
	Lambda       float64            `json:"lambda"`
	TrainData    []float64          `json:"train_data"`
	TestData     []float64          `json:"test_data,omitempty"`
	Weekday      map[string]float64 `json:"weekday_means"`
	Imbalance    float64            `json:"weekday_imbalance"`
	Stationarity map[string]any     `json:"stationarity"`
	ACF          []float64          `json:"acf,omitempty"`
	PACF         []float64          `json:"pacf,omitempty"`
	Models       []modelReport      `json:"models"`
	Best         string             `json:"best"`
	Horizon      int                `json:"horizon"`
	Level        float64            `json:"interval_level"`
}

func main() {
	dataPath := flag.String("data", "", "input CSV path (required)")
	dateCol := flag.String("date-column", "date", "CSV column holding the observation date")
	valueCol := flag.String("value-column", "value", "CSV column holding the observation value")
	dateFormat := flag.String("date-format", "2006-01-02", "date layout in Go reference-time notation")
	filterCol := flag.String("filter-column", "", "optional CSV column selecting one subject among many")
	filterVal := flag.String("filter-value", "", "subject to select when -filter-column is set")
	cutoff := flag.String("cutoff", "", "drop observations before this date (same layout as -date-format)")
	onset := flag.Float64("onset", 0, "drop observations before the first value at or above this threshold")
	halfWindow := flag.Int("half-window", 0, "centered moving-average half-window (0 disables smoothing)")
	period := flag.Int("period", 0, "seasonal period, e.g. 7 for daily data with a weekly cycle")
	lambda := flag.Float64("lambda", math.NaN(), "power transform lambda override (default: chosen from the data)")
	candidatePath := flag.String("candidates", "", "candidate spec YAML path (required)")
	horizon := flag.Int("horizon", 14, "forecast steps beyond the fitted sample")
	holdout := flag.Int("holdout", 0, "observations held out for accuracy measurement")
	alpha := flag.Float64("alpha", 0.05, "significance level for stationarity and residual tests")
	jsonOut := flag.String("json", "", "results document path (default: stdout)")
	dump := flag.String("dump", "", "write the conditioned series to this CSV path")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *dataPath == "" || *candidatePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	series, err := timeseries.LoadCSV(*dataPath, &timeseries.CSVOptions{
		DateColumn:   *dateCol,
		ValueColumn:  *valueCol,
		FilterColumn: *filterCol,
		FilterValue:  *filterVal,
		DateFormat:   *dateFormat,
	})
	if err != nil {
		slog.Error("failed to load series", "error", err)
		os.Exit(1)
	}
	slog.Info("loaded series", "path", *dataPath, "observations", series.Len())

	cfg := pipeline.Config{
		OnsetThreshold: *onset,
		HalfWindow:     *halfWindow,
		Period:         *period,
		Alpha:          *alpha,
	}
	if !math.IsNaN(*lambda) {
		cfg.Transform = &timeseries.PowerTransform{Lambda: *lambda}
	}
	if *cutoff != "" {
		t, err := time.Parse(*dateFormat, *cutoff)
		if err != nil {
			slog.Error("invalid cutoff date", "cutoff", *cutoff, "error", err)
			os.Exit(1)
		}
		cfg.Cutoff = t
	}

	ctx := context.Background()
	res, err := pipeline.New(cfg, slog.Default()).Run(ctx, series)
	if err != nil {
		slog.Error("conditioning failed", "error", err)
		os.Exit(1)
	}

	if *dump != "" {
		if err := timeseries.SaveCSV(res.Transformed, *dump); err != nil {
			slog.Error("failed to write conditioned series", "path", *dump, "error", err)
			os.Exit(1)
		}
		slog.Info("wrote conditioned series", "path", *dump)
	}

	specs, err := eval.LoadSpecs(*candidatePath)
	if err != nil {
		slog.Error("failed to load candidates", "path", *candidatePath, "error", err)
		os.Exit(1)
	}
	candidates, err := eval.Candidates(specs)
	if err != nil {
		slog.Error("invalid candidate spec", "error", err)
		os.Exit(1)
	}
	slog.Info("loaded candidates", "path", *candidatePath, "count", len(candidates))

	train, test := res.Transformed.Split(*holdout)
	results := eval.Evaluate(train, candidates, eval.Options{Alpha: *alpha})
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			slog.Warn("candidate failed to fit", "name", r.Name, "error", r.Err)
			continue
		}
		slog.Info("candidate fitted",
			"name", r.Name,
			"aicc", r.AICc,
			"params", r.NumParams,
			"adequate", r.Adequate,
		)
	}

	best, err := eval.Select(results, *alpha)
	if err != nil {
		slog.Error("no adequate candidate", "error", err)
		os.Exit(1)
	}
	slog.Info("selected model", "name", best.Name, "aicc", best.AICc)

	doc := buildReport(*dataPath, res, train, test, results, best, *alpha, *horizon)
	if doc == nil {
		os.Exit(1)
	}

	out := os.Stdout
	if *jsonOut != "" {
		f, err := os.Create(*jsonOut)
		if err != nil {
			slog.Error("failed to create results document", "path", *jsonOut, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		slog.Error("failed to write results document", "error", err)
		os.Exit(1)
	}
	if *jsonOut != "" {
		slog.Info("wrote results document", "path", *jsonOut)
	}
}

// buildReport assembles the results document on the original scale: train,
// test, forecasts, and accuracy all go through the inverse transform.
func buildReport(source string, res *pipeline.Result, train, test *timeseries.Series, results []eval.Result, best *eval.Result, alpha float64, horizon int) *reportDoc {
	doc := &reportDoc{
		Source:       source,
		Observations: res.Raw.Len(),
		Conditioned:  res.Transformed.Len(),
		Lambda:       res.Transform.Lambda,
		TrainData:    res.Transform.InvertValues(train.Values),
		Weekday:      weekdayMeans(res.Weekday),
		Imbalance:    res.Weekday.Imbalance,
		Stationarity: stationarityMap(res.Decision, alpha),
		Best:         best.Name,
		Horizon:      horizon,
		Level:        0.95,
		Models:       make([]modelReport, 0, len(results)),
	}
	if test.Len() > 0 {
		doc.TestData = res.Transform.InvertValues(test.Values)
	}

	maxLag := min(24, train.Len()/2)
	doc.ACF = stats.ACF(train, maxLag)
	doc.PACF = stats.PACF(train, maxLag)

	actual := res.Transform.InvertValues(test.Values)
	for i := range results {
		r := &results[i]
		mr := modelReport{Name: r.Name, Adequate: r.Adequate}
		if r.Err != nil {
			mr.Error = r.Err.Error()
			doc.Models = append(doc.Models, mr)
			continue
		}
		mr.AICc = jsonFloat(r.AICc)
		mr.NumParams = r.NumParams
		if r.LjungBox != nil {
			mr.LjungBoxP = jsonFloat(r.LjungBox.PValue)
		}

		if test.Len() > 0 {
			fc, err := r.Forecast(test.Len())
			if err != nil {
				slog.Warn("holdout forecast failed", "name", r.Name, "error", err)
			} else if acc, err := eval.Measure(actual, res.Transform.InvertValues(fc.Mean)); err == nil {
				mr.RMSE = jsonFloat(acc.RMSE)
				mr.MAE = jsonFloat(acc.MAE)
				mr.MAPE = jsonFloat(acc.MAPE)
				slog.Info("holdout accuracy",
					"name", r.Name,
					"rmse", acc.RMSE,
					"mae", acc.MAE,
					"mape", acc.MAPE,
				)
			}
		}

		if r.Name == best.Name {
			mr.Selected = true
			fc, err := r.Forecast(horizon)
			if err != nil {
				slog.Error("forecast failed", "name", r.Name, "error", err)
				return nil
			}
			mr.Forecast = res.Transform.InvertValues(fc.Mean)
			mr.Lower = res.Transform.InvertValues(fc.Lower)
			mr.Upper = res.Transform.InvertValues(fc.Upper)
		}
		doc.Models = append(doc.Models, mr)
	}

	return doc
}

// jsonFloat returns a pointer for finite values and nil otherwise, so the
// results document never carries a value encoding/json rejects.
func jsonFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func weekdayMeans(w *stats.WeekdayEffectResult) map[string]float64 {
	means := make(map[string]float64, 7)
	for d, m := range w.Means {
		if !math.IsNaN(m) {
			means[time.Weekday(d).String()] = m
		}
	}
	return means
}

func stationarityMap(dec *pipeline.DifferencingDecision, alpha float64) map[string]any {
	st := map[string]any{
		"d":            dec.D,
		"seasonal_d":   dec.SeasonalD,
		"confirmed":    dec.Confirmed,
		"disagreement": dec.Disagreement,
	}
	if dec.KPSSBefore != nil {
		st["kpss_stat"] = dec.KPSSBefore.Statistic
		st["kpss_pvalue"] = dec.KPSSBefore.PValue
		st["kpss_stationary"] = !dec.KPSSBefore.RejectsStationarity(alpha)
	}
	if dec.ADFBefore != nil {
		st["adf_stat"] = dec.ADFBefore.Statistic
		st["adf_pvalue"] = dec.ADFBefore.PValue
		st["adf_stationary"] = dec.ADFBefore.RejectsUnitRoot(alpha)
	}
	return st
}
