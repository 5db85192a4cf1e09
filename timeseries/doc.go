// Package timeseries provides time series data structures and the
// conditioning primitives used before model fitting.
//
// This package includes the Series type for representing observed data,
// along with truncation, differencing, centered smoothing, and
// variance-stabilizing transforms.
//
// # Creating a Series
//
// Create a time series from a slice:
//
//	values := []float64{100, 102, 105, 103, 108, 110}
//	series := timeseries.New(values)
//
// or with explicit timestamps, which must be strictly increasing:
//
//	series, err := timeseries.NewWithTimestamps(stamps, values)
//
// # Loading from CSV
//
// The loader expects a fixed layout and fails fast on malformed input:
//
//	opts := &timeseries.CSVOptions{
//	    DateColumn:  "date",
//	    ValueColumn: "cases",
//	    DateFormat:  "2006-01-02",
//	}
//	series, err := timeseries.LoadCSV("county.csv", opts)
//
// # Conditioning
//
// Condition a raw series before fitting:
//
//	// Drop the sparse early segment
//	recent := series.TruncateBefore(cutoff)
//
//	// Smooth weekday reporting artifacts; boundary positions are NaN
//	smoothed := recent.CenteredMovingAverage(3)
//	defined := smoothed.TrimUndefined()
//
//	// Stabilize the variance; zeros force the square root
//	tr := timeseries.ChooseTransform(defined)
//	transformed := tr.Apply(defined)
//
// # Differencing
//
//	diff := series.Diff()            // First difference
//	diff2 := series.DiffN(2)         // Second difference
//	sdiff := series.SeasonalDiff(12) // Seasonal difference
//
// # Basic Statistics
//
//	mean := series.Mean()
//	std := series.Std()
//	min := series.Min()
//	max := series.Max()
//	median := series.Median()
package timeseries
