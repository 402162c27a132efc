package stats

import (
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/canvaswizards/canvas-moderator/internal/report"
)

// SignificanceThreshold is the raw p-value cutoff for flagging a grader.
// Deliberately uncorrected for multiple comparisons; that is a documented
// limitation of the moderation pass, not something to fix silently.
const SignificanceThreshold = 0.05

// GraderStats is one grader's comparison against the pooled rest for a
// single metric.
type GraderStats struct {
	Grader string
	Median float64
	Mean   float64
	P      float64
}

// Result is one full detector pass over a metric column.
type Result struct {
	Metric       string
	GlobalMedian float64
	GlobalMean   float64
	Rows         []GraderStats
	Significant  []GraderStats
}

// SignificantFor returns the stats row for a grader if it sits under the
// significance threshold.
func (r Result) SignificantFor(grader string) (GraderStats, bool) {
	for _, row := range r.Significant {
		if row.Grader == grader {
			return row, true
		}
	}
	return GraderStats{}, false
}

// Detector compares each grader's metric distribution against the pooled
// distribution of every other grader's rows.
type Detector struct {
	logger zerolog.Logger
}

// NewDetector constructs a grader outlier detector.
func NewDetector(logger zerolog.Logger) *Detector {
	return &Detector{logger: logger.With().Str("component", "outlier_detector").Logger()}
}

// Detect coerces the metric column to numbers (dropping rows that do not
// parse), runs the two-sided rank test per grader, and returns one stats row
// per non-degenerate grader sorted ascending by median, plus the subset under
// the significance threshold in the same order.
func (d *Detector) Detect(table *report.Table, metric string) (Result, error) {
	values, graders := coerceMetric(table, metric)

	result := Result{Metric: metric}
	if len(values) == 0 {
		return result, nil
	}

	result.GlobalMedian = Median(values)
	result.GlobalMean = stat.Mean(values, nil)

	for _, grader := range distinct(graders) {
		var own, rest []float64
		for i, g := range graders {
			if g == grader {
				own = append(own, values[i])
			} else {
				rest = append(rest, values[i])
			}
		}

		_, p, err := MannWhitneyU(own, rest)
		if err != nil {
			// Degenerate group: excluded from this metric's table, not fatal.
			d.logger.Debug().Err(err).Str("grader", grader).Str("metric", metric).Msg("grader skipped")
			continue
		}

		result.Rows = append(result.Rows, GraderStats{
			Grader: grader,
			Median: Median(own),
			Mean:   stat.Mean(own, nil),
			P:      p,
		})
	}

	sort.SliceStable(result.Rows, func(i, j int) bool {
		return result.Rows[i].Median < result.Rows[j].Median
	})

	for _, row := range result.Rows {
		if row.P < SignificanceThreshold {
			result.Significant = append(result.Significant, row)
		}
	}

	d.logger.Info().
		Str("metric", metric).
		Int("graders", len(result.Rows)).
		Int("significant", len(result.Significant)).
		Msg("grader analysis complete")

	return result, nil
}

// coerceMetric extracts the metric and grader columns for rows whose metric
// cell parses as a number.
func coerceMetric(table *report.Table, metric string) (values []float64, graders []string) {
	for _, row := range table.Rows {
		v, ok := row.Float(metric)
		if !ok {
			continue
		}
		values = append(values, v)
		graders = append(graders, row[report.ColGrader])
	}
	return values, graders
}

func distinct(graders []string) []string {
	seen := make(map[string]struct{}, len(graders))
	var out []string
	for _, g := range graders {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}
