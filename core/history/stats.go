package history

import "gonum.org/v1/gonum/stat"

// Stats aggregates finished dispatches.
type Stats struct {
	Total             int     `json:"total"`
	Completed         int     `json:"completed"`
	Cancelled         int     `json:"cancelled"`
	Transferred       int     `json:"transferred"`
	CompletionRate    float64 `json:"completion_rate"`
	MeanDurationMin   float64 `json:"mean_duration_min"`
	StdDevDurationMin float64 `json:"stddev_duration_min"`
}

// Compute derives aggregate statistics from a record set.
func Compute(recs []Record) Stats {
	s := Stats{Total: len(recs)}
	if len(recs) == 0 {
		return s
	}
	durations := make([]float64, 0, len(recs))
	for _, r := range recs {
		switch r.Outcome {
		case OutcomeCompleted:
			s.Completed++
		case OutcomeCancelled:
			s.Cancelled++
		case OutcomeTransferred:
			s.Transferred++
		}
		durations = append(durations, r.DurationMin)
	}
	s.CompletionRate = float64(s.Completed) / float64(s.Total)
	s.MeanDurationMin = stat.Mean(durations, nil)
	if len(durations) > 1 {
		s.StdDevDurationMin = stat.StdDev(durations, nil)
	}
	return s
}
