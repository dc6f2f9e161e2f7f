package game

import "gonum.org/v1/gonum/stat"

// TempoEstimator derives an average BPM once per loaded timeline and an
// instantaneous BPM at every beat crossing, with outlier rejection.
type TempoEstimator struct {
	Average   float64
	Current   float64
	Estimated bool // true when Average came from beat spacing, not metadata
	computed  bool
}

func NewTempoEstimator() *TempoEstimator {
	return &TempoEstimator{Average: DefaultBPM, Current: DefaultBPM}
}

// Reset clears the computed flag so the next EstimateAverage recomputes
// against a freshly loaded timeline.
func (te *TempoEstimator) Reset() {
	te.Average = DefaultBPM
	te.Current = DefaultBPM
	te.Estimated = false
	te.computed = false
}

// EstimateAverage derives the track-wide BPM. Metadata BPM is
// authoritative when present; otherwise the mean of plausible inter-beat
// gaps is used, with 120 as the neutral default when nothing survives
// filtering. Idempotent until Reset.
func (te *TempoEstimator) EstimateAverage(tl *Timeline) float64 {
	if te.computed {
		return te.Average
	}
	te.computed = true
	te.Estimated = false
	te.Average = DefaultBPM

	if tl == nil {
		te.Current = te.Average
		return te.Average
	}
	if tl.BPM > 0 {
		te.Average = tl.BPM
		te.Current = te.Average
		return te.Average
	}

	var gaps []float64
	for i := 1; i < len(tl.Beats); i++ {
		gap := tl.Beats[i].Time - tl.Beats[i-1].Time
		if gap > MinBeatGap && gap < MaxBeatGap {
			gaps = append(gaps, gap)
		}
	}
	if len(gaps) > 0 {
		te.Average = 60.0 / stat.Mean(gaps, nil)
		te.Estimated = true
	}
	te.Current = te.Average
	return te.Average
}

// EstimateInstant recomputes the current BPM from the gap between two
// consecutive crossed beats. A non-positive gap (duplicate or
// out-of-order timestamps) leaves the current value untouched; an
// implausible rate falls back to the average.
func (te *TempoEstimator) EstimateInstant(prev, next Beat) float64 {
	gap := next.Time - prev.Time
	if gap <= 0 {
		return te.Current
	}
	instant := 60.0 / gap
	if instant > MinInstantBPM && instant < MaxInstantBPM {
		te.Current = instant
	} else {
		te.Current = te.fallback()
	}
	return te.Current
}

// FirstBeat handles the crossing at index 0, which has no predecessor.
func (te *TempoEstimator) FirstBeat() float64 {
	te.Current = te.fallback()
	return te.Current
}

func (te *TempoEstimator) fallback() float64 {
	if te.Average > 0 {
		return te.Average
	}
	return DefaultBPM
}
