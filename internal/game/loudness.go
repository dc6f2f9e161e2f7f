package game

// LoudnessTracker smooths an instantaneous volume signal with an
// exponential filter and keeps a short rolling history for windowed
// analytics. The history plays no part in the smoothing itself.
type LoudnessTracker struct {
	Current float64
	history []float64
}

func NewLoudnessTracker() *LoudnessTracker {
	return &LoudnessTracker{
		Current: NeutralVolume,
		history: make([]float64, 0, VolumeHistoryN),
	}
}

func (lt *LoudnessTracker) Reset() {
	lt.Current = NeutralVolume
	lt.history = lt.history[:0]
}

// Sample folds a raw volume reading into the smoothed value and reports
// whether the move was large enough to count as a pulse.
func (lt *LoudnessTracker) Sample(raw float64) (float64, bool) {
	prev := lt.Current
	smoothed := clampF(VolumeRetain*prev+(1-VolumeRetain)*raw, 0, 1)
	lt.Current = smoothed

	if len(lt.history) == VolumeHistoryN {
		copy(lt.history, lt.history[1:])
		lt.history = lt.history[:VolumeHistoryN-1]
	}
	lt.history = append(lt.history, smoothed)

	delta := smoothed - prev
	if delta < 0 {
		delta = -delta
	}
	return smoothed, delta > VolumeDeltaMin
}

// WindowMean averages the rolling history, NeutralVolume when empty.
func (lt *LoudnessTracker) WindowMean() float64 {
	if len(lt.history) == 0 {
		return NeutralVolume
	}
	sum := 0.0
	for _, v := range lt.history {
		sum += v
	}
	return sum / float64(len(lt.history))
}

// beatIntensity blends the last crossed beat's strength with the current
// tempo. The beat's contribution decays linearly to zero over
// BeatFadeWindow seconds after the crossing.
func beatIntensity(strength, bpm, sinceBeat float64) float64 {
	if sinceBeat < 0 || sinceBeat >= BeatFadeWindow {
		return clampF(0.2+bpm/200.0*0.3, 0, 1)
	}
	decay := 1 - sinceBeat/BeatFadeWindow
	return clampF(0.2+strength*0.5*decay+bpm/200.0*0.3, 0, 1)
}

// beatRawVolume amplifies beat energy into the raw volume signal fed to
// the smoother. Neutral 0.5 when no beat has been seen.
func beatRawVolume(strength float64, haveBeat bool) float64 {
	if !haveBeat {
		return NeutralVolume
	}
	return minF(1, strength*2)
}
