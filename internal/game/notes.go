package game

// Chromatic lane space. Pitch indices map in modulo 12.
var chromaticScale = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var defaultChord = []string{"C", "E", "G"}

// chordFor is the heuristic chord table used when no pitch data exists.
// Returns the note set and the base lane energy; the final energy adds a
// random spread of 0.3 on top of the base.
func chordFor(segType string) ([]string, float64) {
	switch segType {
	case "chorus":
		return []string{"C", "D", "E", "G", "A"}, 0.7 // pentatonic
	case "verse":
		return []string{"E", "G", "B", "D"}, 0.4
	case "bridge":
		return []string{"A", "C", "E"}, 0.3
	default:
		return defaultChord, 0.4
	}
}

// NoteLaneMapper maintains the pool of currently active notes and decides
// which lane fires with what energy. Active notes tag spawned entities;
// lane activations drive the visualization.
type NoteLaneMapper struct {
	rng    *Rand
	active []string

	lastLane    float64
	laneFired   bool
	lastRefresh float64
	refreshed   bool
}

func NewNoteLaneMapper(seed uint64) *NoteLaneMapper {
	return &NoteLaneMapper{
		rng:    NewRand(seed),
		active: append([]string(nil), defaultChord...),
	}
}

// Reset restores the default chord and clears the rate-limit clocks.
func (nm *NoteLaneMapper) Reset() {
	nm.active = append(nm.active[:0], defaultChord...)
	nm.lastLane = 0
	nm.laneFired = false
	nm.lastRefresh = 0
	nm.refreshed = false
}

// ActiveNotes exposes the current pool (read-only by convention).
func (nm *NoteLaneMapper) ActiveNotes() []string {
	return nm.active
}

// RandomActiveNote draws uniformly from the active pool, falling back to
// the full chromatic scale if the pool is ever empty.
func (nm *NoteLaneMapper) RandomActiveNote() string {
	if len(nm.active) == 0 {
		return chromaticScale[nm.rng.Intn(len(chromaticScale))]
	}
	return nm.active[nm.rng.Intn(len(nm.active))]
}

// Update refreshes the active pool from the current segment and picks at
// most one lane activation. Pitch data drives the mapping when present;
// otherwise the chord table takes over. Lane activations are limited to
// one per LaneEventInterval of playback; heuristic pool refreshes to one
// per NoteRefreshWindow, so the pool never churns faster than gameplay
// can react.
func (nm *NoteLaneMapper) Update(seg Segment, haveSeg bool, playTime float64) (string, float64, bool) {
	if haveSeg && len(seg.Pitches) > 0 {
		return nm.updateFromPitches(seg.Pitches, playTime)
	}
	segType := "unknown"
	if haveSeg {
		segType = seg.Type
	}
	return nm.updateHeuristic(segType, playTime)
}

func (nm *NoteLaneMapper) updateFromPitches(pitches []float64, playTime float64) (string, float64, bool) {
	var qualifying []string
	best := -1
	bestEnergy := 0.0
	for i, e := range pitches {
		if e <= PitchActiveMin {
			continue
		}
		qualifying = append(qualifying, chromaticScale[i%12])
		if e > bestEnergy {
			bestEnergy = e
			best = i
		}
	}
	if best < 0 {
		return "", 0, false
	}
	nm.active = qualifying
	if !nm.laneReady(playTime) {
		return "", 0, false
	}
	nm.markLane(playTime)
	return chromaticScale[best%12], clampF(bestEnergy, 0, 1), true
}

func (nm *NoteLaneMapper) updateHeuristic(segType string, playTime float64) (string, float64, bool) {
	if !nm.laneReady(playTime) {
		return "", 0, false
	}
	chord, base := chordFor(segType)
	if !nm.refreshed || playTime-nm.lastRefresh >= NoteRefreshWindow {
		nm.active = append(nm.active[:0], chord...)
		nm.lastRefresh = playTime
		nm.refreshed = true
	}
	nm.markLane(playTime)
	note := chord[nm.rng.Intn(len(chord))]
	return note, clampF(base+nm.rng.Float64()*0.3, 0, 1), true
}

func (nm *NoteLaneMapper) laneReady(playTime float64) bool {
	return !nm.laneFired || playTime-nm.lastLane >= LaneEventInterval
}

func (nm *NoteLaneMapper) markLane(playTime float64) {
	nm.lastLane = playTime
	nm.laneFired = true
}
