package game

// SpawnPolicy is the per-segment spawn pressure preset. Applied
// atomically when a segment type change is announced.
type SpawnPolicy struct {
	RateMultiplier float64
	MaxPerBeat     int
}

// PolicyFor returns the spawn preset for a segment type.
func PolicyFor(segType string) SpawnPolicy {
	switch segType {
	case "chorus":
		return SpawnPolicy{RateMultiplier: 2.0, MaxPerBeat: 5}
	case "verse":
		return SpawnPolicy{RateMultiplier: 1.5, MaxPerBeat: 3}
	case "bridge":
		return SpawnPolicy{RateMultiplier: 1.0, MaxPerBeat: 2}
	default:
		return SpawnPolicy{RateMultiplier: 1.5, MaxPerBeat: 3}
	}
}

// SegmentTracker finds the active structural segment for the current
// time, debounced, and suppresses duplicate announcements when the
// segment type repeats across an index change.
type SegmentTracker struct {
	Current       int
	lastAnnounced string
	lastCheck     float64
	checked       bool
}

func NewSegmentTracker() *SegmentTracker {
	return &SegmentTracker{Current: -1}
}

// Reset forgets tracked state. Called on timeline reload and track loop.
func (st *SegmentTracker) Reset() {
	st.Current = -1
	st.lastAnnounced = ""
	st.lastCheck = 0
	st.checked = false
}

// ActiveType returns the most recently announced segment type, or
// "unknown" before any announcement.
func (st *SegmentTracker) ActiveType() string {
	if st.lastAnnounced == "" {
		return "unknown"
	}
	return st.lastAnnounced
}

// ActiveSegment returns the segment at the tracked index, if any.
func (st *SegmentTracker) ActiveSegment(tl *Timeline) (Segment, bool) {
	if tl == nil || st.Current < 0 || st.Current >= len(tl.Segments) {
		return Segment{}, false
	}
	return tl.Segments[st.Current], true
}

// Update matches playTime against the segment list. At most one
// evaluation per SegmentCheckInterval of playback time; calls inside the
// window are no-ops. Returns the newly announced segment when its type
// changed; a repeated type across an index change updates the index
// silently, which keeps boundaries from flickering.
func (st *SegmentTracker) Update(tl *Timeline, playTime float64) (Segment, bool) {
	if tl == nil || len(tl.Segments) == 0 {
		return Segment{}, false
	}
	if st.checked && playTime-st.lastCheck < SegmentCheckInterval {
		return Segment{}, false
	}
	st.lastCheck = playTime
	st.checked = true

	idx := matchSegment(tl.Segments, playTime)
	if idx == st.Current {
		return Segment{}, false
	}
	seg := tl.Segments[idx]
	if seg.Type == st.lastAnnounced {
		// Same type, new index (verse #1 -> verse #2): no announcement.
		st.Current = idx
		return Segment{}, false
	}
	st.Current = idx
	st.lastAnnounced = seg.Type
	return seg, true
}

// matchSegment returns the first segment containing playTime, falling
// back to the last segment when nothing matches.
func matchSegment(segs []Segment, playTime float64) int {
	for i, s := range segs {
		if s.Start <= playTime && playTime < s.End {
			return i
		}
	}
	return len(segs) - 1
}
