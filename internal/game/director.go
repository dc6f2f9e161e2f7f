package game

import "log"

// Telemetry is the periodic diagnostic snapshot pushed over the bus.
type Telemetry struct {
	BPM           float64
	Volume        float64
	BeatCount     int
	NextBeatIndex int
	SegmentCount  int
}

// Director advances the whole scheduler by one tick per frame. It owns
// all scheduler state exclusively; collaborators only ever see events
// and spawn requests. Single-threaded by contract.
type Director struct {
	timeline *Timeline

	tempo    *TempoEstimator
	cursor   *BeatCursor
	segments *SegmentTracker
	loudness *LoudnessTracker
	spawner  *SpawnScheduler
	notes    *NoteLaneMapper

	bus     *EventBus
	enemies EnemyManager

	lastPlayTime  float64
	ticked        bool
	lastBeat      Beat
	lastBeatTime  float64
	haveBeat      bool
	beatCount     int
	lastTelemetry float64
	sentTelemetry bool
}

// NewDirector wires the scheduler against an enemy manager and an event
// bus. Per-system RNG seeds are derived from the master seed so replays
// are deterministic.
func NewDirector(seed uint64, enemies EnemyManager, bus *EventBus) *Director {
	if bus == nil {
		bus = NewEventBus()
	}
	d := &Director{
		tempo:    NewTempoEstimator(),
		cursor:   NewBeatCursor(),
		segments: NewSegmentTracker(),
		loudness: NewLoudnessTracker(),
		spawner:  NewSpawnScheduler(splitmix64(seed ^ 0x5BAD)),
		notes:    NewNoteLaneMapper(splitmix64(seed ^ 0x12A7E)),
		bus:      bus,
		enemies:  enemies,
	}
	d.spawner.bus = bus
	return d
}

// Bus exposes the event bus so hosts can subscribe sinks.
func (d *Director) Bus() *EventBus { return d.bus }

// Timeline returns the currently loaded timeline, nil before any load.
func (d *Director) Timeline() *Timeline { return d.timeline }

// BPM is the current tempo estimate, DefaultBPM before any timeline.
func (d *Director) BPM() float64 { return d.tempo.Current }

// Volume is the current smoothed loudness.
func (d *Director) Volume() float64 { return d.loudness.Current }

// LoadTimeline (re)loads the analysis payload. This is the single
// cancellation point: cursor, tempo, segment, and loudness state are
// reset atomically so stale indices from a previous track cannot leak
// into the new one. Degraded payloads load anyway; the error only says
// what was degraded.
func (d *Director) LoadTimeline(raw map[string]any) error {
	tl, err := LoadTimeline(raw)
	if err != nil {
		log.Printf("timeline degraded: %v", err)
	}
	d.timeline = tl
	d.resetTrackState()
	d.tempo.Reset()
	d.tempo.EstimateAverage(tl)
	return err
}

// LoadTimelineJSON is the []byte convenience wrapper around LoadTimeline.
func (d *Director) LoadTimelineJSON(data []byte) error {
	tl, err := ParseTimeline(data)
	if err != nil {
		log.Printf("timeline degraded: %v", err)
		if tl == nil {
			return err
		}
	}
	d.timeline = tl
	d.resetTrackState()
	d.tempo.Reset()
	d.tempo.EstimateAverage(tl)
	return err
}

func (d *Director) resetTrackState() {
	d.cursor.Reset()
	d.segments.Reset()
	d.loudness.Reset()
	d.spawner.Reset()
	d.notes.Reset()
	d.lastPlayTime = 0
	d.ticked = false
	d.haveBeat = false
	d.beatCount = 0
	d.lastTelemetry = 0
	d.sentTelemetry = false
}

// Tick advances the scheduler to the given playback time. Ordering
// within a tick: loudness sampling, then beat evaluation, then segment
// evaluation, so a crossing's effect on instantaneous BPM is visible to
// the same tick's policy reads.
func (d *Director) Tick(playTime float64) {
	dt := 0.0
	if d.ticked {
		dt = playTime - d.lastPlayTime
	}
	if dt < 0 {
		// Host clock wrapped: treat as a track loop.
		d.loopReset()
		dt = 0
	}
	d.lastPlayTime = playTime
	d.ticked = true

	if d.timeline != nil && playTime >= d.timeline.TrackDuration() {
		d.loopReset()
		return
	}

	d.sampleLoudness(playTime)

	// Beat before segment: a crossing's instantaneous BPM must be
	// visible to this tick's policy reads. The spawn decision itself
	// waits until the segment policy for this tick is settled.
	beat, idx, crossed := d.evaluateBeat(playTime, dt)
	d.evaluateSegment(playTime)
	if crossed {
		d.emitBeat(beat, idx, playTime)
	}
	d.spawner.TickAmbient(playTime, d.tempo.Current, d.enemies, d.notes)
	d.pushTelemetry(playTime)
}

// loopReset re-zeros the beat and segment cursors together when playback
// wraps past the end of the track. Tempo and loudness carry over.
func (d *Director) loopReset() {
	d.cursor.Reset()
	d.segments.Reset()
	d.spawner.LastSpawn = 0
	d.haveBeat = false
	d.lastBeatTime = 0
}

func (d *Director) sampleLoudness(playTime float64) {
	strength := DefaultStrength
	haveBeat := d.haveBeat
	sinceBeat := -1.0
	if haveBeat {
		strength = d.lastBeat.Strength
		sinceBeat = playTime - d.lastBeatTime
		if sinceBeat >= BeatFadeWindow {
			haveBeat = false
		}
	}
	_, changed := d.loudness.Sample(beatRawVolume(strength, haveBeat))
	if changed {
		d.bus.Emit(Event{
			Type:   EventLoudnessPulse,
			Energy: beatIntensity(strength, d.tempo.Current, sinceBeat),
		})
	}
}

func (d *Director) evaluateBeat(playTime, dt float64) (Beat, int, bool) {
	beat, idx, crossed := d.cursor.Advance(d.timeline, playTime, dt)
	if !crossed {
		return Beat{}, 0, false
	}
	if idx == 0 {
		d.tempo.FirstBeat()
	} else {
		d.tempo.EstimateInstant(d.timeline.Beats[idx-1], beat)
	}
	d.lastBeat = beat
	d.lastBeatTime = playTime
	d.haveBeat = true
	d.beatCount++
	d.bus.Emit(Event{Type: EventBeatCrossed, Beat: beat, Index: idx})
	return beat, idx, true
}

// emitBeat runs the on-crossing emissions once the tick's segment policy
// is settled: lane activation for visualization, then the spawn batch.
func (d *Director) emitBeat(beat Beat, _ int, playTime float64) {
	seg, haveSeg := d.segments.ActiveSegment(d.timeline)
	if note, energy, fired := d.notes.Update(seg, haveSeg, playTime); fired {
		d.bus.Emit(Event{Type: EventLaneActivated, Note: note, Energy: energy})
	}
	d.spawner.OnBeat(beat, d.tempo.Current, d.segments.ActiveType(), playTime, d.enemies, d.notes)
}

func (d *Director) evaluateSegment(playTime float64) {
	seg, changed := d.segments.Update(d.timeline, playTime)
	if !changed {
		return
	}
	d.spawner.Policy = PolicyFor(seg.Type)
	d.spawner.HighEnergy = seg.Type == "chorus" || seg.Energy > 0.6
	d.bus.Emit(Event{Type: EventSegmentChanged, Segment: seg.Type})
}

func (d *Director) pushTelemetry(playTime float64) {
	if d.sentTelemetry && playTime-d.lastTelemetry < TelemetryInterval {
		return
	}
	d.lastTelemetry = playTime
	d.sentTelemetry = true
	segCount := 0
	if d.timeline != nil {
		segCount = len(d.timeline.Segments)
	}
	d.bus.Emit(Event{Type: EventTelemetry, Stats: Telemetry{
		BPM:           d.tempo.Current,
		Volume:        d.loudness.Current,
		BeatCount:     d.beatCount,
		NextBeatIndex: d.cursor.Next,
		SegmentCount:  segCount,
	}})
}
