package game

// Tempo estimation.
const (
	DefaultBPM = 120.0

	// Inter-beat gaps outside this window are discarded as noise
	// before averaging (exclusive bounds).
	MinBeatGap = 0.1
	MaxBeatGap = 2.0

	// Instantaneous BPM outside this band falls back to the average
	// (exclusive bounds).
	MinInstantBPM = 40.0
	MaxInstantBPM = 240.0
)

// Beat cursor.
const (
	// A cursor still at index 0 after this much elapsed play, with
	// beat data present, is assumed desynchronized and resynced.
	CursorStuckWindow = 3.0
)

// Segment tracking.
const (
	SegmentCheckInterval = 0.25
)

// Loudness smoothing.
const (
	VolumeRetain    = 0.3 // fraction of previous smoothed value kept per sample
	VolumeHistoryN  = 10
	VolumeDeltaMin  = 0.05 // smallest delta that counts as a pulse
	BeatFadeWindow  = 2.0  // seconds over which a crossed beat's intensity decays
	NeutralVolume   = 0.5
	DefaultStrength = 0.5
)

// Spawn scheduling.
const (
	BeatStallWindow    = 3.0 // beat path forces a spawn after this long without one
	AmbientStallWindow = 1.5 // every-tick fallback forces a spawn after this long
	BeatPowerupChance  = 0.20
	AmbPowerupChance   = 0.10

	// Adaptive capacity: 25 live entities at <=60 BPM rising to 50 at >=180.
	CapBase     = 25.0
	CapBonusMax = 25.0
	CapBPMFloor = 60.0
	CapBPMStep  = 5.0

	MaxSpawnStrength = 0.8
)

// Note lane mapping.
const (
	PitchActiveMin    = 0.3 // pitch energy above this marks the note active
	LaneEventInterval = 0.2 // min playback seconds between lane activations
	NoteRefreshWindow = 0.5 // min playback seconds between heuristic chord refreshes
)

// Fallback timeline used when the analysis payload carries no segments.
const FallbackDuration = 180.0

// Telemetry push cadence (seconds).
const TelemetryInterval = 1.0
