package game

import (
	"math"

	"github.com/google/uuid"
)

// EntityID identifies a spawned entity. NoEntity means the manager
// refused or failed the spawn; the scheduler never retries.
type EntityID = uuid.UUID

var NoEntity = uuid.Nil

// EnemyManager is the external pool that owns spawned entities. The
// scheduler only hands it requests and reads back the live count.
type EnemyManager interface {
	Spawn(strength float64, note string) EntityID
	LivingCount() int
	HasLivePowerup() bool
	SpawnPowerup() EntityID
}

// SpawnScheduler converts beat strength, tempo, and segment pressure
// into spawn requests, with a time-based fallback when beat-driven
// spawns stall. It never creates entities itself.
type SpawnScheduler struct {
	rng *Rand
	bus *EventBus // optional; receives EventPowerupSpawned

	// Policy is swapped atomically on announced segment changes.
	Policy SpawnPolicy
	// HighEnergy marks chorus or high-energy segments; boosts forced
	// spawn strength.
	HighEnergy bool

	LastSpawn float64
}

func NewSpawnScheduler(seed uint64) *SpawnScheduler {
	return &SpawnScheduler{
		rng:    NewRand(seed),
		Policy: PolicyFor("unknown"),
	}
}

// Reset clears spawn timing for a fresh track.
func (ss *SpawnScheduler) Reset() {
	ss.LastSpawn = 0
	ss.HighEnergy = false
	ss.Policy = PolicyFor("unknown")
}

// Cap is the adaptive capacity ceiling: 25 live entities at or below 60
// BPM, rising linearly to 50 at 180 BPM and above.
func (ss *SpawnScheduler) Cap(bpm float64) int {
	return int(math.Round(CapBase + clampF((bpm-CapBPMFloor)/CapBPMStep, 0, CapBonusMax)))
}

// OnBeat runs the beat-triggered spawn path for one crossing. Returns
// the number of accepted spawn requests.
func (ss *SpawnScheduler) OnBeat(beat Beat, bpm float64, segType string, playTime float64, mgr EnemyManager, notes *NoteLaneMapper) int {
	count := ss.strengthTier(beat.Strength)
	count = int(math.Round(float64(count) * bpm / 120.0))

	switch segType {
	case "chorus":
		count += 2
	case "verse":
		count++
	case "bridge":
		if ss.rng.Float64() < 0.5 {
			count--
		}
	}
	if count < 0 {
		count = 0
	}
	perBeatCap := int(math.Round(float64(ss.Policy.MaxPerBeat) * bpm / 120.0))
	if count > perBeatCap {
		count = perBeatCap
	}

	if count <= 0 {
		// Stall guard: the beat path forces at least one spawn when
		// nothing has spawned for a while, whatever the tiers said.
		if playTime-ss.LastSpawn > BeatStallWindow {
			return ss.forceSpawn(playTime, bpm, BeatPowerupChance, mgr, notes)
		}
		return 0
	}

	spawned := 0
	limit := ss.Cap(bpm)
	for i := 0; i < count; i++ {
		if mgr.LivingCount() >= limit {
			break
		}
		s := clampF(beat.Strength+ss.rng.RangeF(-0.1, 0.1), 0, MaxSpawnStrength)
		if mgr.Spawn(s, notes.RandomActiveNote()) != NoEntity {
			spawned++
		}
	}
	if spawned > 0 {
		ss.LastSpawn = playTime
	}
	return spawned
}

// TickAmbient is the every-frame fallback: when no spawn has landed for
// AmbientStallWindow seconds it forces one regardless of beat state.
func (ss *SpawnScheduler) TickAmbient(playTime, bpm float64, mgr EnemyManager, notes *NoteLaneMapper) int {
	if playTime-ss.LastSpawn <= AmbientStallWindow {
		return 0
	}
	return ss.forceSpawn(playTime, bpm, AmbPowerupChance, mgr, notes)
}

// forceSpawn is the shared fallback body: occasionally a powerup (never
// while one is live), otherwise a single enemy of moderate strength.
func (ss *SpawnScheduler) forceSpawn(playTime, bpm, powerupChance float64, mgr EnemyManager, notes *NoteLaneMapper) int {
	if ss.rng.Float64() < powerupChance && !mgr.HasLivePowerup() {
		if mgr.SpawnPowerup() != NoEntity {
			ss.LastSpawn = playTime
			if ss.bus != nil {
				ss.bus.Emit(Event{Type: EventPowerupSpawned})
			}
			return 1
		}
		return 0
	}
	if mgr.LivingCount() >= ss.Cap(bpm) {
		return 0
	}
	s := ss.rng.RangeF(0.3, 0.7)
	if ss.HighEnergy {
		s = clampF(s+0.1, 0, MaxSpawnStrength)
	}
	if mgr.Spawn(s, notes.RandomActiveNote()) == NoEntity {
		return 0
	}
	ss.LastSpawn = playTime
	return 1
}

// strengthTier maps beat strength to a base spawn count.
func (ss *SpawnScheduler) strengthTier(strength float64) int {
	switch {
	case strength > 0.7:
		return 3
	case strength > 0.45:
		return 2
	case strength > 0.25:
		return 1
	default:
		if ss.rng.Float64() < 0.3 {
			return 1
		}
		return 0
	}
}
