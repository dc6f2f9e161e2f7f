package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spawnReq struct {
	strength float64
	note     string
}

// fakeManager records spawn requests and reports a scripted live count.
type fakeManager struct {
	spawns    []spawnReq
	powerups  int
	living    int
	hasPower  bool
	refuseAll bool
}

func (f *fakeManager) Spawn(strength float64, note string) EntityID {
	if f.refuseAll {
		return NoEntity
	}
	f.spawns = append(f.spawns, spawnReq{strength: strength, note: note})
	f.living++
	return uuid.New()
}

func (f *fakeManager) LivingCount() int { return f.living }

func (f *fakeManager) HasLivePowerup() bool { return f.hasPower }

func (f *fakeManager) SpawnPowerup() EntityID {
	if f.refuseAll {
		return NoEntity
	}
	f.powerups++
	f.hasPower = true
	return uuid.New()
}

func TestAdaptiveCap(t *testing.T) {
	t.Parallel()

	ss := NewSpawnScheduler(1)
	assert.Equal(t, 25, ss.Cap(40))
	assert.Equal(t, 25, ss.Cap(60))
	assert.Equal(t, 37, ss.Cap(120))
	assert.Equal(t, 49, ss.Cap(180))
	assert.Equal(t, 50, ss.Cap(185))
	assert.Equal(t, 50, ss.Cap(500))
}

func TestOnBeatTiers(t *testing.T) {
	t.Parallel()

	t.Run("strong beat in a chorus fills the per-beat cap", func(t *testing.T) {
		t.Parallel()
		ss := NewSpawnScheduler(7)
		ss.Policy = PolicyFor("chorus")
		mgr := &fakeManager{}
		notes := NewNoteLaneMapper(7)

		n := ss.OnBeat(Beat{Time: 0, Strength: 0.8}, 120, "chorus", 0, mgr, notes)
		// Tier 3, scaled by 120/120, +2 chorus, capped at round(5*1).
		assert.Equal(t, 5, n)
		require.Len(t, mgr.spawns, 5)
		for _, s := range mgr.spawns {
			assert.LessOrEqual(t, s.strength, MaxSpawnStrength)
			assert.GreaterOrEqual(t, s.strength, 0.0)
			assert.NotEmpty(t, s.note)
		}
	})

	t.Run("mid strength verse", func(t *testing.T) {
		t.Parallel()
		ss := NewSpawnScheduler(7)
		ss.Policy = PolicyFor("verse")
		mgr := &fakeManager{}
		n := ss.OnBeat(Beat{Strength: 0.5}, 120, "verse", 0, mgr, NewNoteLaneMapper(7))
		// Tier 2 + 1 verse bonus = 3, per-beat cap 3.
		assert.Equal(t, 3, n)
	})

	t.Run("tempo scales the per-beat cap", func(t *testing.T) {
		t.Parallel()
		ss := NewSpawnScheduler(7)
		ss.Policy = PolicyFor("verse")
		mgr := &fakeManager{}
		n := ss.OnBeat(Beat{Strength: 0.8}, 240, "verse", 0, mgr, NewNoteLaneMapper(7))
		// Tier 3 doubled by 240/120 is 6, +1 verse = 7; cap round(3*2)=6.
		assert.Equal(t, 6, n)
	})
}

func TestSpawnNeverExceedsCap(t *testing.T) {
	t.Parallel()

	t.Run("at capacity no spawn is requested", func(t *testing.T) {
		t.Parallel()
		ss := NewSpawnScheduler(3)
		ss.Policy = PolicyFor("chorus")
		mgr := &fakeManager{living: ss.Cap(120)}
		n := ss.OnBeat(Beat{Strength: 0.9}, 120, "chorus", 0, mgr, NewNoteLaneMapper(3))
		assert.Zero(t, n)
		assert.Empty(t, mgr.spawns)
	})

	t.Run("partial batch stops at capacity", func(t *testing.T) {
		t.Parallel()
		ss := NewSpawnScheduler(3)
		ss.Policy = PolicyFor("chorus")
		mgr := &fakeManager{living: ss.Cap(120) - 2}
		n := ss.OnBeat(Beat{Strength: 0.9}, 120, "chorus", 0, mgr, NewNoteLaneMapper(3))
		assert.Equal(t, 2, n)
	})
}

func TestStallFallbacks(t *testing.T) {
	t.Parallel()

	t.Run("ambient path holds while spawns are fresh", func(t *testing.T) {
		t.Parallel()
		ss := NewSpawnScheduler(11)
		ss.LastSpawn = 10.0
		mgr := &fakeManager{}
		n := ss.TickAmbient(11.0, 120, mgr, NewNoteLaneMapper(11))
		assert.Zero(t, n)
	})

	t.Run("ambient path forces a spawn after the stall window", func(t *testing.T) {
		t.Parallel()
		ss := NewSpawnScheduler(11)
		ss.LastSpawn = 10.0
		mgr := &fakeManager{}
		n := ss.TickAmbient(10.0+AmbientStallWindow+0.1, 120, mgr, NewNoteLaneMapper(11))
		assert.Equal(t, 1, n)
		assert.InDelta(t, 10.0+AmbientStallWindow+0.1, ss.LastSpawn, 1e-9)
		if len(mgr.spawns) == 1 {
			s := mgr.spawns[0].strength
			assert.GreaterOrEqual(t, s, 0.3)
			assert.LessOrEqual(t, s, MaxSpawnStrength)
		} else {
			assert.Equal(t, 1, mgr.powerups)
		}
	})

	t.Run("beat path forces a spawn when tiers produced nothing", func(t *testing.T) {
		t.Parallel()
		ss := NewSpawnScheduler(13)
		ss.Policy = PolicyFor("bridge")
		mgr := &fakeManager{}
		// Weak beat, long stall: the guard must fire even though the
		// tier rolled zero.
		n := ss.OnBeat(Beat{Strength: 0.1}, 120, "bridge", BeatStallWindow+1, mgr, NewNoteLaneMapper(13))
		assert.GreaterOrEqual(t, n, 0)
		total := len(mgr.spawns) + mgr.powerups
		if n > 0 {
			assert.Equal(t, 1, total)
		}
	})

	t.Run("refused spawns are not retried", func(t *testing.T) {
		t.Parallel()
		ss := NewSpawnScheduler(11)
		mgr := &fakeManager{refuseAll: true}
		n := ss.TickAmbient(AmbientStallWindow+1, 120, mgr, NewNoteLaneMapper(11))
		assert.Zero(t, n)
		assert.Zero(t, ss.LastSpawn, "a refused spawn must not reset the stall clock")
	})

	t.Run("no second powerup while one is live", func(t *testing.T) {
		t.Parallel()
		ss := NewSpawnScheduler(11)
		mgr := &fakeManager{hasPower: true}
		for i := 0; i < 50; i++ {
			ss.LastSpawn = -10
			ss.TickAmbient(float64(i), 120, mgr, NewNoteLaneMapper(11))
		}
		assert.Zero(t, mgr.powerups)
	})
}
