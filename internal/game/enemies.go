package game

import "github.com/google/uuid"

// Enemy is one live entity in the demo pool. Lifetime scales with spawn
// strength so strong beats leave longer-lived enemies on screen.
type Enemy struct {
	ID       EntityID
	Note     string
	Strength float64
	Life     float64
	Powerup  bool
}

// EnemyPool is the demo host's EnemyManager. It accepts spawn requests,
// ages entities, and reclaims dead slots with swap-remove. A hard slot
// limit guards against a runaway scheduler; the scheduler's own adaptive
// cap normally keeps well under it.
type EnemyPool struct {
	Enemies []Enemy
	rng     *Rand
	maxSlot int
}

func NewEnemyPool(seed uint64, maxSlot int) *EnemyPool {
	if maxSlot <= 0 {
		maxSlot = 64
	}
	return &EnemyPool{rng: NewRand(seed), maxSlot: maxSlot}
}

func (ep *EnemyPool) Reset() {
	ep.Enemies = ep.Enemies[:0]
}

// Spawn admits one enemy request. Returns NoEntity when the pool is full.
func (ep *EnemyPool) Spawn(strength float64, note string) EntityID {
	if len(ep.Enemies) >= ep.maxSlot {
		return NoEntity
	}
	e := Enemy{
		ID:       uuid.New(),
		Note:     note,
		Strength: strength,
		Life:     4.0 + strength*6.0 + ep.rng.RangeF(0, 1.5),
	}
	ep.Enemies = append(ep.Enemies, e)
	return e.ID
}

// SpawnPowerup admits a powerup entity; only one may be live at a time.
func (ep *EnemyPool) SpawnPowerup() EntityID {
	if ep.HasLivePowerup() || len(ep.Enemies) >= ep.maxSlot {
		return NoEntity
	}
	e := Enemy{
		ID:       uuid.New(),
		Note:     "C",
		Strength: 1.0,
		Life:     8.0,
		Powerup:  true,
	}
	ep.Enemies = append(ep.Enemies, e)
	return e.ID
}

func (ep *EnemyPool) LivingCount() int {
	n := 0
	for i := range ep.Enemies {
		if !ep.Enemies[i].Powerup {
			n++
		}
	}
	return n
}

func (ep *EnemyPool) HasLivePowerup() bool {
	for i := range ep.Enemies {
		if ep.Enemies[i].Powerup {
			return true
		}
	}
	return false
}

// Pulse feeds a loudness surge to live enemies: a burst of extra life
// proportional to the pulse energy.
func (ep *EnemyPool) Pulse(energy float64) {
	for i := range ep.Enemies {
		ep.Enemies[i].Life += energy * 0.5
	}
}

// Update ages the pool and swap-removes expired entities.
func (ep *EnemyPool) Update(dt float64) {
	for i := 0; i < len(ep.Enemies); {
		ep.Enemies[i].Life -= dt
		if ep.Enemies[i].Life <= 0 {
			ep.Enemies[i] = ep.Enemies[len(ep.Enemies)-1]
			ep.Enemies = ep.Enemies[:len(ep.Enemies)-1]
			continue
		}
		i++
	}
}
