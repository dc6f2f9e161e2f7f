package game

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
)

// RunOptions configures the demo session.
type RunOptions struct {
	AnalysisPath string // JSON analysis payload; empty runs fully degraded
	Seed         uint64 // 0 picks from BEATDRIVE_SEED or the clock
}

// Run drives the scheduler against a terminal lane board and the
// procedural audio sinks until the user quits.
func Run(opts RunOptions) error {
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
		if s := os.Getenv("BEATDRIVE_SEED"); s != "" {
			if v, err := strconv.ParseUint(s, 10, 64); err == nil {
				seed = v
			}
		}
	}

	if err := InitAudio(); err != nil {
		fmt.Fprintf(os.Stderr, "audio init failed (continuing without sound): %v\n", err)
	}

	pool := NewEnemyPool(splitmix64(seed^0xE7E7), 64)
	bus := NewEventBus()
	director := NewDirector(seed, pool, bus)

	if opts.AnalysisPath != "" {
		data, err := os.ReadFile(opts.AnalysisPath)
		if err != nil {
			log.Printf("analysis load failed, running degraded: %v", err)
		} else if err := director.LoadTimelineJSON(data); err != nil {
			log.Printf("analysis partially usable: %v", err)
		}
	}

	board, err := NewLaneBoard()
	if err != nil {
		return err
	}
	defer board.Close()

	var stats Telemetry
	bus.Subscribe(EventBeatCrossed, func(e Event) {
		PlayBeatClick("C", e.Beat.Strength)
	})
	bus.Subscribe(EventLaneActivated, func(e Event) {
		board.Activate(e.Note, e.Energy)
		PlayLanePing(e.Note, e.Energy)
	})
	bus.Subscribe(EventSegmentChanged, func(e Event) {
		board.SetSegment(e.Segment)
		PlaySegmentSweep()
	})
	bus.Subscribe(EventLoudnessPulse, func(e Event) {
		pool.Pulse(e.Energy)
	})
	bus.Subscribe(EventPowerupSpawned, func(Event) {
		PlayPowerupChime()
	})
	bus.Subscribe(EventTelemetry, func(e Event) {
		stats = e.Stats
	})

	events := make(chan tcell.Event, 8)
	go func() {
		for {
			ev := board.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()
	start := time.Now()
	last := start

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					return nil
				}
			case *tcell.EventResize:
				board.Sync()
			}
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			playTime := now.Sub(start).Seconds()
			if tl := director.Timeline(); tl != nil {
				if d := tl.TrackDuration(); d > 0 {
					playTime = math.Mod(playTime, d)
				}
			}
			director.Tick(playTime)
			pool.Update(dt)
			board.Update(dt)
			board.Draw(stats, pool.LivingCount())
		}
	}
}
