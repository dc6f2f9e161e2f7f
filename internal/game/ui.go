package game

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// laneDecay is how fast a lane's glow fades, in energy units per second.
const laneDecay = 1.6

// LaneBoard renders the 12 note lanes and a diagnostics line in the
// terminal. Each activation lights a lane at its energy; the glow decays
// every frame until the next hit.
type LaneBoard struct {
	screen   tcell.Screen
	energies [12]float64
	segment  string
}

func NewLaneBoard() (*LaneBoard, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("lane board: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("lane board init: %w", err)
	}
	screen.HideCursor()
	return &LaneBoard{screen: screen, segment: "-"}, nil
}

func (lb *LaneBoard) Close() {
	lb.screen.Fini()
}

// Sync forces a full repaint after a terminal resize.
func (lb *LaneBoard) Sync() {
	lb.screen.Sync()
}

// PollEvent blocks on the next terminal event. Call from a dedicated
// goroutine; the board itself is only touched from the main loop.
func (lb *LaneBoard) PollEvent() tcell.Event {
	return lb.screen.PollEvent()
}

// Activate lights the lane for the given note at the given energy.
func (lb *LaneBoard) Activate(note string, energy float64) {
	idx := laneIndex(note)
	if idx < 0 {
		return
	}
	if energy > lb.energies[idx] {
		lb.energies[idx] = clampF(energy, 0, 1)
	}
}

func (lb *LaneBoard) SetSegment(segType string) {
	lb.segment = segType
}

// Update fades all lanes toward zero.
func (lb *LaneBoard) Update(dt float64) {
	for i := range lb.energies {
		lb.energies[i] -= laneDecay * dt
		if lb.energies[i] < 0 {
			lb.energies[i] = 0
		}
	}
}

// Draw renders the lane bars and the HUD line.
func (lb *LaneBoard) Draw(stats Telemetry, live int) {
	lb.screen.Clear()
	w, h := lb.screen.Size()
	barArea := h - 3
	if barArea < 1 || w < 36 {
		lb.screen.Show()
		return
	}

	laneW := w / 12
	if laneW < 3 {
		laneW = 3
	}
	for lane := 0; lane < 12; lane++ {
		x := lane * laneW
		if x+laneW > w {
			break
		}
		energy := lb.energies[lane]
		height := int(energy * float64(barArea))
		style := laneStyle(energy)
		for y := 0; y < height; y++ {
			for dx := 0; dx < laneW-1; dx++ {
				lb.screen.SetContent(x+dx, barArea-1-y, '█', nil, style)
			}
		}
		label := chromaticScale[lane]
		for i, r := range label {
			lb.screen.SetContent(x+i, barArea, r, nil, tcell.StyleDefault.Foreground(tcell.ColorWhite))
		}
	}

	hud := fmt.Sprintf("bpm %5.1f  vol %.2f  beats %d  next %d  live %d  seg %s  [q to quit]",
		stats.BPM, stats.Volume, stats.BeatCount, stats.NextBeatIndex, live, lb.segment)
	for i, r := range hud {
		if i >= w {
			break
		}
		lb.screen.SetContent(i, h-1, r, nil, tcell.StyleDefault.Foreground(tcell.ColorYellow))
	}
	lb.screen.Show()
}

func laneStyle(energy float64) tcell.Style {
	switch {
	case energy > 0.7:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	case energy > 0.4:
		return tcell.StyleDefault.Foreground(tcell.ColorOrange)
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	}
}

func laneIndex(note string) int {
	for i, n := range chromaticScale {
		if n == note {
			return i
		}
	}
	return -1
}
