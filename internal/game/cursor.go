package game

import "log"

// CursorPhase is the beat cursor's coarse state.
type CursorPhase int

const (
	CursorIdle     CursorPhase = iota // no usable beat data
	CursorTracking                    // Next is a valid index
	CursorWrapped                     // Next == len(beats); waiting for loop reset
)

// BeatCursor walks the beat sequence as playback time advances. Invariant:
// Next is always a valid index or equal to the sequence length.
type BeatCursor struct {
	Next  int
	Phase CursorPhase

	// Elapsed play with the cursor parked at index 0 and every beat
	// already in the past. Drives the desync recovery scan.
	stuckFor float64
}

func NewBeatCursor() *BeatCursor {
	return &BeatCursor{}
}

// Reset realigns the cursor to the start of the timeline. Called on
// timeline reload and on the track-end loop.
func (bc *BeatCursor) Reset() {
	bc.Next = 0
	bc.Phase = CursorIdle
	bc.stuckFor = 0
}

// Advance processes at most one beat crossing for the current tick.
// Returns the crossed beat and its index when a crossing fired.
func (bc *BeatCursor) Advance(tl *Timeline, playTime, dt float64) (Beat, int, bool) {
	if tl == nil || !tl.BeatsUsable || len(tl.Beats) == 0 {
		bc.Phase = CursorIdle
		return Beat{}, 0, false
	}
	if bc.Next >= len(tl.Beats) {
		// Wrapped: hold until the track-end loop resets both cursors
		// together, rather than wrapping mid-track on our own.
		bc.Phase = CursorWrapped
		return Beat{}, 0, false
	}
	bc.Phase = CursorTracking

	if beat := tl.Beats[bc.Next]; beat.Time <= playTime {
		idx := bc.Next
		bc.Next++
		bc.stuckFor = 0
		return beat, idx, true
	}

	bc.maybeRecover(tl, playTime, dt)
	return Beat{}, 0, false
}

// maybeRecover detects a cursor that never left index 0 even though
// beats exist in the past, and jumps it to the first future beat. This
// assumes the cursor desynchronized rather than beats being absent.
func (bc *BeatCursor) maybeRecover(tl *Timeline, playTime, dt float64) {
	if bc.Next != 0 {
		return
	}
	bc.stuckFor += dt
	if bc.stuckFor < CursorStuckWindow {
		return
	}
	bc.stuckFor = 0
	for i, b := range tl.Beats {
		if b.Time > playTime {
			if i > 0 {
				log.Printf("beat cursor desync: jumping to index %d at t=%.2f", i, playTime)
			}
			bc.Next = i
			return
		}
	}
	// Every beat is already behind us.
	bc.Next = len(tl.Beats)
	bc.Phase = CursorWrapped
}
