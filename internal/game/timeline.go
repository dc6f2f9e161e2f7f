package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
)

var (
	// ErrMalformedTimeline marks a payload with no usable structure at all.
	ErrMalformedTimeline = errors.New("malformed timeline payload")
	// ErrUnrecognizedBeatShape marks object beats with no time-like field.
	// Beat-driven logic runs degraded; the rest of the timeline still loads.
	ErrUnrecognizedBeatShape = errors.New("unrecognized beat shape")
)

// Beat is the canonical beat record. Strength defaults to 0.5 when the
// source data carries no energy-like field.
type Beat struct {
	Time     float64
	Strength float64
}

// Segment is a labeled structural section of the track. Energy and
// Pitches are optional extras from the analyzer; zero/nil when absent.
type Segment struct {
	Type    string
	Start   float64
	End     float64
	Energy  float64
	Pitches []float64
}

// Timeline holds the normalized analysis payload. All other systems see
// only these canonical shapes; shape sniffing never happens downstream.
type Timeline struct {
	Beats    []Beat
	Segments []Segment
	BPM      float64 // 0 when the metadata carried none
	Duration float64 // 0 when unknown

	BeatsUsable       bool
	SyntheticSegments bool
}

// Field-name inference for object-shaped beats, in priority order.
var (
	beatTimeFields     = []string{"start", "timestamp", "time", "t"}
	beatStrengthFields = []string{"strength", "confidence", "energy", "loudness", "intensity"}
)

// ParseTimeline decodes a raw analysis JSON document and normalizes it.
func ParseTimeline(data []byte) (*Timeline, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTimeline, err)
	}
	return LoadTimeline(raw)
}

// LoadTimeline normalizes a loosely-typed analysis payload into canonical
// beat and segment records. The returned timeline is always usable: every
// malformed part degrades to a stated fallback rather than failing the
// load. The error, when non-nil, describes what was degraded.
func LoadTimeline(raw map[string]any) (*Timeline, error) {
	tl := &Timeline{}
	if raw == nil {
		tl.Segments = fallbackSegments(FallbackDuration)
		tl.SyntheticSegments = true
		return tl, ErrMalformedTimeline
	}

	if meta, ok := raw["metadata"].(map[string]any); ok {
		if v, ok := asFloat(meta["bpm"]); ok && v > 0 {
			tl.BPM = v
		} else if v, ok := asFloat(meta["tempo"]); ok && v > 0 {
			tl.BPM = v
		}
		if v, ok := asFloat(meta["duration"]); ok && v > 0 {
			tl.Duration = v
		}
	}

	var loadErr error
	if beats, ok := raw["beats"].([]any); ok {
		tl.Beats, loadErr = normalizeBeats(beats)
		tl.BeatsUsable = loadErr == nil && len(tl.Beats) > 0
	}

	if segs, ok := raw["segments"].([]any); ok {
		tl.Segments = normalizeSegments(segs)
	}
	if len(tl.Segments) == 0 {
		tl.Segments = fallbackSegments(tl.TrackDuration())
		tl.SyntheticSegments = true
	}
	return tl, loadErr
}

// TrackDuration resolves the best known track length: metadata first,
// then the last beat, then the last segment, then the fixed fallback.
func (tl *Timeline) TrackDuration() float64 {
	if tl.Duration > 0 {
		return tl.Duration
	}
	if n := len(tl.Beats); n > 0 && tl.Beats[n-1].Time > 0 {
		return tl.Beats[n-1].Time
	}
	if n := len(tl.Segments); n > 0 && !tl.SyntheticSegments {
		return tl.Segments[n-1].End
	}
	return FallbackDuration
}

// normalizeBeats accepts bare timestamps or object records. Object beats
// get field-name inference; a sequence of objects with no time-like field
// is unusable and reported as such.
func normalizeBeats(raw []any) ([]Beat, error) {
	beats := make([]Beat, 0, len(raw))
	for _, el := range raw {
		switch v := el.(type) {
		case map[string]any:
			t, ok := pickField(v, beatTimeFields)
			if !ok {
				return nil, ErrUnrecognizedBeatShape
			}
			s, ok := pickField(v, beatStrengthFields)
			if !ok {
				s = DefaultStrength
			}
			beats = append(beats, Beat{Time: t, Strength: clampF(s, 0, 1)})
		default:
			if t, ok := asFloat(el); ok {
				beats = append(beats, Beat{Time: t, Strength: DefaultStrength})
			}
		}
	}
	return beats, nil
}

// normalizeSegments does no field inference: a segment missing start or
// end is skipped with a warning and excluded from matching.
func normalizeSegments(raw []any) []Segment {
	segs := make([]Segment, 0, len(raw))
	for i, el := range raw {
		m, ok := el.(map[string]any)
		if !ok {
			log.Printf("timeline: segment %d is not an object, skipping", i)
			continue
		}
		start, okS := asFloat(m["start"])
		end, okE := asFloat(m["end"])
		if !okS || !okE || end <= start {
			log.Printf("timeline: segment %d missing usable start/end, skipping", i)
			continue
		}
		seg := Segment{Type: "unknown", Start: start, End: end}
		if t, ok := m["type"].(string); ok && t != "" {
			seg.Type = t
		}
		if e, ok := asFloat(m["energy"]); ok {
			seg.Energy = clampF(e, 0, 1)
		}
		if p := asFloatSlice(m["pitches"]); p != nil {
			seg.Pitches = p
		} else if p := asFloatSlice(m["chroma"]); p != nil {
			seg.Pitches = p
		}
		segs = append(segs, seg)
	}
	return segs
}

// fallbackSegments builds the synthetic intro/verse/chorus structure used
// when the payload carries no segment list. Diagnostic, non-authoritative.
func fallbackSegments(duration float64) []Segment {
	if duration <= 0 {
		duration = FallbackDuration
	}
	introEnd := minF(duration*0.15, 30)
	verse1End := introEnd + minF(duration*0.2, 45)
	chorus1End := verse1End + minF(duration*0.15, 30)
	verse2End := chorus1End + minF(duration*0.2, 45)
	chorus2End := verse2End + minF(duration*0.15, 30)
	bridgeEnd := chorus2End + minF(duration*0.1, 30)
	finalEnd := duration - 5
	if finalEnd <= bridgeEnd {
		finalEnd = bridgeEnd + 1
	}
	outroEnd := duration
	if outroEnd <= finalEnd {
		outroEnd = finalEnd + 1
	}
	return []Segment{
		{Type: "intro", Start: 0, End: introEnd},
		{Type: "verse", Start: introEnd, End: verse1End},
		{Type: "chorus", Start: verse1End, End: chorus1End},
		{Type: "verse", Start: chorus1End, End: verse2End},
		{Type: "chorus", Start: verse2End, End: chorus2End},
		{Type: "bridge", Start: chorus2End, End: bridgeEnd},
		{Type: "chorus", Start: bridgeEnd, End: finalEnd},
		{Type: "outro", Start: finalEnd, End: outroEnd},
	}
}

func pickField(m map[string]any, names []string) (float64, bool) {
	for _, name := range names {
		if v, ok := asFloat(m[name]); ok {
			return v, true
		}
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func asFloatSlice(v any) []float64 {
	raw, ok := v.([]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	out := make([]float64, 0, len(raw))
	for _, el := range raw {
		f, ok := asFloat(el)
		if !ok {
			return nil
		}
		out = append(out, f)
	}
	return out
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
