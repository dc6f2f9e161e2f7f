package game

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTimelineBareBeats(t *testing.T) {
	t.Parallel()

	tl, err := LoadTimeline(map[string]any{
		"beats": []any{0.0, 0.5, 1.0},
	})
	require.NoError(t, err)
	require.True(t, tl.BeatsUsable)

	want := []Beat{
		{Time: 0.0, Strength: 0.5},
		{Time: 0.5, Strength: 0.5},
		{Time: 1.0, Strength: 0.5},
	}
	if diff := cmp.Diff(want, tl.Beats); diff != "" {
		t.Errorf("beats mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadTimelineFieldInference(t *testing.T) {
	t.Parallel()

	t.Run("time and strength under alternative names", func(t *testing.T) {
		t.Parallel()
		tl, err := LoadTimeline(map[string]any{
			"beats": []any{
				map[string]any{"timestamp": 1.2, "confidence": 0.9},
				map[string]any{"t": 2.4, "loudness": 0.1},
			},
		})
		require.NoError(t, err)
		require.Len(t, tl.Beats, 2)
		assert.Equal(t, 1.2, tl.Beats[0].Time)
		assert.Equal(t, 0.9, tl.Beats[0].Strength)
		assert.Equal(t, 2.4, tl.Beats[1].Time)
		assert.Equal(t, 0.1, tl.Beats[1].Strength)
	})

	t.Run("start outranks time", func(t *testing.T) {
		t.Parallel()
		tl, err := LoadTimeline(map[string]any{
			"beats": []any{map[string]any{"start": 3.0, "time": 9.0}},
		})
		require.NoError(t, err)
		require.Len(t, tl.Beats, 1)
		assert.Equal(t, 3.0, tl.Beats[0].Time)
	})

	t.Run("missing strength defaults to 0.5", func(t *testing.T) {
		t.Parallel()
		tl, err := LoadTimeline(map[string]any{
			"beats": []any{map[string]any{"time": 1.0}},
		})
		require.NoError(t, err)
		require.Len(t, tl.Beats, 1)
		assert.Equal(t, 0.5, tl.Beats[0].Strength)
	})

	t.Run("no time-like field is unusable", func(t *testing.T) {
		t.Parallel()
		tl, err := LoadTimeline(map[string]any{
			"beats": []any{map[string]any{"wat": 1.0}},
		})
		require.ErrorIs(t, err, ErrUnrecognizedBeatShape)
		assert.False(t, tl.BeatsUsable)
	})
}

func TestLoadTimelineSegments(t *testing.T) {
	t.Parallel()

	t.Run("segments without start/end are skipped", func(t *testing.T) {
		t.Parallel()
		tl, err := LoadTimeline(map[string]any{
			"segments": []any{
				map[string]any{"type": "verse", "start": 0.0, "end": 10.0},
				map[string]any{"type": "broken"},
				map[string]any{"type": "chorus", "start": 10.0, "end": 20.0},
			},
		})
		require.NoError(t, err)
		require.Len(t, tl.Segments, 2)
		assert.Equal(t, "verse", tl.Segments[0].Type)
		assert.Equal(t, "chorus", tl.Segments[1].Type)
		assert.False(t, tl.SyntheticSegments)
	})

	t.Run("absent segment list gets the synthetic fallback", func(t *testing.T) {
		t.Parallel()
		tl, err := LoadTimeline(map[string]any{"beats": []any{0.5}})
		require.NoError(t, err)
		assert.True(t, tl.SyntheticSegments)
		require.NotEmpty(t, tl.Segments)
		assert.Equal(t, "intro", tl.Segments[0].Type)
		assert.Equal(t, "outro", tl.Segments[len(tl.Segments)-1].Type)
	})

	t.Run("pitches and energy carried through", func(t *testing.T) {
		t.Parallel()
		tl, err := LoadTimeline(map[string]any{
			"segments": []any{
				map[string]any{
					"type": "chorus", "start": 0.0, "end": 5.0,
					"energy": 0.8, "pitches": []any{0.1, 0.9, 0.0},
				},
			},
		})
		require.NoError(t, err)
		require.Len(t, tl.Segments, 1)
		assert.Equal(t, 0.8, tl.Segments[0].Energy)
		assert.Equal(t, []float64{0.1, 0.9, 0.0}, tl.Segments[0].Pitches)
	})
}

func TestLoadTimelineMetadata(t *testing.T) {
	t.Parallel()

	t.Run("bpm field", func(t *testing.T) {
		t.Parallel()
		tl, err := LoadTimeline(map[string]any{
			"metadata": map[string]any{"bpm": 128.0, "duration": 200.0},
		})
		require.NoError(t, err)
		assert.Equal(t, 128.0, tl.BPM)
		assert.Equal(t, 200.0, tl.Duration)
	})

	t.Run("analyzer tempo alias", func(t *testing.T) {
		t.Parallel()
		tl, err := LoadTimeline(map[string]any{
			"metadata": map[string]any{"tempo": 95.0},
		})
		require.NoError(t, err)
		assert.Equal(t, 95.0, tl.BPM)
	})
}

func TestParseTimeline(t *testing.T) {
	t.Parallel()

	t.Run("round trip from analyzer JSON", func(t *testing.T) {
		t.Parallel()
		tl, err := ParseTimeline([]byte(`{
			"metadata": {"tempo": 110, "duration": 30},
			"beats": [0.5, 1.0, 1.5],
			"segments": [{"type": "intro", "start": 0, "end": 30}]
		}`))
		require.NoError(t, err)
		assert.Equal(t, 110.0, tl.BPM)
		assert.Len(t, tl.Beats, 3)
		assert.Len(t, tl.Segments, 1)
	})

	t.Run("invalid JSON is malformed", func(t *testing.T) {
		t.Parallel()
		_, err := ParseTimeline([]byte("not json"))
		require.ErrorIs(t, err, ErrMalformedTimeline)
	})
}

func TestTrackDuration(t *testing.T) {
	t.Parallel()

	t.Run("metadata wins", func(t *testing.T) {
		t.Parallel()
		tl := &Timeline{Duration: 42, Beats: []Beat{{Time: 100}}}
		assert.Equal(t, 42.0, tl.TrackDuration())
	})

	t.Run("last beat next", func(t *testing.T) {
		t.Parallel()
		tl := &Timeline{Beats: []Beat{{Time: 10}, {Time: 99}}}
		assert.Equal(t, 99.0, tl.TrackDuration())
	})

	t.Run("fallback constant when nothing known", func(t *testing.T) {
		t.Parallel()
		tl := &Timeline{SyntheticSegments: true}
		assert.Equal(t, FallbackDuration, tl.TrackDuration())
	})
}
