package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityscope/cityscope-cli/internal/model"
)

func TestClassifyHigherIsBetterBands(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  model.StatusBand
	}{
		{"at target", 85, model.BandExcellent},
		{"exactly 95 percent", 80.75, model.BandExcellent},
		{"just under 95 percent", 80.74, model.BandGood},
		{"exactly 70 percent", 59.5, model.BandGood},
		{"just under 70 percent", 59.49, model.BandModerate},
		{"exactly 50 percent", 42.5, model.BandModerate},
		{"just under 50 percent", 42.49, model.BandCritical},
		{"zero", 0, model.BandCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Classify(model.IndexCRI, tt.score, 85)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Band)
		})
	}
}

func TestClassifyProgressCapsAt100(t *testing.T) {
	res, err := Classify(model.IndexWSI, 120, 80)
	require.NoError(t, err)
	assert.Equal(t, model.BandExcellent, res.Band)
	assert.InDelta(t, 100, res.ProgressPct, 1e-9)
}

func TestClassifyZeroTargetUsesDefinition(t *testing.T) {
	// Target 0 falls back to the definition table target (85 for cri).
	res, err := Classify(model.IndexCRI, 85, 0)
	require.NoError(t, err)
	assert.Equal(t, model.BandExcellent, res.Band)
	assert.InDelta(t, 100, res.ProgressPct, 1e-9)
}

func TestClassifyUHVICeilingBands(t *testing.T) {
	tests := []struct {
		score float64
		want  model.StatusBand
	}{
		{0, model.BandExcellent},
		{15, model.BandExcellent},
		{15.01, model.BandGood},
		{25, model.BandGood},
		{25.01, model.BandModerate},
		{35, model.BandModerate},
		{35.01, model.BandCritical},
		{50, model.BandCritical},
	}

	for _, tt := range tests {
		res, err := Classify(model.IndexUHVI, tt.score, 30)
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.Band, "score %.2f", tt.score)
	}
}

func TestClassifyUHVIProgress(t *testing.T) {
	res, err := Classify(model.IndexUHVI, 0, 30)
	require.NoError(t, err)
	assert.InDelta(t, 100, res.ProgressPct, 1e-9)

	res, err = Classify(model.IndexUHVI, 15, 30)
	require.NoError(t, err)
	assert.InDelta(t, 50, res.ProgressPct, 1e-9)

	// Scores past the ceiling clamp to zero progress rather than going negative.
	res, err = Classify(model.IndexUHVI, 45, 30)
	require.NoError(t, err)
	assert.InDelta(t, 0, res.ProgressPct, 1e-9)
}

func TestClassifyAQHICeilingBands(t *testing.T) {
	tests := []struct {
		score float64
		want  model.StatusBand
	}{
		{1, model.BandExcellent},
		{2, model.BandExcellent},
		{2.5, model.BandGood},
		{3, model.BandGood},
		{4, model.BandModerate},
		{6, model.BandModerate},
		{6.5, model.BandCritical},
	}

	for _, tt := range tests {
		res, err := Classify(model.IndexAQHI, tt.score, 4)
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.Band, "score %.2f", tt.score)
	}
}

func TestClassifyAQHIProgress(t *testing.T) {
	res, err := Classify(model.IndexAQHI, 1, 4)
	require.NoError(t, err)
	assert.InDelta(t, 100, res.ProgressPct, 1e-9)

	res, err = Classify(model.IndexAQHI, 4, 4)
	require.NoError(t, err)
	assert.InDelta(t, 0, res.ProgressPct, 1e-9)

	res, err = Classify(model.IndexAQHI, 8, 4)
	require.NoError(t, err)
	assert.InDelta(t, 0, res.ProgressPct, 1e-9)
}

func TestClassifyCeilingIgnoresTargetOverride(t *testing.T) {
	// Directionality and band edges come from the definition table; a
	// custom target does not move the ceiling bands.
	a, err := Classify(model.IndexUHVI, 20, 30)
	require.NoError(t, err)
	b, err := Classify(model.IndexUHVI, 20, 99)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestClassifyUnknownIndex(t *testing.T) {
	_, err := Classify(model.IndexID("made-up"), 50, 80)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownIndex)
}

func TestClassifyIsPure(t *testing.T) {
	first, err := Classify(model.IndexTAS, 63.2, 80)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Classify(model.IndexTAS, 63.2, 80)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestProgressMatchesClassify(t *testing.T) {
	for _, id := range model.AllIndexIDs {
		res, err := Classify(id, 10, 80)
		require.NoError(t, err)
		p, err := Progress(id, 10, 80)
		require.NoError(t, err)
		assert.InDelta(t, res.ProgressPct, p, 1e-9, "index %s", id)
	}
}
