package diagnostics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/pmpo/internal/fixture"
	"github.com/YuminosukeSato/pmpo/pkg/errors"
	"github.com/YuminosukeSato/pmpo/pmpo"
	"github.com/YuminosukeSato/pmpo/stats"
)

func compoundModel(t *testing.T) (*pmpo.Model, stats.Table) {
	t.Helper()
	errors.SetWarningHandler(func(error) {})
	b, err := pmpo.NewBuilder(fixture.Compounds(), fixture.LabelColumn, "compounds")
	require.NoError(t, err)
	m, err := b.Model()
	require.NoError(t, err)
	return m, b.Statistics()
}

func TestSaveDescriptorPlots(t *testing.T) {
	m, table := compoundModel(t)

	for _, format := range []string{"png", ".svg"} {
		t.Run(format, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "plots")
			paths, err := SaveDescriptorPlots(m, table, dir, format)
			require.NoError(t, err)
			require.Len(t, paths, 2)
			assert.Equal(t, "B", filepath.Base(paths[0])[:1])
			for _, p := range paths {
				info, err := os.Stat(p)
				require.NoError(t, err)
				assert.Greater(t, info.Size(), int64(0))
			}
		})
	}
}

func TestSaveDescriptorPlotsErrors(t *testing.T) {
	m, table := compoundModel(t)

	_, err := SaveDescriptorPlots(m, table, t.TempDir(), "bmp")
	assert.Error(t, err)

	other := pmpo.NewModel("other")
	_, err = SaveDescriptorPlots(other, table, t.TempDir(), "png")
	assert.True(t, errors.Is(err, errors.ErrColumnNotFound))
}

func TestDescriptorPlot(t *testing.T) {
	m, table := compoundModel(t)
	d, ok := table.Lookup("C")
	require.True(t, ok)

	p, err := DescriptorPlot(m, d)
	require.NoError(t, err)
	assert.Equal(t, "C", p.Title.Text)
	assert.Equal(t, 0.0, p.Y.Min)
	assert.Equal(t, 1.0, p.Y.Max)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "CLOGD_ACD_V15", fileName("CLOGD_ACD_V15"))
	assert.Equal(t, "a_b_c", fileName("a/b c"))
}
