package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/pmpo/config"
	"github.com/YuminosukeSato/pmpo/internal/fixture"
	"github.com/YuminosukeSato/pmpo/pmpo"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeCompounds(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "compounds.csv")
	require.NoError(t, os.WriteFile(path, fixture.CompoundsCSV(), 0o644))
	return path
}

func TestBuildAndScore(t *testing.T) {
	dir := t.TempDir()
	data := writeCompounds(t, dir)
	modelPath := filepath.Join(dir, "model.json")
	statsPath := filepath.Join(dir, "stats.csv")
	corrPath := filepath.Join(dir, "r2.csv")

	out, err := run(t, "", "build",
		"--log-level", "error",
		"--csv", data,
		"--label", fixture.LabelColumn,
		"--name", "compounds",
		"--out", modelPath,
		"--stats", statsPath,
		"--correlation", corrPath,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "compounds: ")
	assert.Contains(t, out, "auc=0.8772")

	m, err := pmpo.LoadModel(modelPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, m.Descriptors())

	raw, err := os.ReadFile(statsPath)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 6, "header plus five descriptors")

	raw, err = os.ReadFile(corrPath)
	require.NoError(t, err)
	records, err = csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, "name", records[0][0])
	assert.Len(t, records, len(records[0]), "one row per significant descriptor")
	assert.Contains(t, records[0], "B")
	assert.Contains(t, records[0], "C")

	out, err = run(t, string(fixture.CompoundsCSV()), "score", "--log-level", "error", "--model", modelPath, "--id", fixture.NameColumn)
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 41)
	assert.Equal(t, []string{fixture.NameColumn, "score"}, rows[0])
	assert.Equal(t, "E00", rows[1][0])
	s, err := strconv.ParseFloat(rows[1][1], 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.1212229360171551, s, 1e-12)
}

func TestBuildGobWithoutSigmoid(t *testing.T) {
	dir := t.TempDir()
	data := writeCompounds(t, dir)
	modelPath := filepath.Join(dir, "model.gob")

	_, err := run(t, "", "build", "--log-level", "error", "--csv", data,
		"--label", fixture.LabelColumn, "--out", modelPath, "--no-sigmoid")
	require.NoError(t, err)

	m, err := pmpo.LoadModel(modelPath)
	require.NoError(t, err)
	assert.False(t, m.SigmoidalCorrection())
	assert.Equal(t, []string{"B", "C"}, m.Descriptors())
}

func TestBuildRequiresLabel(t *testing.T) {
	data := writeCompounds(t, t.TempDir())
	_, err := run(t, "", "build", "--log-level", "error", "--csv", data)
	assert.Error(t, err)
}

func TestScoreRequiresModel(t *testing.T) {
	_, err := run(t, "", "score")
	assert.Error(t, err)
}

func TestApplyFlags(t *testing.T) {
	cmd := newRootCmd()
	build, _, err := cmd.Find([]string{"build"})
	require.NoError(t, err)
	require.NoError(t, build.ParseFlags([]string{
		"--good", "no", "--r2-cutoff", "0.8", "--case-sensitive", "--ignore", "A,NOISE",
	}))

	cfg := config.Default()
	require.NoError(t, applyFlags(build.Flags(), cfg))
	assert.Equal(t, "no", cfg.Model.GoodValue)
	assert.Equal(t, 0.8, cfg.Model.R2Cutoff)
	assert.False(t, cfg.Model.CaseInsensitive)
	assert.True(t, cfg.Model.SigmoidalCorrection)
	assert.Equal(t, []string{"A", "NOISE"}, cfg.Model.IgnoreColumns)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestParseGoodValue(t *testing.T) {
	assert.Equal(t, 1.0, parseGoodValue("1"))
	assert.Equal(t, true, parseGoodValue("true"))
	assert.Equal(t, "yes", parseGoodValue("yes"))
	assert.Equal(t, "T", parseGoodValue("T"))
	assert.Nil(t, parseGoodValue("default"))
}

func TestApplyFlagsDefaultGood(t *testing.T) {
	cmd := newRootCmd()
	build, _, err := cmd.Find([]string{"build"})
	require.NoError(t, err)
	require.NoError(t, build.ParseFlags([]string{"--good", "default"}))

	cfg := config.Default()
	cfg.Model.GoodValue = "no"
	require.NoError(t, applyFlags(build.Flags(), cfg))
	assert.Nil(t, cfg.Model.GoodValue)
	assert.True(t, cfg.Model.Good().IsDefault())
}
