package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authordedup.kddcup.org/internal/models"
	"authordedup.kddcup.org/internal/snapshot"
)

// counterValue reads an unlabelled counter from the application registry.
func counterValue(t *testing.T, app *Application, name string) float64 {
	t.Helper()

	families, err := app.Registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			require.Len(t, mf.GetMetric(), 1)
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("%s is not registered", name)
	return 0
}

// writeDump saves two matching authors (1, 2) and an unrelated one (3).
func writeDump(t *testing.T) string {
	t.Helper()

	newAlice := func(id int64) *models.Record {
		r := models.NewRecord(id)
		r.PaperIDs.AddMany([]uint32{10, 11})
		r.Names = models.NewTokenSet("alice smith")
		r.NameTokens = models.NewTokenSet("alice", "smith")
		r.Affiliations = models.NewTokenSet("mit")
		return r
	}
	bob := models.NewRecord(3)
	bob.PaperIDs.Add(99)
	bob.Names = models.NewTokenSet("bob jones")
	bob.NameTokens = models.NewTokenSet("bob", "jones")

	set, err := models.NewRecordSet([]*models.Record{bob, newAlice(1), newAlice(2)})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "kdd2013track2.dump")
	_, err = snapshot.Save(path, set, snapshot.CompressionZSTD)
	require.NoError(t, err)
	return path
}

func TestParseArgs_Defaults(t *testing.T) {
	opts, err := ParseArgs([]string{"authors.dump"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "authors.dump", opts.DumpPath)
	assert.Equal(t, "submission_track2.csv", opts.Config.Output)
	assert.Equal(t, models.DefaultMatchThreshold, opts.Config.Threshold)
	assert.GreaterOrEqual(t, opts.Config.Workers, 1)
	assert.False(t, opts.Inspect)
}

func TestParseArgs_RequiresDumpPath(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", []string{}},
		{"only flags", []string{"-workers", "2"}},
		{"two paths", []string{"a.dump", "b.dump"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			opts, err := ParseArgs(tt.args, &stderr)
			assert.Error(t, err)
			assert.Nil(t, opts)
			assert.Contains(t, stderr.String(), "Usage:")
		})
	}
}

func TestParseArgs_FlagsOverrideConfigFile(t *testing.T) {
	configPath := filepath.Join("..", "..", "testdata", "config_full.json")

	opts, err := ParseArgs([]string{
		"-config", configPath,
		"-workers", "2",
		"-out", "report.csv",
		"-timeout", "90m",
		"authors.dump",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 2, opts.Config.Workers)
	assert.Equal(t, "report.csv", opts.Config.Output)
	assert.Equal(t, "1h30m0s", opts.Config.Timeout)

	// Untouched values come from the file.
	assert.Equal(t, 0.6, opts.Config.Threshold)
	assert.Equal(t, "production", opts.Config.Env)
	assert.Equal(t, "lz4", opts.Config.Compression)
	assert.Equal(t, 0.30, opts.Config.Weights.Names)
}

func TestParseArgs_RejectsInvalidOverrides(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"threshold of one", []string{"-threshold", "1", "a.dump"}},
		{"negative workers", []string{"-workers", "-3", "a.dump"}},
		{"negative timeout", []string{"-timeout", "-1s", "a.dump"}},
		{"unknown env", []string{"-env", "staging", "a.dump"}},
		{"missing config file", []string{"-config", "/no/such/config.json", "a.dump"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.args, io.Discard)
			assert.Error(t, err)
		})
	}
}

func TestParseArgs_ZeroWorkersMeansOnePerCPU(t *testing.T) {
	opts, err := ParseArgs([]string{"-workers", "0", "a.dump"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), opts.Config.Workers)

	configPath := filepath.Join("..", "..", "testdata", "config_full.json")
	opts, err = ParseArgs([]string{"-config", configPath, "-workers", "0", "a.dump"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), opts.Config.Workers, "an explicit 0 overrides the file")
}

func TestParseArgs_InspectID(t *testing.T) {
	opts, err := ParseArgs([]string{"-inspect-id", "0", "a.dump"}, io.Discard)
	require.NoError(t, err)

	assert.True(t, opts.Inspect)
	assert.Equal(t, int64(0), opts.InspectID)
}

func TestApplication_Run(t *testing.T) {
	dir := t.TempDir()
	opts, err := ParseArgs([]string{
		"-workers", "2",
		"-out", filepath.Join(dir, "submission.csv"),
		"-metrics-file", filepath.Join(dir, "authordedup.prom"),
		writeDump(t),
	}, io.Discard)
	require.NoError(t, err)

	var stdout, logs bytes.Buffer
	app, err := BuildApplication(opts, &stdout, &logs)
	require.NoError(t, err)
	defer app.Close()

	stats, err := app.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Records)
	assert.Equal(t, int64(3), stats.Comparisons)
	assert.Equal(t, 1, stats.MatchedPairs)

	report, err := os.ReadFile(filepath.Join(dir, "submission.csv"))
	require.NoError(t, err)
	assert.Equal(t, "AuthorId,DuplicateAuthorIds\n1,1 2\n2,2 1\n3,3\n", string(report))

	metricsText, err := os.ReadFile(filepath.Join(dir, "authordedup.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metricsText), "authordedup_comparisons_total 3")
	assert.Contains(t, string(metricsText), "authordedup_matches_total 1")

	assert.Contains(t, logs.String(), `"run_id":"`+app.RunID+`"`)
	assert.Contains(t, logs.String(), "snapshot_loaded")
	assert.Contains(t, logs.String(), "report_written")
	assert.Empty(t, stdout.String(), "only -inspect-id writes to stdout")
}

func TestApplication_RunInspect(t *testing.T) {
	opts, err := ParseArgs([]string{
		"-inspect-id", "1",
		"-out", filepath.Join(t.TempDir(), "submission.csv"),
		writeDump(t),
	}, io.Discard)
	require.NoError(t, err)

	var stdout, logs bytes.Buffer
	app, err := BuildApplication(opts, &stdout, &logs)
	require.NoError(t, err)
	defer app.Close()

	_, err = app.Run(context.Background())
	require.NoError(t, err)

	dump := stdout.String()
	assert.Contains(t, dump, "alice smith")
	assert.Contains(t, dump, "Matches")
	assert.Contains(t, dump, `"paper_ids"`)
	assert.NotContains(t, dump, "run_id", "log records stay out of the dump")
	assert.Contains(t, logs.String(), "report_written")
}

func TestApplication_RunInspectUnknownAuthorFailsBeforeComparing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "submission.csv")
	opts, err := ParseArgs([]string{
		"-inspect-id", "404",
		"-out", out,
		writeDump(t),
	}, io.Discard)
	require.NoError(t, err)

	var logs bytes.Buffer
	app, err := BuildApplication(opts, io.Discard, &logs)
	require.NoError(t, err)
	defer app.Close()

	stats, err := app.Run(context.Background())
	require.ErrorIs(t, err, ErrUnknownAuthor)
	assert.Contains(t, err.Error(), "404")

	assert.Zero(t, stats.Comparisons)
	assert.NotContains(t, logs.String(), "comparison_started")
	assert.Equal(t, 0.0, counterValue(t, app, "authordedup_comparisons_total"))

	_, statErr := os.Stat(out)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestApplication_RunMissingDump(t *testing.T) {
	out := filepath.Join(t.TempDir(), "submission.csv")
	opts, err := ParseArgs([]string{"-out", out, filepath.Join(t.TempDir(), "missing.dump")}, io.Discard)
	require.NoError(t, err)

	app, err := BuildApplication(opts, io.Discard, io.Discard)
	require.NoError(t, err)
	defer app.Close()

	_, err = app.Run(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)

	_, statErr := os.Stat(out)
	assert.ErrorIs(t, statErr, os.ErrNotExist, "no report is written when the run fails")
}
