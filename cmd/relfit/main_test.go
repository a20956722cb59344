// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/relfit/fit"
)

// censoredWeibull is 20 Weibull(50, 2) draws censored at 44.31: 12 failures
// and 8 survivors.
const censoredWeibull = `
failures: [25.0509469542896, 24.061274143636652, 40.93391258228319,
  42.739874120064385, 29.669624445221345, 22.798666807666393,
  14.507554982645285, 38.149676618287906, 20.757128075920093,
  28.298602655553296, 36.56626267141881, 29.626443850265836]
right_censored: [44.311346272637905, 44.311346272637905, 44.311346272637905,
  44.311346272637905, 44.311346272637905, 44.311346272637905,
  44.311346272637905, 44.311346272637905]
`

func writeJob(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()

	return out.String(), err
}

// TestFitCommand runs a Weibull_2P MLE fit with SF bounds and checks the
// YAML report against a direct library call.
func TestFitCommand(t *testing.T) {
	path := writeJob(t, censoredWeibull+"bounds: [10, 30]\nci: 0.9\nci_type: reliability\n")
	out, err := run(t, "fit", "--model", fit.Weibull2P, "-f", path)
	require.NoError(t, err)

	var rep fitReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	assert.Equal(t, fit.Weibull2P, rep.Model)
	assert.Equal(t, "MLE", rep.Method)
	assert.Empty(t, rep.BoundsError)
	assert.Equal(t, "reliability", rep.BoundType)

	job, err := loadJob(path, nil)
	require.NoError(t, err)
	obs, err := job.observations()
	require.NoError(t, err)
	want, err := fit.FitByName(obs, fit.Weibull2P)
	require.NoError(t, err)
	assert.InDelta(t, want.Params[0], rep.Fields["alpha"], 1e-6)
	assert.InDelta(t, want.Params[1], rep.Fields["beta"], 1e-6)

	assert.Equal(t, []string{"alpha", "beta"}, rep.Free)
	require.Len(t, rep.Covariance, 2)
	assert.InDelta(t, want.Cov("alpha", "beta"), rep.Covariance[0][1], 1e-6)
	assert.Equal(t, rep.Covariance[0][1], rep.Covariance[1][0])

	require.Len(t, rep.Bounds, 2)
	for _, b := range rep.Bounds {
		assert.Less(t, b.Lower, b.SF)
		assert.Less(t, b.SF, b.Upper)
	}
	assert.Greater(t, rep.Bounds[0].SF, rep.Bounds[1].SF)
}

func TestFitCommand_Stdin(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetIn(strings.NewReader(censoredWeibull + "method: LS\n"))
	root.SetArgs([]string{"fit", "-m", fit.Exponential1P})
	require.NoError(t, root.Execute())

	var rep fitReport
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &rep))
	assert.Equal(t, "LS", rep.Method)
	assert.Greater(t, rep.Fields["Lambda"], 0.0)
}

func TestModelsCommand(t *testing.T) {
	out, err := run(t, "models")
	require.NoError(t, err)
	assert.Equal(t, fit.ModelNames(), strings.Fields(out))
}

// TestEverythingCommand checks the ranked table lists the best model first.
func TestEverythingCommand(t *testing.T) {
	path := writeJob(t, censoredWeibull+"sort_by: BIC\nworkers: 2\nexclude: [Beta_2P]\n")
	out, err := run(t, "everything", "--no-composites", "-f", path)
	require.NoError(t, err)

	var rep tableReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "BIC", rep.SortBy)
	require.NotEmpty(t, rep.Ranked)
	assert.Equal(t, rep.Ranked[0].Model, rep.Best)
	for i := 1; i < len(rep.Ranked); i++ {
		assert.LessOrEqual(t, rep.Ranked[i-1].BIC, rep.Ranked[i].BIC)
	}
	for _, r := range rep.Ranked {
		assert.NotEqual(t, fit.Beta2P, r.Model)
		assert.NotEqual(t, fit.WeibullMixture, r.Model)
	}
}

func TestCommands_BadJob(t *testing.T) {
	_, err := run(t, "fit", "-f", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = run(t, "fit", "-f", writeJob(t, "failures: [1, 2"))
	assert.Error(t, err)

	_, err = run(t, "fit", "-f", writeJob(t, censoredWeibull+"method: Bayes\n"))
	assert.ErrorIs(t, err, errBadJob)

	_, err = run(t, "fit", "-m", "Cauchy_2P", "-f", writeJob(t, censoredWeibull))
	assert.ErrorIs(t, err, fit.ErrUnknownModel)

	_, err = run(t, "fit", "-f", writeJob(t, "failures: []\n"))
	assert.ErrorIs(t, err, fit.ErrInvalidData)
}

// TestJobOptions checks every setting is validated before reaching the
// panicking option constructors.
func TestJobOptions(t *testing.T) {
	neg := -1
	bad := []Job{
		{Method: "bayes"},
		{CI: 1.5},
		{CIType: "both"},
		{Optimizers: []string{"Powell"}},
		{SortBy: "WAIC"},
		{Workers: &neg},
	}
	for _, j := range bad {
		_, err := j.options(zap.NewNop())
		assert.ErrorIs(t, err, errBadJob, "%+v", j)
	}

	two := 2
	good := Job{
		Method: "ls", CI: 0.9, CIType: "reliability", Optimizers: []string{"Nelder-Mead"},
		InitialGuess: []float64{40, 2}, SortBy: "aicc", Exclude: []string{fit.Gamma3P},
		Workers: &two, Seed: 3,
	}
	opts, err := good.options(zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, opts, 10)
}

func TestParseCriterion(t *testing.T) {
	for _, c := range []fit.Criterion{fit.ByAICc, fit.ByBIC, fit.ByAD, fit.ByLogLik} {
		got, err := parseCriterion(strings.ToLower(c.String()))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}
