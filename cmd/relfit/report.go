// SPDX-License-Identifier: MIT

package main

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/relfit/fit"
)

// fitReport is the YAML form of one fit.
type fitReport struct {
	Model           string             `yaml:"model"`
	Method          string             `yaml:"method"`
	Optimizer       string             `yaml:"optimizer"`
	LowConfidence   bool               `yaml:"low_confidence,omitempty"`
	Fields          map[string]float64 `yaml:"fields"`
	Free            []string           `yaml:"free,omitempty"`
	Covariance      [][]float64        `yaml:"covariance,omitempty"` // rows and columns in Free order
	CovarianceError string             `yaml:"covariance_error,omitempty"`
	BoundType       string             `yaml:"bound_type,omitempty"`
	Bounds          []boundRow         `yaml:"bounds,omitempty"`
	BoundsError     string             `yaml:"bounds_error,omitempty"`
}

// boundRow is one SF evaluation. Lower and Upper are survival probabilities
// for reliability bounds and times for time bounds.
type boundRow struct {
	Time  float64 `yaml:"time"`
	SF    float64 `yaml:"sf"`
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

// tableReport is the YAML form of a FitEverything table.
type tableReport struct {
	SortBy string    `yaml:"sort_by"`
	Best   string    `yaml:"best"`
	Ranked []rankRow `yaml:"ranked"`
	Failed []failRow `yaml:"failed,omitempty"`
}

type rankRow struct {
	Model  string  `yaml:"model"`
	AICc   float64 `yaml:"AICc"`
	BIC    float64 `yaml:"BIC"`
	LogLik float64 `yaml:"loglik"`
	AD     float64 `yaml:"AD"`
}

type failRow struct {
	Model string `yaml:"model"`
	Error string `yaml:"error"`
}

// newFitReport renders r, with SF bounds (the fit's default request) at
// times when any are given.
func newFitReport(r *fit.Result, times []float64) fitReport {
	rep := fitReport{
		Model:         r.Model,
		Method:        r.Method.String(),
		Optimizer:     r.Optimizer,
		LowConfidence: r.LowConfidence,
		Fields:        r.Named(),
	}
	if r.Covariance != nil {
		rep.Free = r.Free
		rep.Covariance = r.Covariance.ToRows()
	}
	if r.CovarianceErr != nil {
		rep.CovarianceError = r.CovarianceErr.Error()
	}
	if len(times) == 0 {
		return rep
	}

	req := r.Distribution.DefaultRequest()
	rep.BoundType = req.Type.String()
	curve, err := r.Distribution.SF(times, req)
	if err != nil {
		rep.BoundsError = err.Error()
	}
	for _, p := range curve.Points() {
		rep.Bounds = append(rep.Bounds, boundRow{Time: p.X, SF: p.Y, Lower: p.Lower, Upper: p.Upper})
	}

	return rep
}

func newTableReport(t *fit.Table) tableReport {
	rep := tableReport{SortBy: t.SortBy.String()}
	if best := t.Best(); best != nil {
		rep.Best = best.Model
	}
	for _, e := range t.Ranked() {
		rep.Ranked = append(rep.Ranked, rankRow{
			Model:  e.Model,
			AICc:   e.Result.AICc,
			BIC:    e.Result.BIC,
			LogLik: e.Result.LogLik,
			AD:     e.Result.AD,
		})
	}
	for _, e := range t.Failed() {
		rep.Failed = append(rep.Failed, failRow{Model: e.Model, Error: e.Err.Error()})
	}

	return rep
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}

	return enc.Close()
}
