// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/relfit/fit"
)

// errBadJob marks a job file that parsed but holds unusable settings.
var errBadJob = errors.New("relfit: invalid job")

// Job is the YAML document read by every fitting command.
//
//	failures: [25.05, 71.52, ...]
//	right_censored: [44.3, 44.3]
//	method: MLE            # or LS
//	ci: 0.95
//	ci_type: time          # or reliability
//	optimizers: [L-BFGS, Nelder-Mead]
//	initial_guess: [40, 2]
//	sort_by: AICc          # BIC, AD, loglik
//	exclude: [Beta_2P]
//	workers: 4
//	seed: 1
//	bounds: [10, 20, 30]   # times at which SF bounds are reported
type Job struct {
	Failures      []float64 `yaml:"failures"`
	RightCensored []float64 `yaml:"right_censored"`
	Method        string    `yaml:"method"`
	CI            float64   `yaml:"ci"`
	CIType        string    `yaml:"ci_type"`
	Optimizers    []string  `yaml:"optimizers"`
	InitialGuess  []float64 `yaml:"initial_guess"`
	SortBy        string    `yaml:"sort_by"`
	Exclude       []string  `yaml:"exclude"`
	Workers       *int      `yaml:"workers"`
	Seed          uint64    `yaml:"seed"`
	Bounds        []float64 `yaml:"bounds"`
}

// loadJob reads a job from path; "-" reads stdin.
func loadJob(path string, stdin io.Reader) (*Job, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read job %q: %w", path, err)
	}

	var j Job
	if err := yaml.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse job %q: %w", path, err)
	}

	return &j, nil
}

func (j *Job) observations() (*fit.Observations, error) {
	return fit.NewObservations(j.Failures, j.RightCensored)
}

// options converts the job into fit options. Values are checked here because
// the option constructors panic on nonsense.
func (j *Job) options(logger *zap.Logger) ([]fit.Option, error) {
	opts := []fit.Option{fit.WithLogger(logger)}

	switch strings.ToUpper(j.Method) {
	case "", "MLE":
	case "LS":
		opts = append(opts, fit.WithMethod(fit.LS))
	default:
		return nil, fmt.Errorf("%w: method %q (want MLE or LS)", errBadJob, j.Method)
	}

	if j.CI != 0 {
		if !(j.CI > 0 && j.CI < 1) {
			return nil, fmt.Errorf("%w: ci %g outside (0,1)", errBadJob, j.CI)
		}
		opts = append(opts, fit.WithCI(j.CI))
	}
	if j.CIType != "" {
		bt, err := fit.ParseBoundType(j.CIType)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errBadJob, err)
		}
		opts = append(opts, fit.WithCIType(bt))
	}

	if len(j.Optimizers) > 0 {
		strategies := make([]fit.Strategy, 0, len(j.Optimizers))
		for _, name := range j.Optimizers {
			s, err := fit.ParseStrategy(name)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", errBadJob, err)
			}
			strategies = append(strategies, s)
		}
		opts = append(opts, fit.WithOptimizers(strategies...))
	}
	if len(j.InitialGuess) > 0 {
		opts = append(opts, fit.WithInitialGuess(j.InitialGuess...))
	}

	if j.SortBy != "" {
		c, err := parseCriterion(j.SortBy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fit.WithSortBy(c))
	}
	if len(j.Exclude) > 0 {
		opts = append(opts, fit.WithExclude(j.Exclude...))
	}
	if j.Workers != nil {
		if *j.Workers < 0 {
			return nil, fmt.Errorf("%w: workers %d < 0", errBadJob, *j.Workers)
		}
		opts = append(opts, fit.WithWorkers(*j.Workers))
	}
	if j.Seed != 0 {
		opts = append(opts, fit.WithSeed(j.Seed))
	}

	return opts, nil
}

func parseCriterion(s string) (fit.Criterion, error) {
	for _, c := range []fit.Criterion{fit.ByAICc, fit.ByBIC, fit.ByAD, fit.ByLogLik} {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}

	return 0, fmt.Errorf("%w: sort_by %q (want AICc, BIC, AD or loglik)", errBadJob, s)
}
