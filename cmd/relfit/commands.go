// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/relfit/fit"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	verbose bool
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "relfit",
		Short: "Fit lifetime distributions to censored reliability data",
		Long: `relfit fits parametric lifetime distributions to failure times with
optional right-censored observations, by maximum likelihood or rank
regression, and reports goodness of fit and confidence bounds.

Every fitting command reads a YAML job (-f job.yaml, or -f - for stdin)
and writes its report as YAML to stdout.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initLogger()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log optimizer fallbacks and failed fits")

	fitCmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a single model",
		Args:  cobra.NoArgs,
		RunE:  a.runFit,
	}
	fitCmd.Flags().StringP("model", "m", fit.Weibull2P, "model name (see 'relfit models')")

	everythingCmd := &cobra.Command{
		Use:   "everything",
		Short: "Fit every catalogue model and rank them",
		Args:  cobra.NoArgs,
		RunE:  a.runEverything,
	}
	everythingCmd.Flags().Bool("no-composites", false, "skip Weibull_Mixture and Weibull_CR")

	mixtureCmd := &cobra.Command{
		Use:   "mixture",
		Short: "Fit a two-component Weibull mixture",
		Args:  cobra.NoArgs,
		RunE:  a.runComposite(fit.WeibullMixture),
	}
	crCmd := &cobra.Command{
		Use:   "cr",
		Short: "Fit a two-mode Weibull competing-risks model",
		Args:  cobra.NoArgs,
		RunE:  a.runComposite(fit.WeibullCR),
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List the fittable model names",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range fit.ModelNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}

	for _, c := range []*cobra.Command{fitCmd, everythingCmd, mixtureCmd, crCmd} {
		c.Flags().StringP("file", "f", "-", "job YAML file, - for stdin")
		root.AddCommand(c)
	}
	root.AddCommand(modelsCmd)

	return root
}

func (a *app) initLogger() error {
	var (
		l   *zap.Logger
		err error
	)
	if a.verbose {
		l, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
		l, err = cfg.Build()
	}
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.logger = l

	return nil
}

// prepare loads the job named by --file and turns it into fit inputs.
func (a *app) prepare(cmd *cobra.Command) (*Job, *fit.Observations, []fit.Option, error) {
	path, _ := cmd.Flags().GetString("file")
	job, err := loadJob(path, cmd.InOrStdin())
	if err != nil {
		return nil, nil, nil, err
	}
	obs, err := job.observations()
	if err != nil {
		return nil, nil, nil, err
	}
	opts, err := job.options(a.logger)
	if err != nil {
		return nil, nil, nil, err
	}

	return job, obs, opts, nil
}

func (a *app) runFit(cmd *cobra.Command, _ []string) error {
	job, obs, opts, err := a.prepare(cmd)
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("model")
	if name == fit.WeibullMixture || name == fit.WeibullCR {
		return a.fitComposite(cmd, name, job, obs, opts)
	}

	r, err := fit.FitByName(obs, name, opts...)
	if err != nil {
		return err
	}
	a.logger.Info("Model fitted", zap.String("model", r.Model), zap.String("optimizer", r.Optimizer))

	return writeYAML(cmd.OutOrStdout(), newFitReport(r, job.Bounds))
}

func (a *app) runEverything(cmd *cobra.Command, _ []string) error {
	_, obs, opts, err := a.prepare(cmd)
	if err != nil {
		return err
	}
	if skip, _ := cmd.Flags().GetBool("no-composites"); skip {
		opts = append(opts, fit.WithoutComposites())
	}

	t, err := fit.FitEverything(obs, opts...)
	if t == nil {
		return err
	}
	if werr := writeYAML(cmd.OutOrStdout(), newTableReport(t)); werr != nil {
		return werr
	}

	return err
}

func (a *app) runComposite(name string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		job, obs, opts, err := a.prepare(cmd)
		if err != nil {
			return err
		}

		return a.fitComposite(cmd, name, job, obs, opts)
	}
}

func (a *app) fitComposite(cmd *cobra.Command, name string, job *Job, obs *fit.Observations, opts []fit.Option) error {
	var (
		cr  *fit.CompositeResult
		err error
	)
	switch name {
	case fit.WeibullMixture:
		cr, err = fit.FitWeibullMixture(obs, opts...)
	case fit.WeibullCR:
		cr, err = fit.FitWeibullCR(obs, opts...)
	default:
		return errors.New("relfit: not a composite model: " + name)
	}
	if err != nil {
		return err
	}

	return writeYAML(cmd.OutOrStdout(), newFitReport(cr.Result, job.Bounds))
}
