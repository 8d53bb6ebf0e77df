// Package valuation runs the three estimators over a validated input and blends them.
//
// Every evaluation is a pure function of its input and the assumption set: no I/O,
// no clock, no shared mutable state. Estimators may run concurrently.
package valuation

import (
	"blended_valuation/pkg/core/assumption"
	"blended_valuation/pkg/core/logging"
	"blended_valuation/pkg/core/validate"
	"blended_valuation/pkg/models"
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Outcome is the full result of one evaluation.
type Outcome struct {
	Input       *models.ValuationInput
	Results     []MethodologyResult // in models.Methodologies order
	Blend       BlendedValuation
	Guard       *GuardResult
	Assumptions assumption.Assumptions
}

// Result returns the outcome of one methodology.
func (o *Outcome) Result(m models.Methodology) (MethodologyResult, bool) {
	for _, r := range o.Results {
		if r.Method == m {
			return r, true
		}
	}
	return MethodologyResult{}, false
}

// Engine evaluates valuation requests against a fixed assumption set.
// It is safe for concurrent use.
type Engine struct {
	assumptions assumption.Assumptions
	logger      *logging.Logger
}

// NewEngine creates an engine. A nil logger discards output.
func NewEngine(a assumption.Assumptions, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewSilentLogger()
	}
	return &Engine{assumptions: a, logger: logger}
}

// Assumptions returns the engine's assumption set.
func (e *Engine) Assumptions() assumption.Assumptions {
	return e.assumptions
}

// EvaluateRaw validates raw input and evaluates it. Validation failures are returned as
// *validate.ValidationError before any computation.
func (e *Engine) EvaluateRaw(ctx context.Context, raw models.RawInput) (*Outcome, error) {
	in, err := validate.ValidateInput(raw, validate.OptionsFrom(e.assumptions.Validation))
	if err != nil {
		return nil, err
	}
	for _, w := range in.Warnings {
		e.logger.Debug().Str("warning", w).Msg("input normalized")
	}
	return e.Evaluate(ctx, in)
}

// Evaluate runs the estimators and blends their results.
// Returns *ProcessingError when no methodology is available.
func (e *Engine) Evaluate(ctx context.Context, in *models.ValuationInput) (*Outcome, error) {
	if in == nil {
		return nil, &validate.ValidationError{Issues: []validate.Issue{{Path: "$", Reason: "no input"}}}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	estimators := e.estimators()
	results := make([]MethodologyResult, len(estimators))

	if e.assumptions.Engine.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, est := range estimators {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = runEstimator(est, in)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, est := range estimators {
			results[i] = runEstimator(est, in)
		}
	}

	for _, r := range results {
		if r.IsAvailable() {
			e.logger.Debug().Str("method", string(r.Method)).Float64("enterprise_value", r.EnterpriseValue).Msg("methodology available")
		} else {
			e.logger.Debug().Str("method", string(r.Method)).Str("reason", r.Reason).Msg("methodology skipped")
		}
	}

	bv, err := Blend(results, e.assumptions.Weights)
	if err != nil {
		e.logger.Warn().Err(err).Msg("valuation failed")
		return nil, err
	}

	out := &Outcome{Input: in, Results: results, Blend: bv, Assumptions: e.assumptions}
	if e.assumptions.Guard.Enabled {
		out.Guard = CheckAnchorBand(bv, in, e.assumptions)
		if out.Guard != nil && !out.Guard.WithinBand {
			e.logger.Info().Float64("band_low", out.Guard.BandLow).Float64("band_high", out.Guard.BandHigh).
				Msg("blended value outside sector anchor band")
		}
	}

	e.logger.Info().
		Str("company", in.CompanyName).
		Int("methods", len(bv.Contributing)).
		Float64("low", bv.Range.Low).
		Float64("mid", bv.Range.Mid).
		Float64("high", bv.Range.High).
		Msg("valuation blended")

	return out, nil
}

// estimator is one methodology bound to the engine's assumptions.
type estimator struct {
	method models.Methodology
	run    func(*models.ValuationInput) MethodologyResult
}

func (e *Engine) estimators() []estimator {
	a := e.assumptions
	return []estimator{
		{models.MethodDCF, func(in *models.ValuationInput) MethodologyResult { return CalculateDCF(in, a) }},
		{models.MethodTransactionComps, func(in *models.ValuationInput) MethodologyResult { return CalculateTransactionComps(in, a) }},
		{models.MethodAssetBased, CalculateAssetBased},
	}
}

// runEstimator converts a panic inside one methodology into an unavailable result.
func runEstimator(est estimator, in *models.ValuationInput) (res MethodologyResult) {
	defer func() {
		if r := recover(); r != nil {
			res = Unavailable(est.method, fmt.Sprintf("internal error: %v", r))
		}
	}()
	return est.run(in)
}
