package threshold

import (
	"context"
	"fmt"
	"math"

	"github.com/amiskov/jmx-check/pkg/logger"
	"github.com/amiskov/jmx-check/pkg/models"
)

type Fetcher interface {
	Fetch(context.Context, models.MBean) ([]models.Result, error)
}

type Options struct {
	// Second turns the checked value into a percentage: value / second * 100.
	Second *models.MBean
	// Compare checks for an exact (string) match instead of a range.
	Compare bool
	// Reverse makes a range check trigger at or below the thresholds.
	Reverse bool
}

type Evaluator struct {
	fetcher Fetcher
}

func NewEvaluator(f Fetcher) *Evaluator {
	return &Evaluator{fetcher: f}
}

// Evaluate reads the MBean and classifies its value. Critical is checked first.
//
// A threshold MBean which doesn't resolve to exactly one result makes the
// evaluation CRITICAL with no value rather than an error.
func (e *Evaluator) Evaluate(ctx context.Context, mbean models.MBean, warning, critical Threshold,
	opts Options,
) (models.Evaluation, error) {
	warnVal, ok, err := e.resolve(ctx, "Warning", warning)
	if err != nil {
		return models.Evaluation{}, err
	}
	if !ok {
		return unresolved, nil
	}
	critVal, ok, err := e.resolve(ctx, "Critical", critical)
	if err != nil {
		return models.Evaluation{}, err
	}
	if !ok {
		return unresolved, nil
	}

	value, err := e.fetchValue(ctx, mbean)
	if err != nil {
		return models.Evaluation{}, err
	}

	res := models.Evaluation{Value: value}

	if opts.Second != nil {
		second, err := e.fetchValue(ctx, *opts.Second)
		if err != nil {
			return models.Evaluation{}, err
		}
		pct, err := percent(value, second)
		if err != nil {
			return models.Evaluation{}, err
		}
		res.Value = pct
		res.Ratio = &models.Ratio{Numerator: value, Denominator: second}
	}

	if opts.Compare {
		res.Severity = compare(res.Value, warnVal, critVal)
		return res, nil
	}

	res.Severity, err = inRange(res.Value, warnVal, critVal, opts.Reverse)
	if err != nil {
		return models.Evaluation{}, fmt.Errorf("%s A:%s: %w", mbean.Name, mbean.Attribute, err)
	}
	return res, nil
}

var unresolved = models.Evaluation{Severity: models.Critical, Unresolved: true}

func (e *Evaluator) resolve(ctx context.Context, level string, t Threshold) (models.Value, bool, error) {
	mbean, isRef := t.MBean()
	if !isRef {
		return models.NewValue(t.literal), true, nil
	}

	results, err := e.fetcher.Fetch(ctx, mbean)
	if err != nil {
		return models.Value{}, false, err
	}

	switch {
	case len(results) > 1:
		logger.Log(ctx).Errorf("MONITORING ERROR - %s threshold is MBean and does not return a single value", level)
		return models.Value{}, false, nil
	case len(results) == 0:
		logger.Log(ctx).Errorf("MONITORING ERROR - %s threshold is MBean and does not return a value", level)
		return models.Value{}, false, nil
	}

	v, err := results[0].ValueOf(mbean.Attribute, mbean.Key)
	if err != nil {
		return models.Value{}, false, err
	}
	return v, true, nil
}

func (e *Evaluator) fetchValue(ctx context.Context, mbean models.MBean) (models.Value, error) {
	results, err := e.fetcher.Fetch(ctx, mbean)
	if err != nil {
		return models.Value{}, err
	}
	if len(results) != 1 {
		return models.Value{}, fmt.Errorf("%w: `%s` matched %d MBeans", models.ErrorAmbiguousResult, mbean.Name, len(results))
	}
	return results[0].ValueOf(mbean.Attribute, mbean.Key)
}

func percent(value, of models.Value) (models.Value, error) {
	n, err := value.Float64()
	if err != nil {
		return models.Value{}, err
	}
	d, err := of.Float64()
	if err != nil {
		return models.Value{}, err
	}
	if d == 0 {
		return models.Value{}, fmt.Errorf("%w: %s/%s", models.ErrorDivisionByZero, value, of)
	}
	return models.NumberValue(math.RoundToEven(n / d * 100)), nil
}

func compare(value, warning, critical models.Value) models.Severity {
	switch value.String() {
	case critical.String():
		return models.Critical
	case warning.String():
		return models.Warning
	default:
		return models.OK
	}
}

func inRange(value, warning, critical models.Value, reverse bool) (models.Severity, error) {
	v, err := value.Float64()
	if err != nil {
		return models.OK, err
	}

	breached := func(t models.Value) (bool, error) {
		limit, err := t.Float64()
		if err != nil {
			return false, fmt.Errorf("%w `%s`", models.ErrorInvalidThreshold, t)
		}
		if reverse {
			return v <= limit, nil
		}
		return v >= limit, nil
	}

	if crit, err := breached(critical); err != nil || crit {
		return models.Critical, err
	}
	if warn, err := breached(warning); err != nil || warn {
		return models.Warning, err
	}
	return models.OK, nil
}
