// Package check runs JMX checks: evaluates MBeans and reports the results.
package check

import (
	"context"

	"go.uber.org/multierr"

	"github.com/amiskov/jmx-check/pkg/logger"
	"github.com/amiskov/jmx-check/pkg/models"
	"github.com/amiskov/jmx-check/pkg/threshold"
)

// Request describes a single check of one MBean on one agent.
type Request struct {
	MBean    models.MBean
	Warning  threshold.Threshold
	Critical threshold.Threshold
	Options  threshold.Options
}

type evaluator interface {
	Evaluate(ctx context.Context, mbean models.MBean, warning, critical threshold.Threshold,
		opts threshold.Options) (models.Evaluation, error)
}

type reporter interface {
	Report(models.MBean, models.Evaluation) models.Severity
	ReportError(error) models.Severity
}

// Recorder gets every check outcome, e.g. to export it as metrics.
type Recorder interface {
	Record(models.MBean, models.Evaluation)
	RecordError(models.MBean)
}

type Checker struct {
	evaluator evaluator
	reporter  reporter
	recorders []Recorder
}

func New(e evaluator, r reporter, recorders ...Recorder) *Checker {
	return &Checker{
		evaluator: e,
		reporter:  r,
		recorders: recorders,
	}
}

// CheckMetric evaluates and reports a single request.
// Errors are returned as is and not reported.
func (c *Checker) CheckMetric(ctx context.Context, req Request) (models.Severity, error) {
	ev, err := c.evaluator.Evaluate(ctx, req.MBean, req.Warning, req.Critical, req.Options)
	if err != nil {
		for _, r := range c.recorders {
			r.RecordError(req.MBean)
		}
		return models.Critical, err
	}

	for _, r := range c.recorders {
		r.Record(req.MBean, ev)
	}
	return c.reporter.Report(req.MBean, ev), nil
}

// CheckAll runs requests one by one and returns the most severe result.
// A failed request is reported, counts as CRITICAL and doesn't stop the others.
func (c *Checker) CheckAll(ctx context.Context, reqs []Request) (models.Severity, error) {
	var (
		severities []models.Severity
		errs       error
	)

	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return c.reporter.ReportError(err), multierr.Append(errs, err)
		}

		severity, err := c.CheckMetric(ctx, req)
		if err != nil {
			logger.Log(ctx).Debugw("check failed",
				"host", req.MBean.Agent.Host,
				"mbean", req.MBean.Name,
				"error", err,
			)
			severity = c.reporter.ReportError(err)
			errs = multierr.Append(errs, err)
		}
		severities = append(severities, severity)
	}

	return models.Max(severities...), errs
}
