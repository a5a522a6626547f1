// Package reporter prints check results in the format monitoring systems
// (Nagios, Icinga, Sensu, ...) expect from a check plugin.
package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/amiskov/jmx-check/pkg/models"
)

type Reporter struct {
	out             io.Writer
	warnExplanation string
	critExplanation string
}

// New creates a reporter. Explanations are printed under WARNING and CRITICAL results.
func New(out io.Writer, warnExplanation, critExplanation string) *Reporter {
	return &Reporter{
		out:             out,
		warnExplanation: strings.TrimSpace(warnExplanation),
		critExplanation: strings.TrimSpace(critExplanation),
	}
}

// Report prints `{SEVERITY} - {mbean} A:{attribute}[ K:{key}] : {value}` and
// returns the severity unchanged.
func (r *Reporter) Report(mbean models.MBean, ev models.Evaluation) models.Severity {
	line := fmt.Sprintf("%s - %s A:%s", ev.Severity, mbean.Name, mbean.Attribute)
	if mbean.Key != "" {
		line += " K:" + mbean.Key
	}
	line += " : " + ev.Display()
	r.println(line)

	var explanation string
	switch ev.Severity {
	case models.Warning:
		explanation = r.warnExplanation
	case models.Critical:
		explanation = r.critExplanation
	}
	if explanation != "" {
		r.println(explanation)
	}

	return ev.Severity
}

// ReportError prints a check failure, it is always CRITICAL.
func (r *Reporter) ReportError(err error) models.Severity {
	r.println(err.Error())
	return models.Critical
}

func (r *Reporter) println(s string) {
	// A broken stdout leaves the exit code as the only channel.
	_, _ = fmt.Fprintln(r.out, s)
}
