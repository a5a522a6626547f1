package models

// Severity is a check outcome, its numeric value is the process exit code.
type Severity int

const (
	OK Severity = iota
	Warning
	Critical
)

func (s Severity) String() string {
	switch s {
	case OK:
		return "OK"
	case Warning:
		return "WARNING"
	default:
		return "CRITICAL"
	}
}

func (s Severity) ExitCode() int {
	return int(s)
}

// Max returns the most severe of the given severities.
func Max(severities ...Severity) Severity {
	res := OK
	for _, s := range severities {
		if s > res {
			res = s
		}
	}
	return res
}

// Ratio keeps the raw factors of a percentage computed from two MBeans.
type Ratio struct {
	Numerator   Value
	Denominator Value
}

// Evaluation is the outcome of comparing an MBean value against thresholds.
type Evaluation struct {
	Severity Severity
	Value    Value
	Ratio    *Ratio
	// Unresolved is set when a threshold MBean didn't return a single value,
	// there is no value to display then.
	Unresolved bool
}

// Display returns the compared value as printed in the check output.
func (e Evaluation) Display() string {
	if e.Unresolved {
		return "N/A"
	}
	if e.Ratio != nil {
		return e.Value.String() + "% (" + e.Ratio.Numerator.String() + "/" + e.Ratio.Denominator.String() + ")"
	}
	return e.Value.String()
}
