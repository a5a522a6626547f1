// Package threshold compares MBean values against warning and critical thresholds.
package threshold

import "github.com/amiskov/jmx-check/pkg/models"

// Threshold is either a literal value or an MBean whose value is used as the threshold.
type Threshold struct {
	literal string
	mbean   *models.MBean
}

func Literal(v string) Threshold {
	return Threshold{literal: v}
}

func Reference(m models.MBean) Threshold {
	return Threshold{mbean: &m}
}

// MBean returns the referenced MBean, if any.
func (t Threshold) MBean() (models.MBean, bool) {
	if t.mbean == nil {
		return models.MBean{}, false
	}
	return *t.mbean, true
}

func (t Threshold) String() string {
	if t.mbean != nil {
		return t.mbean.Name + " A:" + t.mbean.Attribute
	}
	return t.literal
}
