package models

import (
	"errors"
	"fmt"
)

var (
	ErrorConnection        = errors.New("can't connect to Jolokia")
	ErrorInvalidResponse   = errors.New("invalid response from Jolokia")
	ErrorUnexpectedStatus  = fmt.Errorf("%w: unexpected HTTP status", ErrorInvalidResponse)
	ErrorAmbiguousResult   = errors.New("MBean does not return a single value")
	ErrorAttributeNotFound = errors.New("attribute not found")
	ErrorNotNumeric        = errors.New("value is not numeric")
	ErrorInvalidThreshold  = errors.New("invalid threshold")
	ErrorDivisionByZero    = errors.New("division by zero")
)
