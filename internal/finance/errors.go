package finance

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrPropertyValueMissing means neither the uploaded documents nor the
// resolved property record carried a property value. The request cannot
// proceed; the engine never substitutes a placeholder number.
var ErrPropertyValueMissing = eris.New("finance: property_value is required and was absent from documents and property data")

// DivisionUndefinedError reports a metric whose denominator was zero or
// negative. It is surfaced to the caller instead of returning Inf or NaN.
type DivisionUndefinedError struct {
	Metric string
}

func (e *DivisionUndefinedError) Error() string {
	return fmt.Sprintf("finance: %s is undefined, denominator is zero or negative", e.Metric)
}

// IsDivisionUndefined reports whether err is a DivisionUndefinedError.
func IsDivisionUndefined(err error) bool {
	var d *DivisionUndefinedError
	return errors.As(err, &d)
}
