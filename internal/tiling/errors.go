package tiling

import (
	"errors"
	"fmt"

	"mulforge/internal/diag"
	"mulforge/internal/geom"
)

// ErrorKind enumerates the ways a solve can fail.
type ErrorKind uint8

const (
	// Unsatisfiable indicates that no candidate covers the cursor cell.
	Unsatisfiable ErrorKind = iota + 1
	CostExceeded
	InvalidSolution
)

func (k ErrorKind) String() string {
	switch k {
	case Unsatisfiable:
		return "unsatisfiable"
	case CostExceeded:
		return "cost exceeded"
	case InvalidSolution:
		return "invalid solution"
	default:
		return fmt.Sprintf("error kind %d", uint8(k))
	}
}

// TilingError is returned by strategies.
type TilingError struct {
	Kind     ErrorKind
	Strategy string
	Cursor   geom.Coord // for Unsatisfiable and CostExceeded
	Cost     float64    // running cost at abort, for CostExceeded
	Bound    float64    // for CostExceeded
	Findings *diag.Bag  // for InvalidSolution
	Err      error
}

func (e *TilingError) Error() string {
	if e == nil {
		return "<nil>"
	}
	prefix := e.Strategy
	if prefix == "" {
		prefix = "tiling"
	}
	switch e.Kind {
	case Unsatisfiable:
		return fmt.Sprintf("%s: no tile covers cell %s", prefix, e.Cursor)
	case CostExceeded:
		return fmt.Sprintf("%s: cost %g exceeds bound %g at %s", prefix, e.Cost, e.Bound, e.Cursor)
	case InvalidSolution:
		n := 0
		if e.Findings != nil {
			n = e.Findings.Len()
		}
		if e.Err != nil {
			return fmt.Sprintf("%s: invalid solution: %v", prefix, e.Err)
		}
		return fmt.Sprintf("%s: invalid solution (%d findings)", prefix, n)
	default:
		return fmt.Sprintf("%s: tiling error kind=%d", prefix, e.Kind)
	}
}

func (e *TilingError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err is a *TilingError of kind k.
func IsKind(err error, k ErrorKind) bool {
	var terr *TilingError
	return errors.As(err, &terr) && terr.Kind == k
}
