// Package sequence arma los números legibles <PREFIJO>-<YYYYMM>-<NNNNNN>.
package sequence

import (
	"fmt"
	"time"
)

// Period devuelve el período YYYYMM (UTC) de t.
func Period(t time.Time) string {
	return t.UTC().Format("200601")
}

// Format arma el número con el contador rellenado a 6 dígitos.
func Format(prefix, period string, n int64) string {
	return fmt.Sprintf("%s-%s-%06d", prefix, period, n)
}
