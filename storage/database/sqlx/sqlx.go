// Package sqlxrepos implements the core repositories on postgres via sqlx.
package sqlxrepos

import "fmt"

func argCond(column string, n int) string {
	return fmt.Sprintf("%s = $%d", column, n)
}
