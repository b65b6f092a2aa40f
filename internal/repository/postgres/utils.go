package postgres

import "fmt"

// wrapDBErr maps common DB errors to repository-level errors and wraps
// them with the provided operation name.
func wrapDBErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s:%w", op, translateDBErr(err))
}
