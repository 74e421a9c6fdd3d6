package store

import (
	"fmt"

	"github.com/innometrics/innometrics-backend/internal/model"
)

// filterColumns maps client filter keys to activity columns. The map is
// a whitelist: it keeps filter input out of SQL identifiers, so an
// unrecognized key is rejected rather than ignored.
var filterColumns = map[string]string{
	"executable_name": "executable_name",
	"browser_url":     "browser_url",
	"browser_title":   "browser_title",
	"ip_address":      "ip_address",
	"mac_address":     "mac_address",
	"activity_type":   "activity_type",
}

// FilterColumn resolves a filter key to its column name.
func FilterColumn(key string) (string, error) {
	col, ok := filterColumns[key]
	if !ok {
		return "", fmt.Errorf("%w: unknown filter key %q", model.ErrValidation, key)
	}
	return col, nil
}
