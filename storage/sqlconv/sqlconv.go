// Package sqlconv holds the checked uint64<->int64 conversions the SQL
// storage adapters need: block numbers are stored as signed 64-bit
// integers to match common RDBMS column types, and spec.md §4.3 requires
// the conversion to fail loudly above 2^63 rather than wrap silently.
package sqlconv

import "fmt"

func ToInt64(u uint64) (int64, error) {
	if u > 1<<63-1 {
		return 0, fmt.Errorf("sqlconv: %d overflows int64", u)
	}
	return int64(u), nil
}

func ToUint64(i int64) (uint64, error) {
	if i < 0 {
		return 0, fmt.Errorf("sqlconv: %d is negative, cannot convert to uint64", i)
	}
	return uint64(i), nil
}
