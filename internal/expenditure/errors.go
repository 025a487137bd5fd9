package expenditure

import "errors"

var (
	// ErrInvalidPeriod is returned for a period selector outside daily, weekly, monthly and yearly.
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrEmptyPassStore is returned when a comparison is requested over no passes at all.
	ErrEmptyPassStore = errors.New("pass store is empty")
)
