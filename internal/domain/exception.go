// internal/domain/exception.go
package domain

import "strings"

// ExceptionCode identifies a planner-review condition raised during a
// period-end run.
type ExceptionCode int

const (
	ExceptionNone ExceptionCode = iota
	ExceptionDemandSpikeHigh
	ExceptionDemandSpikeLow
	ExceptionTrackingHigh
	ExceptionTrackingLow
	ExceptionLeadTimeTrend
)

var exceptionLabels = map[ExceptionCode]string{
	ExceptionDemandSpikeHigh: "Demand Spike High",
	ExceptionDemandSpikeLow:  "Demand Spike Low",
	ExceptionTrackingHigh:    "Tracking Signal High",
	ExceptionTrackingLow:     "Tracking Signal Low",
	ExceptionLeadTimeTrend:   "Lead Time Trend",
}

var exceptionCodes = map[string]ExceptionCode{
	"demand spike high":    ExceptionDemandSpikeHigh,
	"demand spike low":     ExceptionDemandSpikeLow,
	"tracking signal high": ExceptionTrackingHigh,
	"tracking signal low":  ExceptionTrackingLow,
	"lead time trend":      ExceptionLeadTimeTrend,
}

// ExceptionLabel returns a human-readable label for an exception code.
func ExceptionLabel(code ExceptionCode) string {
	if label, ok := exceptionLabels[code]; ok {
		return label
	}

	return "None"
}

// ParseException returns the code for a given label (case-insensitive).
func ParseException(label string) (ExceptionCode, bool) {
	code, ok := exceptionCodes[strings.ToLower(label)]

	return code, ok
}
