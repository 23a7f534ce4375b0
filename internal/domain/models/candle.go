package models

import (
	"encoding/json"
	"time"
)

// FlexString holds a JSON value that the quote service delivers either as a
// string or as a bare number. The literal text is kept as-is; coercion into
// a typed value happens in the normalizer, where failures can be reported.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(data)
	return nil
}

func (f FlexString) String() string { return string(f) }

// RawObservation is one quote record as delivered by the source. Both fields
// keep the source's loose typing: date may be RFC3339 or unix seconds, close
// may be numeric or numeric-as-text.
type RawObservation struct {
	Date  FlexString `json:"date"`
	Close FlexString `json:"close"`
}

// ChartPoint is a normalized, display-ready observation. SourceTimestamp is
// retained alongside the label because the label is lossy and must never be
// used for ordering.
type ChartPoint struct {
	DisplayLabel    string    `json:"label"`
	ClosePrice      float64   `json:"close"`
	SourceTimestamp time.Time `json:"timestamp"`
}

// SummaryStatistics is derived from the active window and never persisted.
type SummaryStatistics struct {
	Current float64 `json:"current"`
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
	Average float64 `json:"average"`
}
