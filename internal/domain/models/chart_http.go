package models

// Requests for the chart HTTP endpoints. Defined in domain for consistency and reuse.

type SelectTimeframeRequest struct {
	Granularity string `query:"granularity" json:"granularity" validate:"required,oneof=hourly daily weekly monthly"`
}
