package domain

import "time"

// WebVital is one raw client-side performance sample (LCP, CLS, INP, ...).
type WebVital struct {
	VitalID    string    `json:"id" dynamodbav:"vital_id"`
	Metric     string    `json:"metric" dynamodbav:"metric"`
	Value      float64   `json:"value" dynamodbav:"value"`
	Page       string    `json:"page" dynamodbav:"page"`
	DeviceKind string    `json:"device_kind" dynamodbav:"device_kind"` // desktop | mobile | tablet
	RecordedAt time.Time `json:"recorded_at" dynamodbav:"recorded_at"`
}

type IngestVitalRequest struct {
	Metric     string  `json:"metric" validate:"required"`
	Value      float64 `json:"value" validate:"gte=0"`
	Page       string  `json:"page" validate:"required"`
	DeviceKind string  `json:"device_kind" validate:"omitempty,oneof=desktop mobile tablet"`
}

// VitalSummary holds simple statistics for one metric bucket.
type VitalSummary struct {
	Metric     string  `json:"metric"`
	Day        string  `json:"day"` // YYYY-MM-DD
	Page       string  `json:"page"`
	DeviceKind string  `json:"device_kind"`
	Count      int     `json:"count"`
	Average    float64 `json:"average"`
	Median     float64 `json:"median"`
	P75        float64 `json:"p75"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
}
