package core

type Metric struct {
	Type      string `json:"type"`
	Value     int    `json:"value"`
	Threshold *int   `json:"threshold,omitempty"`
}

func NewMetric(metricType string, value int) Metric {
	return Metric{Type: metricType, Value: value}
}
