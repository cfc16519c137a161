package types

// AnalysisResult holds the signals derived from one frame.
type AnalysisResult struct {
	PlantDetected bool    `json:"plant_detected"`
	HealthRatio   float64 `json:"health_ratio"` // 0-100, green share of green+yellow area
	FruitDetected bool    `json:"fruit_detected"`
	GreenArea     int     `json:"green_area"`
	YellowArea    int     `json:"yellow_area"`
}

// Telemetry is the /data response body. Field order is the wire key order.
type Telemetry struct {
	AnalysisResult
	FPS float64 `json:"fps"`
}

// NewTelemetry attaches a frame rate to an analysis result.
func NewTelemetry(result AnalysisResult, fps float64) Telemetry {
	return Telemetry{AnalysisResult: result, FPS: fps}
}
