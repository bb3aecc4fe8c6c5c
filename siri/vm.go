package siri

import transit "github.com/theoremus-urban-solutions/transit-types/siri"

// VehicleMonitoring represents the VehicleMonitoring delivery
type VehicleMonitoring struct {
	ResponseTimestamp string                 `json:"ResponseTimestamp"`
	ValidUntil        string                 `json:"ValidUntil"`
	VehicleActivity   []VehicleActivityEntry `json:"VehicleActivity"`
}

// VehicleActivityEntry represents a single vehicle's activity
type VehicleActivityEntry struct {
	RecordedAtTime          string                  `json:"RecordedAtTime"`
	ValidUntilTime          string                  `json:"ValidUntilTime,omitempty"`
	MonitoredVehicleJourney MonitoredVehicleJourney `json:"MonitoredVehicleJourney"`
}

// MonitoredVehicleJourney contains details about a monitored vehicle journey
type MonitoredVehicleJourney struct {
	LineRef                 string                          `json:"LineRef"`
	DirectionRef            string                          `json:"DirectionRef,omitempty"`
	FramedVehicleJourneyRef transit.FramedVehicleJourneyRef `json:"FramedVehicleJourneyRef"`
	VehicleMode             string                          `json:"VehicleMode,omitempty"`
	PublishedLineName       string                          `json:"PublishedLineName,omitempty"`
	Monitored               bool                            `json:"Monitored"`
	DataSource              string                          `json:"DataSource"`
	VehicleLocation         *VehicleLocation                `json:"VehicleLocation,omitempty"`
	Delay                   string                          `json:"Delay"` // ISO-8601 duration, "PT0S" when on time
	VehicleRef              string                          `json:"VehicleRef"`
	VehicleType             string                          `json:"VehicleType,omitempty"`
	MonitoredCall           *MonitoredCall                  `json:"MonitoredCall,omitempty"`
	IsCompleteStopSequence  bool                            `json:"IsCompleteStopSequence"`
}

// VehicleLocation represents the geographical location of a vehicle
type VehicleLocation struct {
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
}

// MonitoredCall is the next stop the vehicle calls at.
type MonitoredCall struct {
	StopPointRef     string `json:"StopPointRef"`
	StopPointName    string `json:"StopPointName,omitempty"`
	AimedArrivalTime string `json:"AimedArrivalTime,omitempty"`
	VehicleAtStop    bool   `json:"VehicleAtStop"`
}
