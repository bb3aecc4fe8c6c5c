package siri

import transit "github.com/theoremus-urban-solutions/transit-types/siri"

// SiriResponse is the top-level SIRI response structure
type SiriResponse struct {
	Siri SiriServiceDelivery `json:"Siri"`
}

// SiriServiceDelivery wraps the ServiceDelivery element
type SiriServiceDelivery struct {
	ServiceDelivery ServiceDelivery `json:"ServiceDelivery"`
}

// ServiceDelivery carries the deliveries of one response. A response holds
// either vehicle monitoring or an estimated timetable.
type ServiceDelivery struct {
	ResponseTimestamp          string                               `json:"ResponseTimestamp"`
	ProducerRef                string                               `json:"ProducerRef,omitempty"`
	VehicleMonitoringDelivery  []VehicleMonitoring                  `json:"VehicleMonitoringDelivery"`
	EstimatedTimetableDelivery []transit.EstimatedTimetableDelivery `json:"EstimatedTimetableDelivery"`
}
