package formatter

import (
	"strings"
	"time"

	transit "github.com/theoremus-urban-solutions/transit-types/siri"

	"github.com/theoremus-urban-solutions/geotren-matcher/siri"
	"github.com/theoremus-urban-solutions/geotren-matcher/utils"
)

// DefaultProducerRef is used when no codespace is configured.
const DefaultProducerRef = "GEOTREN"

// BuildServiceDelivery creates a ServiceDelivery with ResponseTimestamp and
// ProducerRef (codespace).
func BuildServiceDelivery(at time.Time, codespace string) siri.ServiceDelivery {
	if codespace == "" {
		codespace = DefaultProducerRef
	}
	return siri.ServiceDelivery{
		ResponseTimestamp:          utils.Iso8601(at),
		ProducerRef:                codespace,
		VehicleMonitoringDelivery:  []siri.VehicleMonitoring{},
		EstimatedTimetableDelivery: []transit.EstimatedTimetableDelivery{},
	}
}

// WrapVehicleMonitoringResponse wraps a VM delivery in a complete SIRI response
func WrapVehicleMonitoringResponse(vm siri.VehicleMonitoring, at time.Time, codespace string) *siri.SiriResponse {
	sd := BuildServiceDelivery(at, codespace)
	sd.VehicleMonitoringDelivery = []siri.VehicleMonitoring{vm}
	return &siri.SiriResponse{
		Siri: siri.SiriServiceDelivery{ServiceDelivery: sd},
	}
}

// WrapEstimatedTimetableResponse wraps an ET delivery in a complete SIRI response.
func WrapEstimatedTimetableResponse(et transit.EstimatedTimetableDelivery, at time.Time, codespace string) *siri.SiriResponse {
	sd := BuildServiceDelivery(at, codespace)
	sd.EstimatedTimetableDelivery = []transit.EstimatedTimetableDelivery{et}
	return &siri.SiriResponse{
		Siri: siri.SiriServiceDelivery{ServiceDelivery: sd},
	}
}

// FilterVehicleMonitoring keeps the activities matching every non-empty
// filter. Line and vehicle refs match by substring, direction exactly; all
// comparisons ignore case.
func FilterVehicleMonitoring(vm siri.VehicleMonitoring, lineRef, directionRef, vehicleRef string) siri.VehicleMonitoring {
	lineRef = strings.ToLower(strings.TrimSpace(lineRef))
	directionRef = strings.ToLower(strings.TrimSpace(directionRef))
	vehicleRef = strings.ToLower(strings.TrimSpace(vehicleRef))

	filtered := siri.VehicleMonitoring{
		ResponseTimestamp: vm.ResponseTimestamp,
		ValidUntil:        vm.ValidUntil,
		VehicleActivity:   []siri.VehicleActivityEntry{},
	}
	for _, va := range vm.VehicleActivity {
		mvj := va.MonitoredVehicleJourney
		if lineRef != "" && !strings.Contains(strings.ToLower(mvj.LineRef), lineRef) {
			continue
		}
		if directionRef != "" && strings.ToLower(mvj.DirectionRef) != directionRef {
			continue
		}
		if vehicleRef != "" && !strings.Contains(strings.ToLower(mvj.VehicleRef), vehicleRef) {
			continue
		}
		filtered.VehicleActivity = append(filtered.VehicleActivity, va)
	}
	return filtered
}
