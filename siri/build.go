package siri

import (
	"time"

	transit "github.com/theoremus-urban-solutions/transit-types/siri"

	"github.com/theoremus-urban-solutions/geotren-matcher/publish"
	"github.com/theoremus-urban-solutions/geotren-matcher/utils"
)

// VehicleModeRail is the SIRI vehicle mode of every matched train.
const VehicleModeRail = "rail"

// BuildVehicleMonitoring renders tracked trains as a VM delivery. Run codes are
// framed by the service date of at; validFor sets ValidUntil relative to at.
func BuildVehicleMonitoring(trains []publish.Train, at time.Time, validFor time.Duration, dataSource string) VehicleMonitoring {
	validUntil := utils.ValidUntil(at, validFor)
	vm := VehicleMonitoring{
		ResponseTimestamp: utils.Iso8601(at),
		ValidUntil:        validUntil,
		VehicleActivity:   make([]VehicleActivityEntry, 0, len(trains)),
	}
	for _, t := range trains {
		recorded := t.UpdatedAt
		if recorded.IsZero() {
			recorded = at
		}
		mvj := MonitoredVehicleJourney{
			LineRef:      t.Line,
			DirectionRef: t.Direction,
			FramedVehicleJourneyRef: transit.FramedVehicleJourneyRef{
				DataFrameRef:           utils.ServiceDate(at),
				DatedVehicleJourneyRef: t.RunCode,
			},
			VehicleMode:       VehicleModeRail,
			PublishedLineName: t.Line,
			Monitored:         true,
			DataSource:        dataSource,
			VehicleLocation:   &VehicleLocation{Latitude: t.Position.Latitude, Longitude: t.Position.Longitude},
			Delay:             utils.IsoDurationFromMinutes(t.Delay),
			VehicleRef:        t.FeedID,
			VehicleType:       t.UnitType,
		}
		if t.NextStop != "" {
			mvj.MonitoredCall = &MonitoredCall{
				StopPointRef:     t.NextStop,
				StopPointName:    t.NextStop,
				AimedArrivalTime: utils.ClockOnDay(at, t.NextStopTime),
				VehicleAtStop:    t.CurrentStop != "" && t.CurrentStop == t.NextStop,
			}
		}
		vm.VehicleActivity = append(vm.VehicleActivity, VehicleActivityEntry{
			RecordedAtTime:          utils.Iso8601(recorded),
			ValidUntilTime:          validUntil,
			MonitoredVehicleJourney: mvj,
		})
	}
	return vm
}
