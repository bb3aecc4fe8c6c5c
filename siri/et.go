package siri

import (
	"time"

	transit "github.com/theoremus-urban-solutions/transit-types/siri"

	"github.com/theoremus-urban-solutions/geotren-matcher/publish"
	"github.com/theoremus-urban-solutions/geotren-matcher/schedule"
	"github.com/theoremus-urban-solutions/geotren-matcher/utils"
)

// Arrival statuses of an estimated call.
const (
	ArrivalOnTime  = "onTime"
	ArrivalDelayed = "delayed"
)

// BuildEstimatedTimetable renders tracked trains as an ET delivery. Each train
// becomes a journey over its run's ordered stops: stops before the train's
// current or next stop are recorded calls, the rest are estimated calls
// shifted by the train's delay. Trains whose run is not in store are skipped.
func BuildEstimatedTimetable(store *schedule.Store, trains []publish.Train, at time.Time, dataSource string) transit.EstimatedTimetableDelivery {
	frame := transit.EstimatedJourneyVersionFrame{
		RecordedAtTime:          utils.Iso8601(at),
		EstimatedVehicleJourney: make([]transit.EstimatedVehicleJourney, 0, len(trains)),
	}
	for _, t := range trains {
		run, ok := store.Run(t.RunCode)
		if !ok {
			continue
		}
		stops := validStops(store.OrderedStops(run))
		if len(stops) == 0 {
			continue
		}
		recorded := t.UpdatedAt
		if recorded.IsZero() {
			recorded = at
		}
		evj := transit.EstimatedVehicleJourney{
			RecordedAtTime: utils.Iso8601(recorded),
			LineRef:        t.Line,
			DirectionRef:   t.Direction,
			FramedVehicleJourneyRef: transit.FramedVehicleJourneyRef{
				DataFrameRef:           utils.ServiceDate(at),
				DatedVehicleJourneyRef: t.RunCode,
			},
			VehicleRef:             t.FeedID,
			VehicleMode:            VehicleModeRail,
			OriginName:             stops[0].Stop,
			DestinationName:        stops[len(stops)-1].Stop,
			Monitored:              true,
			DataSource:             dataSource,
			IsCompleteStopSequence: true,
		}

		split := splitIndex(stops, t)
		for i, st := range stops {
			aimed, _ := utils.ClockTimeOnDay(at, st.Time)
			if i < split {
				evj.RecordedCalls = append(evj.RecordedCalls, transit.RecordedCall{
					StopPointRef:       st.Stop,
					Order:              i + 1,
					StopPointName:      st.Stop,
					AimedArrivalTime:   utils.Iso8601(aimed),
					AimedDepartureTime: utils.Iso8601(aimed),
				})
				continue
			}
			expected := aimed.Add(time.Duration(max(t.Delay, 0)) * time.Minute)
			status := ArrivalOnTime
			if t.Delay > 0 {
				status = ArrivalDelayed
			}
			evj.EstimatedCalls = append(evj.EstimatedCalls, transit.EstimatedCall{
				StopPointRef:          st.Stop,
				Order:                 i + 1,
				StopPointName:         st.Stop,
				AimedArrivalTime:      utils.Iso8601(aimed),
				ExpectedArrivalTime:   utils.Iso8601(expected),
				AimedDepartureTime:    utils.Iso8601(aimed),
				ExpectedDepartureTime: utils.Iso8601(expected),
				ArrivalStatus:         status,
				DepartureStatus:       status,
			})
		}
		frame.EstimatedVehicleJourney = append(frame.EstimatedVehicleJourney, evj)
	}
	return transit.EstimatedTimetableDelivery{
		Version:                      "2.0",
		ResponseTimestamp:            utils.Iso8601(at),
		EstimatedJourneyVersionFrame: []transit.EstimatedJourneyVersionFrame{frame},
	}
}

func validStops(stops []schedule.OrderedStop) []schedule.OrderedStop {
	out := make([]schedule.OrderedStop, 0, len(stops))
	for _, st := range stops {
		if st.Valid() {
			out = append(out, st)
		}
	}
	return out
}

// splitIndex returns the index of the first stop still ahead of the train.
// A train stationed at a stop has that stop ahead of it.
func splitIndex(stops []schedule.OrderedStop, t publish.Train) int {
	for _, ref := range []string{t.CurrentStop, t.NextStop} {
		if ref == "" {
			continue
		}
		for i, st := range stops {
			if st.Stop == ref {
				return i
			}
		}
	}
	return 0
}
