package feed

import (
	"fmt"
	"math"
	"strconv"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// DecodeGTFSRT decodes a VehiclePositions feed into records. When tripUpdates
// is non-empty its stop time updates supply the upcoming stops and delays.
// Entities without a vehicle position or without any id are skipped and counted.
func DecodeGTFSRT(vehiclePositions, tripUpdates []byte) ([]Record, int, error) {
	vp := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(vehiclePositions, vp); err != nil {
		return nil, 0, fmt.Errorf("decode vehicle positions: %w", err)
	}
	updates := map[string]*gtfs.TripUpdate{}
	if len(tripUpdates) > 0 {
		tu := &gtfs.FeedMessage{}
		if err := proto.Unmarshal(tripUpdates, tu); err != nil {
			return nil, 0, fmt.Errorf("decode trip updates: %w", err)
		}
		for _, e := range tu.GetEntity() {
			if u := e.GetTripUpdate(); u != nil && u.GetTrip().GetTripId() != "" {
				updates[u.GetTrip().GetTripId()] = u
			}
		}
	}

	records := make([]Record, 0, len(vp.GetEntity()))
	skipped := 0
	for _, e := range vp.GetEntity() {
		v := e.GetVehicle()
		if v == nil {
			skipped++
			continue
		}
		id := v.GetVehicle().GetId()
		if id == "" {
			id = e.GetId()
		}
		if id == "" {
			skipped++
			continue
		}
		rec := Record{
			ID:       id,
			Line:     v.GetTrip().GetRouteId(),
			UnitType: v.GetVehicle().GetLabel(),
			Upcoming: []string{},
		}
		if rec.UnitType == "" {
			rec.UnitType = DefaultUnitType
		}
		if trip := v.GetTrip(); trip != nil && trip.DirectionId != nil {
			rec.Direction = strconv.FormatUint(uint64(trip.GetDirectionId()), 10)
		}
		if v.GetCurrentStatus() == gtfs.VehiclePosition_STOPPED_AT {
			rec.StationedAt = v.GetStopId()
		}
		if pos := v.GetPosition(); pos != nil {
			rec.Position = Position{
				Longitude: float64(pos.GetLongitude()),
				Latitude:  float64(pos.GetLatitude()),
			}
		}
		if u, ok := updates[v.GetTrip().GetTripId()]; ok {
			applyTripUpdate(&rec, u)
		} else if rec.StationedAt == "" && v.GetStopId() != "" {
			rec.Upcoming = []string{v.GetStopId()}
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

func applyTripUpdate(rec *Record, u *gtfs.TripUpdate) {
	var delaySec *int32
	if u.Delay != nil {
		d := u.GetDelay()
		delaySec = &d
	}
	for _, stu := range u.GetStopTimeUpdate() {
		sid := stu.GetStopId()
		if sid == "" || stu.GetScheduleRelationship() == gtfs.TripUpdate_StopTimeUpdate_SKIPPED {
			continue
		}
		if delaySec == nil && stu.GetArrival() != nil && stu.GetArrival().Delay != nil {
			d := stu.GetArrival().GetDelay()
			delaySec = &d
		}
		if sid == rec.StationedAt && len(rec.Upcoming) == 0 {
			continue
		}
		rec.Upcoming = append(rec.Upcoming, sid)
	}
	if delaySec != nil {
		minutes := int(math.Round(math.Abs(float64(*delaySec)) / 60))
		onTime := *delaySec < 60
		rec.OnTime = &onTime
		rec.DelayMinutes = &minutes
	}
}
