package feed

import (
	"testing"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

func marshalFeed(t *testing.T, entities ...*gtfs.FeedEntity) []byte {
	t.Helper()
	fm := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
		Entity: entities,
	}
	data, err := proto.Marshal(fm)
	if err != nil {
		t.Fatalf("marshal feed: %v", err)
	}
	return data
}

func TestDecodeGTFSRT(t *testing.T) {
	vp := marshalFeed(t,
		&gtfs.FeedEntity{
			Id: proto.String("e1"),
			Vehicle: &gtfs.VehiclePosition{
				Trip:          &gtfs.TripDescriptor{TripId: proto.String("t1"), RouteId: proto.String("R5"), DirectionId: proto.Uint32(1)},
				Vehicle:       &gtfs.VehicleDescriptor{Id: proto.String("v1"), Label: proto.String("UT 113")},
				Position:      &gtfs.Position{Latitude: proto.Float32(41.5), Longitude: proto.Float32(2.25)},
				CurrentStatus: gtfs.VehiclePosition_STOPPED_AT.Enum(),
				StopId:        proto.String("A"),
			},
		},
		&gtfs.FeedEntity{
			Id: proto.String("e2"),
			Vehicle: &gtfs.VehiclePosition{
				Trip:          &gtfs.TripDescriptor{TripId: proto.String("t2"), RouteId: proto.String("S4")},
				CurrentStatus: gtfs.VehiclePosition_IN_TRANSIT_TO.Enum(),
				StopId:        proto.String("Q"),
			},
		},
		&gtfs.FeedEntity{Id: proto.String("alert-only")},
	)
	tu := marshalFeed(t, &gtfs.FeedEntity{
		Id: proto.String("u1"),
		TripUpdate: &gtfs.TripUpdate{
			Trip: &gtfs.TripDescriptor{TripId: proto.String("t1")},
			StopTimeUpdate: []*gtfs.TripUpdate_StopTimeUpdate{
				{StopId: proto.String("A"), Arrival: &gtfs.TripUpdate_StopTimeEvent{Delay: proto.Int32(180)}},
				{StopId: proto.String("B")},
				{StopId: proto.String("C")},
			},
		},
	})

	records, skipped, err := DecodeGTFSRT(vp, tu)
	if err != nil {
		t.Fatalf("DecodeGTFSRT: %v", err)
	}
	if skipped != 1 {
		t.Errorf("expected 1 skipped entity, got %d", skipped)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	r := records[0]
	if r.ID != "v1" || r.Line != "R5" || r.Direction != "1" || r.UnitType != "UT 113" {
		t.Errorf("unexpected record: %+v", r)
	}
	if r.StationedAt != "A" {
		t.Errorf("STOPPED_AT should set stationed stop, got %q", r.StationedAt)
	}
	if len(r.Upcoming) != 2 || r.Upcoming[0] != "B" {
		t.Errorf("upcoming should skip the current stop, got %v", r.Upcoming)
	}
	if r.OnTime == nil || *r.OnTime || r.DelayMinutes == nil || *r.DelayMinutes != 3 {
		t.Errorf("delay from stop time update not applied: onTime=%v delay=%v", r.OnTime, r.DelayMinutes)
	}
	if r.Position.Latitude != 41.5 || r.Position.Longitude != 2.25 {
		t.Errorf("position = %+v", r.Position)
	}

	r2 := records[1]
	if r2.ID != "e2" {
		t.Errorf("entity id should be the fallback id, got %q", r2.ID)
	}
	if len(r2.Upcoming) != 1 || r2.Upcoming[0] != "Q" || r2.StationedAt != "" {
		t.Errorf("in-transit stop should be the only upcoming stop: %+v", r2)
	}
	if r2.UnitType != DefaultUnitType || r2.OnTime != nil {
		t.Errorf("defaults not applied: %+v", r2)
	}
}

func TestDecodeGTFSRT_Garbage(t *testing.T) {
	if _, _, err := DecodeGTFSRT([]byte{0xff, 0xff, 0xff}, nil); err == nil {
		t.Fatal("expected decode error")
	}
}
