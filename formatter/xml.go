package formatter

import (
	"strconv"
	"strings"

	transit "github.com/theoremus-urban-solutions/transit-types/siri"

	"github.com/theoremus-urban-solutions/geotren-matcher/siri"
)

// BuildXML serializes a SIRI response to XML
func (rb *responseBuilder) BuildXML(res *siri.SiriResponse) []byte {
	var b strings.Builder
	b.WriteString("<Siri xmlns=\"http://www.siri.org.uk/siri\">")
	sd := res.Siri.ServiceDelivery
	b.WriteString("<ServiceDelivery>")
	writeElem(&b, "ResponseTimestamp", sd.ResponseTimestamp)
	writeElem(&b, "ProducerRef", sd.ProducerRef)
	for _, vm := range sd.VehicleMonitoringDelivery {
		writeVehicleMonitoringXML(&b, vm)
	}
	for _, et := range sd.EstimatedTimetableDelivery {
		writeEstimatedTimetableXML(&b, et)
	}
	b.WriteString("</ServiceDelivery>")
	b.WriteString("</Siri>")
	return []byte(b.String())
}

func writeVehicleMonitoringXML(b *strings.Builder, vm siri.VehicleMonitoring) {
	b.WriteString("<VehicleMonitoringDelivery>")
	writeElem(b, "ResponseTimestamp", vm.ResponseTimestamp)
	writeElem(b, "ValidUntil", vm.ValidUntil)
	for _, va := range vm.VehicleActivity {
		b.WriteString("<VehicleActivity>")
		writeElem(b, "RecordedAtTime", va.RecordedAtTime)
		writeElem(b, "ValidUntilTime", va.ValidUntilTime)
		writeMVJXML(b, va.MonitoredVehicleJourney)
		b.WriteString("</VehicleActivity>")
	}
	b.WriteString("</VehicleMonitoringDelivery>")
}

func writeMVJXML(b *strings.Builder, mvj siri.MonitoredVehicleJourney) {
	b.WriteString("<MonitoredVehicleJourney>")
	writeElem(b, "LineRef", mvj.LineRef)
	writeElem(b, "DirectionRef", mvj.DirectionRef)
	fr := mvj.FramedVehicleJourneyRef
	b.WriteString("<FramedVehicleJourneyRef>")
	writeElem(b, "DataFrameRef", fr.DataFrameRef)
	writeElem(b, "DatedVehicleJourneyRef", fr.DatedVehicleJourneyRef)
	b.WriteString("</FramedVehicleJourneyRef>")
	writeElem(b, "VehicleMode", mvj.VehicleMode)
	writeElem(b, "PublishedLineName", mvj.PublishedLineName)
	writeElem(b, "Monitored", strconv.FormatBool(mvj.Monitored))
	writeElem(b, "DataSource", mvj.DataSource)
	if loc := mvj.VehicleLocation; loc != nil {
		b.WriteString("<VehicleLocation>")
		writeElem(b, "Longitude", strconv.FormatFloat(loc.Longitude, 'f', 6, 64))
		writeElem(b, "Latitude", strconv.FormatFloat(loc.Latitude, 'f', 6, 64))
		b.WriteString("</VehicleLocation>")
	}
	// Delay is required even when zero.
	writeElem(b, "Delay", mvj.Delay)
	writeElem(b, "VehicleRef", mvj.VehicleRef)
	writeElem(b, "VehicleType", mvj.VehicleType)
	if mc := mvj.MonitoredCall; mc != nil {
		b.WriteString("<MonitoredCall>")
		writeElem(b, "StopPointRef", mc.StopPointRef)
		writeElem(b, "StopPointName", mc.StopPointName)
		writeElem(b, "VehicleAtStop", strconv.FormatBool(mc.VehicleAtStop))
		writeElem(b, "AimedArrivalTime", mc.AimedArrivalTime)
		b.WriteString("</MonitoredCall>")
	}
	writeElem(b, "IsCompleteStopSequence", strconv.FormatBool(mvj.IsCompleteStopSequence))
	b.WriteString("</MonitoredVehicleJourney>")
}

func writeEstimatedTimetableXML(b *strings.Builder, et transit.EstimatedTimetableDelivery) {
	b.WriteString("<EstimatedTimetableDelivery version=\"")
	b.WriteString(xmlEscape(et.Version))
	b.WriteString("\">")
	writeElem(b, "ResponseTimestamp", et.ResponseTimestamp)
	for _, frame := range et.EstimatedJourneyVersionFrame {
		b.WriteString("<EstimatedJourneyVersionFrame>")
		writeElem(b, "RecordedAtTime", frame.RecordedAtTime)
		for _, evj := range frame.EstimatedVehicleJourney {
			writeEVJXML(b, evj)
		}
		b.WriteString("</EstimatedJourneyVersionFrame>")
	}
	b.WriteString("</EstimatedTimetableDelivery>")
}

func writeEVJXML(b *strings.Builder, evj transit.EstimatedVehicleJourney) {
	b.WriteString("<EstimatedVehicleJourney>")
	writeElem(b, "RecordedAtTime", evj.RecordedAtTime)
	writeElem(b, "LineRef", evj.LineRef)
	writeElem(b, "DirectionRef", evj.DirectionRef)
	b.WriteString("<FramedVehicleJourneyRef>")
	writeElem(b, "DataFrameRef", evj.FramedVehicleJourneyRef.DataFrameRef)
	writeElem(b, "DatedVehicleJourneyRef", evj.FramedVehicleJourneyRef.DatedVehicleJourneyRef)
	b.WriteString("</FramedVehicleJourneyRef>")
	writeElem(b, "VehicleRef", evj.VehicleRef)
	writeElem(b, "VehicleMode", evj.VehicleMode)
	writeElem(b, "OriginName", evj.OriginName)
	writeElem(b, "DestinationName", evj.DestinationName)
	writeElem(b, "Monitored", strconv.FormatBool(evj.Monitored))
	writeElem(b, "DataSource", evj.DataSource)
	writeElem(b, "OperatorRef", evj.OperatorRef)
	if len(evj.RecordedCalls) > 0 {
		b.WriteString("<RecordedCalls>")
		for _, rc := range evj.RecordedCalls {
			b.WriteString("<RecordedCall>")
			writeElem(b, "StopPointRef", rc.StopPointRef)
			writeOrder(b, rc.Order)
			writeElem(b, "StopPointName", rc.StopPointName)
			writeElem(b, "Cancellation", strconv.FormatBool(rc.Cancellation))
			writeElem(b, "RequestStop", strconv.FormatBool(rc.RequestStop))
			writeElem(b, "AimedArrivalTime", rc.AimedArrivalTime)
			writeElem(b, "ActualArrivalTime", rc.ActualArrivalTime)
			writeElem(b, "AimedDepartureTime", rc.AimedDepartureTime)
			writeElem(b, "ActualDepartureTime", rc.ActualDepartureTime)
			b.WriteString("</RecordedCall>")
		}
		b.WriteString("</RecordedCalls>")
	}
	if len(evj.EstimatedCalls) > 0 {
		b.WriteString("<EstimatedCalls>")
		for _, ec := range evj.EstimatedCalls {
			b.WriteString("<EstimatedCall>")
			writeElem(b, "StopPointRef", ec.StopPointRef)
			writeOrder(b, ec.Order)
			writeElem(b, "StopPointName", ec.StopPointName)
			writeElem(b, "Cancellation", strconv.FormatBool(ec.Cancellation))
			writeElem(b, "RequestStop", strconv.FormatBool(ec.RequestStop))
			writeElem(b, "AimedArrivalTime", ec.AimedArrivalTime)
			writeElem(b, "ExpectedArrivalTime", ec.ExpectedArrivalTime)
			writeElem(b, "AimedDepartureTime", ec.AimedDepartureTime)
			writeElem(b, "ExpectedDepartureTime", ec.ExpectedDepartureTime)
			writeElem(b, "ArrivalStatus", ec.ArrivalStatus)
			writeElem(b, "DepartureStatus", ec.DepartureStatus)
			b.WriteString("</EstimatedCall>")
		}
		b.WriteString("</EstimatedCalls>")
	}
	writeElem(b, "IsCompleteStopSequence", strconv.FormatBool(evj.IsCompleteStopSequence))
	b.WriteString("</EstimatedVehicleJourney>")
}

func writeOrder(b *strings.Builder, order int) {
	if order > 0 {
		writeElem(b, "Order", strconv.Itoa(order))
	}
}

// writeElem writes <name>value</name>, skipping empty values.
func writeElem(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString("<")
	b.WriteString(name)
	b.WriteString(">")
	b.WriteString(xmlEscape(value))
	b.WriteString("</")
	b.WriteString(name)
	b.WriteString(">")
}

func xmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(s)
}
