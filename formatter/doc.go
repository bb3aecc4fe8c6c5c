// Package formatter wraps VehicleMonitoring deliveries into SIRI responses and
// serializes them.
//
// This package is organized into:
// - wrapper.go: Response wrapping and filtering
// - json.go: JSON serialization
// - xml.go: XML serialization with proper escaping
package formatter
