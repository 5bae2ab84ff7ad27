package influxdb

import "errors"

// Sentinel errors for the InfluxDB mirror.
//
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // run without a time-series mirror
//	}
var (
	// ErrNotConnected indicates the client is closed or was never connected.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial ping failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled indicates influxdb.enabled is false.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
