// Package influxdb writes sensed values to InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched non-blocking writes and health checks. Each resolved
// numeric reading becomes one point in the sensed_values measurement, tagged
// with the entity, sensor, attribute name and value type, and stamped with
// the reading's own timestamp so replayed data lands at its original time.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteSensedValue("/home/kitchen", "/sensornode/nodemcu9054793",
//	    "humidity", "humidity", 48.0, time.Now())
//
// # Error Handling
//
// Writes never return errors; batch failures are delivered to the callback
// set with SetOnError. Connection and health check errors are returned
// directly.
package influxdb
