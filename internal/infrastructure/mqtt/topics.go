package mqtt

import "strings"

// TopicPrefixSystem is the base for the sensing process's own status topics.
const TopicPrefixSystem = "graysense/system"

// Topics provides builders for the topics the sensing pipeline uses.
//
// Sensor readings live under a configurable root (for example
// "/home/sensor"); the sensor id is the remainder of the topic:
//
//	topics := mqtt.Topics{}
//	topics.SensorReading("/home/sensor", "/sensornode/nodemcu9107700")
//	// Returns: "/home/sensor/sensornode/nodemcu9107700"
type Topics struct{}

// SystemStatus returns the online/offline status topic.
//
// Example: graysense/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// SensorTree returns the wildcard pattern matching every topic under root.
//
// Example: /home/sensor/#
func (Topics) SensorTree(root string) string {
	return strings.TrimRight(root, "/") + "/#"
}

// SensorReading returns the topic a sensor publishes readings on.
func (Topics) SensorReading(root, sensorID string) string {
	return strings.TrimRight(root, "/") + "/" + strings.TrimLeft(sensorID, "/")
}

// SensorIDFromTopic derives a sensor id from a reading topic under root.
// The id keeps a leading slash, matching registry ids such as
// "/sensornode/nodemcu9107700". Returns false if topic is not under root.
func (Topics) SensorIDFromTopic(root, topic string) (string, bool) {
	prefix := strings.TrimRight(root, "/") + "/"
	if !strings.HasPrefix(topic, prefix) {
		return "", false
	}
	rest := strings.TrimLeft(strings.TrimPrefix(topic, prefix), "/")
	if rest == "" {
		return "", false
	}
	return "/" + rest, true
}
