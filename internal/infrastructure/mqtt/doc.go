// Package mqtt provides MQTT broker connectivity for Gray Logic Sensing.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Topic subscriptions with wildcard support, restored on reconnect
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Sensor nodes publish readings into a topic tree rooted at
// sensing.topic_root. The live sensor input subscribes to the whole tree
// and forwards each message into the processing pipeline:
//
//	Sensor nodes → MQTT Broker → mqtt.Client → sensing.MQTTInput → Processor
//
// Reconnection and backoff belong to paho; the pipeline never retries on
// its own.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.SensorTree("/home/sensor"), 1,
//	    func(topic string, payload []byte) error {
//	        return nil
//	    })
package mqtt
