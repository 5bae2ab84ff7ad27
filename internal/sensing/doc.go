// Package sensing moves sensor readings from their sources into entity models.
//
// Inputs produce raw events: MQTTInput from the broker topic tree, ReplayInput
// from a recording. A Processor fans those events out to its handlers. The
// SensedEntityHandler resolves each event's sensor to the entity it observes
// and broadcasts the result to listeners such as ModelUpdater, which keeps
// the latest value per attribute in the model collection. A RecordingHandler
// persists events ahead of resolution in record mode, and a RepublishHandler
// can publish every event back to the broker.
//
//	handler := sensing.NewSensedEntityHandlerFromRegistry(reg)
//	handler.AddListener(sensing.NewModelUpdater(models))
//
//	session, err := sensing.NewSession(sensing.SessionConfig{
//	    Mode:       sensing.ModeLiveOnly,
//	    Subscriber: mqttClient,
//	    TopicRoot:  "/home/sensor",
//	}, handler)
//	if err != nil {
//	    return err
//	}
//	return session.Run(ctx)
//
// Events from one input are delivered in order. Events from different inputs
// may interleave. Listeners run synchronously, so a slow listener delays
// every listener after it for that event.
package sensing
