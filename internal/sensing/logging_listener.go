package sensing

import "context"

// LoggingListener logs every resolved event at info level.
type LoggingListener struct {
	logger Logger
}

// NewLoggingListener creates a listener that writes to logger.
func NewLoggingListener(logger Logger) *LoggingListener {
	return &LoggingListener{logger: loggerOrNoop(logger)}
}

// HandleSensorData logs ev.
func (l *LoggingListener) HandleSensorData(_ context.Context, ev ResolvedEvent) error {
	l.logger.Info("sensor data",
		"timestamp", ev.Timestamp,
		"sensor", ev.Sensor.ID,
		"entity", ev.SensedEntity.ID,
		"data", ev.Payload.AsMap(),
	)
	return nil
}
