package kafka

// Topic names for triage events
const (
	TopicVerdicts     = "triage.verdicts"
	TopicSafetyAlerts = "triage.safety_alerts"
	TopicPipeline     = "triage.pipeline"
)
