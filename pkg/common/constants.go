package common

const (
	RedisStreamTriageRequest  = "headline.triage.request"
	RedisStreamTriageAccepted = "headline.triage.accepted"

	RedisStreamGroup    = "triage-group"
	RedisStreamConsumer = "triage-consumer"
)
