package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor
	FieldUsername = "username"

	// Service
	FieldService = "service"
	FieldNodeID  = "node_id"
	FieldMode    = "mode"

	// Chat
	FieldClientID  = "client_id"
	FieldMessageID = "message_id"
	FieldTopic     = "topic"
	FieldDriver    = "driver"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
