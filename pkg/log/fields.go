package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (guest identity set by the guest middleware)
	FieldGuest = "guest"

	// Domain
	FieldRoomCode = "room_code"
	FieldRoomID   = "room_id"
	FieldEntryID  = "entry_id"

	// Service
	FieldService = "service"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
