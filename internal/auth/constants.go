package auth

const (
	// DebugKeyHeader carries the plaintext debug key on /debug requests.
	DebugKeyHeader = "X-Debug-Key"

	// SeatTokenQuery lets a websocket reconnect or a browser link carry the
	// seat token where headers are awkward.
	SeatTokenQuery = "token"
)
