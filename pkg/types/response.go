package types

// ErrorEnvelope is the wire shape for every non-2xx response.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// SourcedEnvelope wraps list payloads with the commerce backend that served them.
type SourcedEnvelope struct {
	Source string `json:"source"`
	Data   any    `json:"data"`
}
