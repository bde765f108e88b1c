package httpserver

const (
	ErrInvalidJSON      = "invalid json"
	ErrMissingFields    = "missing fields"
	ErrMissingID        = "missing id"
	ErrNotFound         = "not found"
	ErrBadForm          = "bad form"
	ErrInvalidSignature = "invalid signature"
	ErrDependency       = "dependency error"
)
