package context

type Key string

const (
	Claims    Key = "claims"
	RequestID Key = "request_id"
	Route     Key = "route"
)
