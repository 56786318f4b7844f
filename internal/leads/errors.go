package leads

import "errors"

// ErrLeadNotFound indicates the requested lead does not exist.
var ErrLeadNotFound = errors.New("leads: lead not found")
