package calllog

import "errors"

// ErrIntegrationNotConfigured is returned by Sync when the organization has
// no active voice-API credential.
var ErrIntegrationNotConfigured = errors.New("voice integration not configured")
