package client

import (
	"github.com/nats-io/nats.go"
)

// The ctl surface mirrors the shell command interface: read-only queries
// need no credential, toggling the center needs a manage credential.

// CenterEnabled reports whether the center is currently enabled
func CenterEnabled(nc *nats.Conn) (bool, error) {
	resp, err := request(nc, SubjectCenterEnabled, "", nil)
	if err != nil {
		return false, err
	}

	return string(resp) == "true", nil
}

// CenterSupported reports whether a center is running at all. Any reply
// means yes; callers normally treat a request timeout as no.
func CenterSupported(nc *nats.Conn) (bool, error) {
	resp, err := request(nc, SubjectCenterSupported, "", nil)
	if err != nil {
		return false, err
	}

	return string(resp) == "true", nil
}

// CenterInstanceID returns the unique ID of the running center instance
func CenterInstanceID(nc *nats.Conn) (string, error) {
	resp, err := request(nc, SubjectCenterInstance, "", nil)
	if err != nil {
		return "", err
	}

	return string(resp), nil
}

// SetCenterEnabled enables or disables the center. While disabled,
// data-plane calls fail with data.ErrDisabled but ctl reads keep working.
// The setting is persistent. Requires a manage credential.
func SetCenterEnabled(nc *nats.Conn, creds string, enabled bool) error {
	payload := "false"
	if enabled {
		payload = "true"
	}

	_, err := request(nc, SubjectCenterSetState, creds, []byte(payload))
	return err
}
