package client

import (
	"errors"

	"github.com/nats-io/nats.go"
	"github.com/safetycenter/safetycenter/auth"
	"github.com/safetycenter/safetycenter/data"
)

// ErrorHeader is the reply header the store sets when a request is NAKed
const ErrorHeader = "Error"

// mapError turns a store error string back into one of the sentinel errors
// so callers can use errors.Is
func mapError(s string) error {
	switch s {
	case data.ErrPermission.Error():
		return data.ErrPermission
	case data.ErrNotFound.Error():
		return data.ErrNotFound
	case data.ErrDisabled.Error():
		return data.ErrDisabled
	case data.ErrUnknownSource.Error():
		return data.ErrUnknownSource
	}

	return errors.New(s)
}

// request sends an authenticated request and unwraps the store's reply.
// creds is the raw token; an empty creds sends no authorization header.
func request(nc *nats.Conn, subject, creds string, payload []byte) ([]byte, error) {
	msg := nats.NewMsg(subject)
	msg.Data = payload

	if creds != "" {
		msg.Header.Set(auth.HeaderName, auth.Bearer(creds))
	}

	resp, err := nc.RequestMsg(msg, requestTimeout)
	if err != nil {
		return nil, err
	}

	if e := resp.Header.Get(ErrorHeader); e != "" {
		return nil, mapError(e)
	}

	return resp.Data, nil
}
