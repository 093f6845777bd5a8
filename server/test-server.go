package server

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/safetycenter/safetycenter/auth"
	"github.com/safetycenter/safetycenter/store"
)

// test servers run on out of the way ports so we do not conflict with a
// real instance; the counter keeps servers in one test binary apart
var testPort int32 = 4990

// TestCreds are ready-made tokens for talking to a test server. Send is
// unscoped so it works for any source; use Mint for a token scoped to one
// source or with a custom lifetime.
type TestCreds struct {
	Send   string
	Manage string
	Mint   func(role auth.Role, source string, lifetime time.Duration) (string, error)
}

// TestServer starts a test server with the given source registry and
// returns a client connection, credentials, and a function to stop it
func TestServer(config store.Config) (*nats.Conn, TestCreds, func(), error) {
	port := int(atomic.AddInt32(&testPort, 1))

	tmp, err := os.MkdirTemp("", "safetycenter-test")
	if err != nil {
		return nil, TestCreds{}, nil, err
	}

	options := Options{
		StoreFile:      path.Join(tmp, "test.sqlite"),
		Config:         config,
		RefreshTimeout: time.Second,
		NatsPort:       port,
		NatsServer:     fmt.Sprintf("nats://localhost:%v", port),
	}

	s, nc, err := NewServer(options)

	if err != nil {
		os.RemoveAll(tmp)
		return nil, TestCreds{}, nil, fmt.Errorf("Error starting test server: %v", err)
	}

	stopped := make(chan struct{})

	go func() {
		err := s.Run()
		if err != nil {
			log.Println("Test server run returned: ", err)
		}
		close(stopped)
	}()

	stop := func() {
		s.Stop(nil)
		<-stopped
		os.RemoveAll(tmp)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	err = s.WaitStart(ctx)
	cancel()
	if err != nil {
		return nil, TestCreds{}, stop, fmt.Errorf("Error waiting for test server to start: %v", err)
	}

	// the NATS client is created before the embedded server is up and
	// retries in the background; wait for the handshake to complete so
	// callers can use the connection right away
	deadline := time.Now().Add(time.Second * 5)
	for !nc.IsConnected() {
		if time.Now().After(deadline) {
			return nil, TestCreds{}, stop,
				fmt.Errorf("Timeout waiting for test server NATS connection")
		}
		time.Sleep(time.Millisecond * 10)
	}

	send, err := s.Token(auth.RoleSend, "", 0)
	if err != nil {
		return nil, TestCreds{}, stop, fmt.Errorf("Error minting send token: %v", err)
	}

	manage, err := s.Token(auth.RoleManage, "", 0)
	if err != nil {
		return nil, TestCreds{}, stop, fmt.Errorf("Error minting manage token: %v", err)
	}

	creds := TestCreds{
		Send:   send,
		Manage: manage,
		Mint:   s.Token,
	}

	return nc, creds, stop, nil
}
