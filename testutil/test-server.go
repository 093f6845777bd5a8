// Package testutil spins up backing services for tests.
package testutil

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/safetycenter/safetycenter/natsserver"
)

var testPort int32 = 5222

// TestNats starts a bare nats server with no safety center store behind it
// and returns a client connection. Useful for testing clients that only
// need a message bus. The server itself runs until the test binary exits.
func TestNats() (*nats.Conn, error) {
	port := int(atomic.AddInt32(&testPort, 1))

	go natsserver.StartNatsServer(natsserver.Options{Port: port})

	var nc *nats.Conn
	var err error

	// we're not sure when the NATS server will be ready, so try several
	// times
	for i := 0; i < 10; i++ {
		nc, err = nats.Connect(fmt.Sprintf("nats://localhost:%v", port))
		if err != nil {
			log.Println("NATS local connect retry: ", i)
			time.Sleep(100 * time.Millisecond)
			continue
		}

		break
	}

	if err != nil {
		return nil, fmt.Errorf("Error connecting to NATs server: %v", err)
	}

	return nc, nil
}
