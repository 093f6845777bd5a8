/*
Package natsserver runs a bare embedded NATS server with no store attached.
It is mostly useful for tests that exercise clients directly.
*/
package natsserver

import (
	"log"

	"github.com/nats-io/nats-server/v2/server"
)

// Options for starting the nats server
type Options struct {
	Port     int
	HTTPPort int
	Auth     string
}

// StartNatsServer starts a nats server instance. This function blocks
// so should be started with a go routine
func StartNatsServer(o Options) {
	opts := server.Options{
		Port:          o.Port,
		HTTPPort:      o.HTTPPort,
		Authorization: o.Auth,
		NoSigs:        true,
	}

	natsServer, err := server.NewServer(&opts)

	if err != nil {
		log.Fatal("Error create new Nats server: ", err)
	}

	log.Printf("Starting NATS server, port: %v, http port: %v\n",
		o.Port, o.HTTPPort)

	natsServer.Start()

	natsServer.WaitForShutdown()

	log.Println("Nats server stopped")
}
