package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/oklog/run"

	"github.com/safetycenter/safetycenter/auth"
	"github.com/safetycenter/safetycenter/client"
	"github.com/safetycenter/safetycenter/msg"
)

// StartArgs starts a safety center server with command line style args
func StartArgs(args []string) error {
	options, err := Args(args, nil)
	if err != nil {
		return err
	}

	if options.LogNats {
		client.Log(options.NatsServer, options.AuthToken)
		select {}
	}

	var g run.Group

	sc, nc, err := NewServer(options)

	if err != nil {
		return fmt.Errorf("Error starting server: %v", err)
	}

	g.Add(sc.Run, sc.Stop)

	g.Add(run.SignalHandler(context.Background(),
		syscall.SIGINT, syscall.SIGTERM))

	// Load the built-in device health source if it is registered -- it
	// gets a send token scoped to itself
	if sc.HasSource("device-health") {
		healthCreds, err := sc.Token(auth.RoleSend, "device-health", 0)
		if err != nil {
			return fmt.Errorf("Error minting health token: %v", err)
		}

		sc.AddClient(client.NewHealthClient(nc, client.HealthConfig{
			SourceID: "device-health",
			Creds:    healthCreds,
		}))
	}

	// SMS notifications for critical issues, if Twilio is configured
	if messenger := msg.NewTwilioFromEnv(); messenger != nil {
		if to := os.Getenv("SC_NOTIFY_TO"); to != "" {
			sc.AddClient(client.NewNotifierClient(nc, messenger,
				client.NotifierConfig{To: to}))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*9)

	// add check to make sure server started
	chStartCheck := make(chan struct{})
	g.Add(func() error {
		err := sc.WaitStart(ctx)
		if err != nil {
			return errors.New("Timeout waiting for safety center to start")
		}
		log.Println("Safety center started")
		<-chStartCheck
		return nil
	}, func(err error) {
		cancel()
		close(chStartCheck)
	})

	return g.Run()
}
