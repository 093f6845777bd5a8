package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/oklog/run"

	"github.com/safetycenter/safetycenter/auth"
	"github.com/safetycenter/safetycenter/client"
	"github.com/safetycenter/safetycenter/store"
)

// ErrServerStopped is returned when the server is stopped
var ErrServerStopped = errors.New("Server stopped")

// Options used for starting a safety center server
type Options struct {
	StoreFile string
	// ConfigFile is a YAML source registry. It is watched for changes
	// and reloaded on the fly. If empty, Config is used as-is.
	ConfigFile        string
	Config            store.Config
	RefreshTimeout    time.Duration
	DebugLifecycle    bool
	NatsServer        string
	NatsDisableServer bool
	NatsPort          int
	NatsHTTPPort      int
	NatsTLSCert       string
	NatsTLSKey        string
	NatsTLSTimeout    float64
	AuthToken         string
	LogNats           bool
	AppVersion        string
}

// Server represents a safety center server process
type Server struct {
	nc                 *nats.Conn
	options            Options
	natsServer         *server.Server
	scStore            *store.Store
	clients            *client.RunGroup
	chNatsClientClosed chan struct{}
	chStop             chan struct{}
	chWaitStart        chan struct{}
}

// NewServer creates a new server
func NewServer(o Options) (*Server, *nats.Conn, error) {
	chNatsClientClosed := make(chan struct{})

	// start the server side nats client
	nc, err := nats.Connect(o.NatsServer,
		nats.Timeout(10*time.Second),
		nats.PingInterval(60*5*time.Second),
		nats.MaxPingsOutstanding(5),
		nats.ReconnectBufSize(5*1024*1024),
		nats.SetCustomDialer(&net.Dialer{
			KeepAlive: -1,
		}),
		nats.Token(o.AuthToken),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ErrorHandler(func(_ *nats.Conn,
			sub *nats.Subscription, err error) {
			var subject string
			if sub != nil {
				subject = sub.Subject
			}
			log.Printf("Server NATS client error, sub: %v, err: %s\n", subject, err)
		}),
		nats.CustomReconnectDelay(func(attempts int) time.Duration {
			log.Println("Server NATS client reconnect attempt #", attempts)
			return time.Millisecond * 250
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Println("Server NATS client: reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Println("Server NATS client: closed")
			close(chNatsClientClosed)
		}),
		nats.ConnectHandler(func(_ *nats.Conn) {
			log.Println("Server NATS client: connected")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("Error connecting NATS client: %v", err)
	}

	config := o.Config

	if o.ConfigFile != "" {
		config, err = store.LoadConfig(o.ConfigFile)
		if err != nil {
			return nil, nil, fmt.Errorf("Error loading config: %v", err)
		}
	}

	scStore, err := store.NewStore(store.Params{
		File:           o.StoreFile,
		Nc:             nc,
		Config:         config,
		RefreshTimeout: o.RefreshTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("Error creating store: %v", err)
	}

	return &Server{
		nc:                 nc,
		options:            o,
		scStore:            scStore,
		chNatsClientClosed: chNatsClientClosed,
		chStop:             make(chan struct{}),
		chWaitStart:        make(chan struct{}),
		clients:            client.NewRunGroup("Server clients"),
	}, nc, nil
}

// AddClient can be used to add clients to the server.
// Clients must be added before Run is called. The
// Server makes sure all clients are shut down before
// shutting down the server. This makes for a cleaner
// shutdown.
func (s *Server) AddClient(client client.RunStop) {
	s.clients.Add(client)
}

// Token mints a permission token using the store's signing key. Sources and
// managers need one to get past the permission checks.
func (s *Server) Token(role auth.Role, source string, lifetime time.Duration) (string, error) {
	return s.scStore.AuthKey().NewToken(role, source, lifetime)
}

// InstanceID returns the persistent ID of this safety center instance
func (s *Server) InstanceID() string {
	return s.scStore.InstanceID()
}

// HasSource reports whether the configured source registry includes id
func (s *Server) HasSource(id string) bool {
	return s.scStore.HasSource(id)
}

// Run the server -- only returns if there is an error
func (s *Server) Run() error {
	var g run.Group

	logLS := func(m ...any) {}

	if s.options.DebugLifecycle {
		logLS = func(m ...any) {
			log.Println(m...)
		}
	}

	o := s.options

	var err error

	// anything that needs to use the store or nats server should add to
	// this wait group. The store will wait on this before shutting down.
	var storeWg sync.WaitGroup

	// ====================================
	// Nats server
	// ====================================
	natsOptions := natsServerOptions{
		Port:       o.NatsPort,
		HTTPPort:   o.NatsHTTPPort,
		Auth:       o.AuthToken,
		TLSCert:    o.NatsTLSCert,
		TLSKey:     o.NatsTLSKey,
		TLSTimeout: o.NatsTLSTimeout,
	}

	if !o.NatsDisableServer {
		s.natsServer, err = newNatsServer(natsOptions)
		if err != nil {
			return fmt.Errorf("Error setting up nats server: %v", err)
		}

		g.Add(func() error {
			s.natsServer.Start()
			s.natsServer.WaitForShutdown()
			logLS("LS: Exited: nats server")
			return fmt.Errorf("NATS server stopped")
		}, func(err error) {
			go func() {
				storeWg.Wait()
				s.natsServer.Shutdown()
				logLS("LS: Shutdown: nats server")
			}()
		})
	}

	// ====================================
	// Safety center store
	// ====================================

	scWaitCtx, scWaitCancel := context.WithTimeout(context.Background(), time.Second*10)

	g.Add(func() error {
		err := s.scStore.Run()
		logLS("LS: Exited: store")
		return err
	}, func(err error) {
		// run in goroutine else this Stop blocking will block
		// everything else
		go func() {
			storeWg.Wait()
			scWaitCancel()
			s.scStore.Stop(err)
			logLS("LS: Shutdown: store")
		}()
	})

	// ====================================
	// Config file watcher
	// ====================================

	if o.ConfigFile != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("Error creating config watcher: %v", err)
		}

		g.Add(func() error {
			if err := watcher.Add(o.ConfigFile); err != nil {
				logLS("LS: Exited: config watcher")
				return fmt.Errorf("Error watching config: %v", err)
			}

			for ev := range watcher.Events {
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}

				config, err := store.LoadConfig(o.ConfigFile)
				if err != nil {
					log.Println("Error reloading config:", err)
					continue
				}

				if err := s.scStore.SetConfig(config); err != nil {
					log.Println("Error applying config:", err)
					continue
				}

				log.Println("Config reloaded:", o.ConfigFile)
			}

			logLS("LS: Exited: config watcher")
			return nil
		}, func(err error) {
			watcher.Close()
			logLS("LS: Shutdown: config watcher")
		})
	}

	// ====================================
	// Built in clients manager
	// ====================================

	storeWg.Add(1)
	g.Add(func() error {
		defer storeWg.Done()
		err := s.scStore.WaitStart(scWaitCtx)
		if err != nil {
			logLS("LS: Exited: client manager timeout waiting for store")
			return err
		}

		err = s.clients.Run()
		logLS("LS: Exited: clients manager: ", err)
		return err
	}, func(err error) {
		s.clients.Stop(err)
		logLS("LS: Shutdown: clients manager")
	})

	// Give us a way to stop the server
	// and signal to waiters we have started
	chShutdown := make(chan struct{})
	g.Add(func() error {
		err := s.scStore.WaitStart(scWaitCtx)
		if err != nil {
			logLS("LS: Exited: server stopper, timeout waiting for store")
			return err
		}

		select {
		case <-s.chStop:
			logLS("LS: Exited: stop handler")
			return ErrServerStopped
		case <-chShutdown:
			logLS("LS: Exited: stop handler")
			return nil
		}
	}, func(_ error) {
		close(chShutdown)
		logLS("LS: Shutdown: stop handler")
	})

	chRunError := make(chan error)

	go func() {
		chRunError <- g.Run()
	}()

	var retErr error

done:
	for {
		select {
		// unblock any waits
		case <-s.chWaitStart:
			// No-op, reading channel is enough to unblock wait
		case retErr = <-chRunError:
			break done
		}
	}

	s.nc.Close()

	return retErr
}

// Stop server
func (s *Server) Stop(_ error) {
	close(s.chStop)
}

// WaitStart waits for server to start. Clients should wait for this
// to complete before trying to send or fetch safety data.
func (s *Server) WaitStart(ctx context.Context) error {
	waitDone := make(chan struct{})

	go func() {
		// the following will block until the main server select
		// loop starts
		s.chWaitStart <- struct{}{}
		close(waitDone)
	}()

	select {
	case <-ctx.Done():
		return errors.New("Server wait timeout or canceled")
	case <-waitDone:
		// all is well
		return nil
	}
}
