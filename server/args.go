package server

import (
	"flag"
	"log"
	"os"
	"path"
	"strconv"
)

// Args parses common safety center command line options
func Args(args []string, flags *flag.FlagSet) (Options, error) {
	defaultNatsServer := "nats://127.0.0.1:4222"

	// =============================================
	// Command line options
	// =============================================
	if flags == nil {
		flags = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	}

	flagDebugLifecycle := flags.Bool("debugLifecycle", false, "debug program lifecycle")
	flagNatsServer := flags.String("natsServer", defaultNatsServer, "NATS Server")
	flagNatsDisableServer := flags.Bool("natsDisableServer", false, "disable NATS server (if you want to run NATS separately)")
	flagStore := flags.String("store", "safetycenter.sqlite", "store file, default safetycenter.sqlite")
	flagConfig := flags.String("config", "safetycenter.yaml", "source registry config file")
	flagAuthToken := flags.String("token", "", "NATS auth token")
	flagLogNats := flags.Bool("logNats", false, "dump safety center messages")
	flagRefreshTimeout := flags.Duration("refreshTimeout", 0, "refresh timeout, 0 for default")

	if err := flags.Parse(args); err != nil {
		return Options{}, err
	}

	// =============================================
	// General Setup
	// =============================================

	dataDir := os.Getenv("SC_DATA")
	if dataDir == "" {
		dataDir = "./"
	}

	storeFilePath := path.Join(dataDir, *flagStore)

	configFile := *flagConfig
	if configFile == "safetycenter.yaml" {
		if configFileE := os.Getenv("SC_CONFIG"); configFileE != "" {
			configFile = configFileE
		}
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			log.Println("No config file found, starting with no sources:", configFile)
			configFile = ""
		}
	}

	// =============================================
	// NATS stuff
	// =============================================

	natsPort := 4222

	natsPortE := os.Getenv("SC_NATS_PORT")
	if natsPortE != "" {
		n, err := strconv.Atoi(natsPortE)
		if err != nil {
			log.Println("Error parsing SC_NATS_PORT:", err)
			os.Exit(-1)
		}
		natsPort = n
	}

	natsHTTPPort := 8222

	natsHTTPPortE := os.Getenv("SC_NATS_HTTP_PORT")
	if natsHTTPPortE != "" {
		n, err := strconv.Atoi(natsHTTPPortE)
		if err != nil {
			log.Println("Error parsing SC_NATS_HTTP_PORT:", err)
			os.Exit(-1)
		}
		natsHTTPPort = n
	}

	natsServer := *flagNatsServer
	// only consider env if command line option is something different
	// than default
	if natsServer == defaultNatsServer {
		natsServerE := os.Getenv("SC_NATS_SERVER")
		if natsServerE != "" {
			natsServer = natsServerE
		}
	}

	natsTLSCert := os.Getenv("SC_NATS_TLS_CERT")
	natsTLSKey := os.Getenv("SC_NATS_TLS_KEY")
	natsTLSTimeoutS := os.Getenv("SC_NATS_TLS_TIMEOUT")

	natsTLSTimeout := 0.5

	if natsTLSTimeoutS != "" {
		var err error
		natsTLSTimeout, err = strconv.ParseFloat(natsTLSTimeoutS, 64)
		if err != nil {
			log.Println("Error parsing nats TLS timeout:", err)
			os.Exit(-1)
		}
	}

	authToken := os.Getenv("SC_AUTH_TOKEN")
	if *flagAuthToken != "" {
		authToken = *flagAuthToken
	}

	o := Options{
		StoreFile:         storeFilePath,
		ConfigFile:        configFile,
		RefreshTimeout:    *flagRefreshTimeout,
		DebugLifecycle:    *flagDebugLifecycle,
		NatsServer:        natsServer,
		NatsDisableServer: *flagNatsDisableServer,
		NatsPort:          natsPort,
		NatsHTTPPort:      natsHTTPPort,
		NatsTLSCert:       natsTLSCert,
		NatsTLSKey:        natsTLSKey,
		NatsTLSTimeout:    natsTLSTimeout,
		AuthToken:         authToken,
		LogNats:           *flagLogNats,
	}

	return o, nil
}
