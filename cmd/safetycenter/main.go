package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/nats-io/nats.go"

	"github.com/safetycenter/safetycenter/client"
	"github.com/safetycenter/safetycenter/data"
	"github.com/safetycenter/safetycenter/server"
)

// goreleaser will replace version with Git version. You can also pass version
// into the go build:
//   go build -ldflags="-X main.version=1.2.3"
var version = "Development"

func main() {
	// global options
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	flagVersion := flags.Bool("version", false, "Print app version")
	flags.Usage = func() {
		fmt.Println("usage: safetycenter [OPTION]... COMMAND [OPTION]...")
		fmt.Println("Global options:")
		flags.PrintDefaults()
		fmt.Println()
		fmt.Println("Available commands:")
		fmt.Println("  - serve (start the safety center server)")
		fmt.Println("  - log (log safety center messages)")
		fmt.Println("  - ctl (query or control a running center)")
	}

	flags.Parse(os.Args[1:])

	if *flagVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	log.Printf("Safety center %v\n", version)

	// extract sub command and its arguments
	args := flags.Args()

	if len(args) < 1 {
		// run serve command by default
		args = []string{"serve"}
	}

	switch args[0] {
	case "serve":
		if err := server.StartArgs(args[1:]); err != nil {
			log.Println("Safety center stopped, reason: ", err)
		}
	case "log":
		runLog(args[1:])
	case "ctl":
		runCtl(args[1:])
	default:
		log.Fatal("Unknown command; options: serve, log, ctl")
	}
}

func runLog(args []string) {
	defaultNatsServer := "nats://localhost:4222"
	flags := flag.NewFlagSet("log", flag.ExitOnError)
	flagNatsServer := flags.String("natsServer", defaultNatsServer, "NATS Server")
	flagAuthToken := flags.String("token", "", "NATS auth token")

	if err := flags.Parse(args); err != nil {
		log.Fatal("error: ", err)
	}

	// only consider env if command line option is something different
	// than default
	natsServer := *flagNatsServer
	if natsServer == defaultNatsServer {
		natsServerE := os.Getenv("SC_NATS_SERVER")
		if natsServerE != "" {
			natsServer = natsServerE
		}
	}

	client.Log(natsServer, *flagAuthToken)

	select {}
}

func runCtl(args []string) {
	defaultNatsServer := "nats://localhost:4222"
	flags := flag.NewFlagSet("ctl", flag.ExitOnError)
	flagNatsServer := flags.String("natsServer", defaultNatsServer, "NATS Server")
	flagAuthToken := flags.String("token", "", "NATS auth token")
	flagCreds := flags.String("creds", "", "manage permission token")
	flags.Usage = func() {
		fmt.Println("usage: safetycenter ctl [OPTION]... OPERATION")
		flags.PrintDefaults()
		fmt.Println()
		fmt.Println("Operations:")
		fmt.Println("  - enabled (print whether the center is enabled)")
		fmt.Println("  - supported (print whether a center is running)")
		fmt.Println("  - instance (print the center instance ID)")
		fmt.Println("  - enable | disable (toggle the center, needs -creds)")
		fmt.Println("  - refresh (ask all sources for fresh data, needs -creds)")
		fmt.Println("  - data (dump aggregated center data, needs -creds)")
	}

	if err := flags.Parse(args); err != nil {
		log.Fatal("error: ", err)
	}

	natsServer := *flagNatsServer
	if natsServer == defaultNatsServer {
		natsServerE := os.Getenv("SC_NATS_SERVER")
		if natsServerE != "" {
			natsServer = natsServerE
		}
	}

	nc, err := nats.Connect(natsServer, nats.Token(*flagAuthToken))
	if err != nil {
		log.Fatal("Error connecting to NATS server: ", err)
	}
	defer nc.Close()

	if len(flags.Args()) < 1 {
		flags.Usage()
		os.Exit(-1)
	}

	switch flags.Args()[0] {
	case "enabled":
		enabled, err := client.CenterEnabled(nc)
		if err != nil {
			log.Fatal("Error: ", err)
		}
		fmt.Println(strconv.FormatBool(enabled))

	case "supported":
		supported, err := client.CenterSupported(nc)
		if err != nil {
			// no center answered
			fmt.Println("false")
			return
		}
		fmt.Println(strconv.FormatBool(supported))

	case "instance":
		id, err := client.CenterInstanceID(nc)
		if err != nil {
			log.Fatal("Error: ", err)
		}
		fmt.Println(id)

	case "enable", "disable":
		err := client.SetCenterEnabled(nc, *flagCreds, flags.Args()[0] == "enable")
		if err != nil {
			log.Fatal("Error: ", err)
		}

	case "refresh":
		id, err := client.RefreshSources(nc, *flagCreds, data.ReasonRescanButton)
		if err != nil {
			log.Fatal("Error: ", err)
		}
		fmt.Println("refresh started:", id)

	case "data":
		cd, err := client.GetCenterData(nc, *flagCreds)
		if err != nil {
			log.Fatal("Error: ", err)
		}
		fmt.Println(cd.String())

	default:
		fmt.Println("Error, unknown operation.")
		flags.Usage()
	}
}
