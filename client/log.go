package client

import (
	"fmt"
	"log"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/safetycenter/safetycenter/data"
)

// Log subscribes to the message firehose and dumps decoded traffic; used by
// the log subcommand for debugging a running center
func Log(natsServer, authToken string) {
	log.Println("Logging messages from: ", natsServer)

	opts := []nats.Option{}
	if authToken != "" {
		opts = append(opts, nats.Token(authToken))
	}

	nc, err := nats.Connect(natsServer, opts...)
	if err != nil {
		log.Println("Error connecting to NATS: ", err)
		return
	}

	_, err = nc.Subscribe(">", func(msg *nats.Msg) {
		s, err := String(msg)
		if err != nil {
			log.Printf("Error decoding %v: %v\n", msg.Subject, err)
			return
		}

		if s != "" {
			log.Print(s)
		}
	})

	if err != nil {
		log.Println("Subscribe error: ", err)
	}
}

// String converts a NATS message to a human readable string
func String(msg *nats.Msg) (string, error) {
	chunks := strings.Split(msg.Subject, ".")

	switch chunks[0] {
	case "src", "refresh", "action", "p":
		if len(chunks) < 2 {
			// not ours; some other client publishing on a bare token
			return "", nil
		}
	}

	switch chunks[0] {
	case "src":
		if len(chunks) == 3 && chunks[2] == "get" {
			return fmt.Sprintf("GET SRC: %v\n", chunks[1]), nil
		}

		up, err := data.PbDecodeSourceUpdate(msg.Data)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("PUSH: %v\n", up), nil

	case "refresh":
		req, err := data.PbDecodeRefreshRequest(msg.Data)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("REFRESH %v: %v\n", chunks[1], req), nil

	case "action":
		return fmt.Sprintf("ACTION %v: %v\n", chunks[1], string(msg.Data)), nil

	case "center":
		if len(chunks) < 2 {
			return "", fmt.Errorf("malformed center subject: %v", msg.Subject)
		}

		switch chunks[1] {
		case "updated":
			cd, err := data.PbDecodeCenterData(msg.Data)
			if err != nil {
				return "", err
			}

			return fmt.Sprintf("CENTER: %v\n", cd), nil
		case "error":
			ed, err := data.PbDecodeErrorDetail(msg.Data)
			if err != nil {
				return "", err
			}

			return fmt.Sprintf("CENTER %v\n", ed), nil
		}

		return fmt.Sprintf("CENTER %v\n", strings.Join(chunks[1:], ".")), nil

	case "t":
		if len(chunks) == 2 && chunks[1] == "query" {
			return "TELEMETRY QUERY\n", nil
		}

		t, err := data.PbDecodeTelemetry(msg.Data)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("%v\n", t), nil

	case "p":
		points, err := data.PbDecodePoints(msg.Data)
		if err != nil {
			return "", err
		}

		ret := fmt.Sprintf("POINTS %v:\n", chunks[1])
		for _, p := range points {
			ret += fmt.Sprintf("   - %v\n", p)
		}

		return ret, nil
	}

	// replies and internal traffic
	return "", nil
}
