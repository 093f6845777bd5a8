package client_test

import (
	"sync"
	"testing"
	"time"

	"github.com/safetycenter/safetycenter/auth"
	"github.com/safetycenter/safetycenter/client"
	"github.com/safetycenter/safetycenter/data"
	"github.com/safetycenter/safetycenter/store"
	"github.com/safetycenter/safetycenter/test"
)

func healthConfig() store.Config {
	return store.Config{
		Groups: []store.GroupConfig{
			{ID: "system", Title: "System", Sources: []store.SourceConfig{
				{ID: "device-health", Title: "Device health",
					Summary: "No health data yet"},
			}},
		},
	}
}

func TestHealthClient(t *testing.T) {
	nc, creds, stop, err := test.Server(healthConfig())
	if err != nil {
		t.Fatal("Error starting test server: ", err)
	}
	defer stop()

	healthCreds, err := creds.Mint(auth.RoleSend, "device-health", 0)
	if err != nil {
		t.Fatal("Error minting creds: ", err)
	}

	var ptLock sync.Mutex
	var gotDisk bool

	stopPoints, err := client.SubscribePoints(nc, "device-health",
		func(points data.Points) {
			ptLock.Lock()
			defer ptLock.Unlock()
			for _, p := range points {
				if p.Type == client.PointTypeSysDisk {
					gotDisk = true
				}
			}
		})
	if err != nil {
		t.Fatal("Error subscribing to points: ", err)
	}
	defer stopPoints()

	hc := client.NewHealthClient(nc, client.HealthConfig{
		Creds:  healthCreds,
		Period: 100 * time.Millisecond,
	})

	go func() { _ = hc.Run() }()
	defer hc.Stop(nil)

	// the initial push should land shortly after start
	err = test.WaitFor(2*time.Second, func() bool {
		sd, err := client.GetSourceData(nc, creds.Send, "device-health")
		if err != nil {
			return false
		}
		return sd.Status != nil && sd.Status.Title == "Device health"
	})
	if err != nil {
		t.Fatal("Health data never arrived: ", err)
	}

	// disk points arrive alongside the safety data
	err = test.WaitFor(2*time.Second, func() bool {
		ptLock.Lock()
		defer ptLock.Unlock()
		return gotDisk
	})
	if err != nil {
		t.Fatal("Disk point never arrived: ", err)
	}
}
