package client

import (
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/safetycenter/safetycenter/data"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Point types the health source emits for trending
const (
	PointTypeSysDisk = "sysDisk"
	PointTypeSysMem  = "sysMem"
	PointTypeSysLoad = "sysLoad"
)

// HealthConfig configures the built-in device-health safety source
type HealthConfig struct {
	// SourceID must match the center config; defaults to "device-health"
	SourceID string

	// Creds is a send credential for this source
	Creds string

	// Period between samples; defaults to 2 minutes
	Period time.Duration

	// DiskPath is the mount point watched for free space; defaults to "/"
	DiskPath string

	// DiskWarnPercent raises a storage issue when disk usage passes it;
	// defaults to 90
	DiskWarnPercent float64
}

// HealthClient is a built-in safety source that reports device health:
// an informational status normally, and a storage issue when disk usage
// crosses the configured threshold. It participates in the refresh protocol
// like any other source and additionally publishes raw points for trending.
type HealthClient struct {
	nc     *nats.Conn
	config HealthConfig
	runner *SourceRunner
	stop   chan struct{}
}

// NewHealthClient creates a new health client
func NewHealthClient(nc *nats.Conn, config HealthConfig) *HealthClient {
	if config.SourceID == "" {
		config.SourceID = "device-health"
	}

	if config.Period <= 0 {
		config.Period = 2 * time.Minute
	}

	if config.DiskPath == "" {
		config.DiskPath = "/"
	}

	if config.DiskWarnPercent <= 0 {
		config.DiskWarnPercent = 90
	}

	hc := &HealthClient{
		nc:     nc,
		config: config,
		stop:   make(chan struct{}),
	}

	hc.runner = NewSourceRunner(nc, SourceConfig{
		ID:      config.SourceID,
		Creds:   config.Creds,
		Provide: hc.collect,
	})

	return hc
}

// Run the health client. Blocks until Stop is called.
func (hc *HealthClient) Run() error {
	chRunnerDone := make(chan error)

	go func() {
		chRunnerDone <- hc.runner.Run()
	}()

	sampleTicker := time.NewTicker(hc.config.Period)
	defer sampleTicker.Stop()

	// push an initial reading so the center is not left unknown until the
	// first tick
	hc.push()

done:
	for {
		select {
		case <-hc.stop:
			hc.runner.Stop(nil)
			break done

		case err := <-chRunnerDone:
			return err

		case <-sampleTicker.C:
			hc.push()
		}
	}

	return <-chRunnerDone
}

// Stop the health client
func (hc *HealthClient) Stop(_ error) {
	close(hc.stop)
}

func (hc *HealthClient) push() {
	sd, err := hc.collect(data.RefreshRequest{})
	if err != nil {
		log.Println("Health: collect error: ", err)
		return
	}

	err = hc.runner.Push(sd)
	if err != nil {
		log.Println("Health: push error: ", err)
	}
}

// collect samples the system and builds source data from it
func (hc *HealthClient) collect(_ data.RefreshRequest) (data.SourceData, error) {
	now := time.Now()
	var pts data.Points

	sd := data.SourceData{
		Status: &data.SourceStatus{
			Title:    "Device health",
			Summary:  "No problems found",
			Severity: data.SeverityInformation,
			Enabled:  true,
		},
	}

	usage, err := disk.Usage(hc.config.DiskPath)
	if err != nil {
		return data.SourceData{}, fmt.Errorf("disk usage: %w", err)
	}

	pts.Add(data.Point{
		Type:   PointTypeSysDisk,
		Time:   now,
		Key:    hc.config.DiskPath,
		Value:  usage.UsedPercent,
		Origin: hc.config.SourceID,
	})

	if usage.UsedPercent >= hc.config.DiskWarnPercent {
		sd.Status.Summary = "Storage is nearly full"
		sd.Status.Severity = data.SeverityRecommendation
		sd.Issues = append(sd.Issues, data.SourceIssue{
			ID:          "disk-full:" + hc.config.DiskPath,
			Title:       "Storage is nearly full",
			Summary:     fmt.Sprintf("%.0f%% of %v is in use", usage.UsedPercent, hc.config.DiskPath),
			Severity:    data.SeverityRecommendation,
			Category:    "storage",
			Dismissible: true,
		})
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Println("Health: mem error: ", err)
	} else {
		pts.Add(data.Point{
			Type:   PointTypeSysMem,
			Time:   now,
			Value:  vm.UsedPercent,
			Origin: hc.config.SourceID,
		})
	}

	avg, err := load.Avg()
	if err != nil {
		log.Println("Health: load error: ", err)
	} else {
		pts.Add(data.Point{
			Type:   PointTypeSysLoad,
			Time:   now,
			Key:    "1",
			Value:  avg.Load1,
			Origin: hc.config.SourceID,
		})
	}

	up, err := host.Uptime()
	if err == nil && up < 300 {
		// freshly booted device; mention it but don't raise severity
		sd.Status.Summary = "Device recently restarted"
	}

	if len(pts) > 0 {
		err := SendPoints(hc.nc, SubjectPoints(hc.config.SourceID), pts)
		if err != nil {
			log.Println("Health: error sending points: ", err)
		}
	}

	return sd, nil
}
