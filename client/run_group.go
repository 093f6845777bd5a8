package client

import (
	"log"
	"sync"

	"github.com/oklog/run"
)

// RunGroup runs a set of RunStop clients (safety sources, the notifier,
// metrics) as one unit: a wrapper around run.Group where stopping the group
// stops every member, and any member exiting stops the rest.
type RunGroup struct {
	name     string
	stop     chan struct{}
	stopOnce sync.Once
	group    run.Group
}

// NewRunGroup creates an empty group. The name shows up in the shutdown log.
func NewRunGroup(name string) *RunGroup {
	return &RunGroup{name: name, stop: make(chan struct{})}
}

// Add a client. Must happen before Run is called.
func (g *RunGroup) Add(c RunStop) {
	g.group.Add(c.Run, c.Stop)
}

// Run blocks until a member returns or the group is stopped
func (g *RunGroup) Run() error {
	g.group.Add(func() error {
		<-g.stop
		return nil
	}, func(_ error) {
		g.Stop(nil)
	})

	err := g.group.Run()
	if err != nil {
		log.Printf("%v: stopped: %v\n", g.name, err)
	}

	return err
}

// Stop every client in the group. Safe to call more than once.
func (g *RunGroup) Stop(_ error) {
	g.stopOnce.Do(func() { close(g.stop) })
}
