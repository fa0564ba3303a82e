package launcher

import (
	"context"
	"syscall"
)

// Part names accepted by the sequencer. PartAll enables every service.
const (
	PartAll     = "all"
	PartGrist   = "grist"
	PartTraefik = "traefik"
	PartWho     = "who"
	PartDex     = "dex"
	PartTFA     = "tfa"
)

// Parts lists the valid part names in launch order, PartAll first.
var Parts = []string{PartAll, PartGrist, PartTraefik, PartWho, PartDex, PartTFA}

// ProcessSpec is everything needed to spawn one service process.
type ProcessSpec struct {
	Name    string
	Command string
	Args    []string
	// Env is the complete environment of the process as KEY=VALUE pairs.
	Env []string
}

// Handle refers to a launched process group.
type Handle interface {
	Name() string
	PID() int
	// Signal delivers sig to the whole process group.
	Signal(sig syscall.Signal) error
}

// Starter spawns processes without waiting for them.
type Starter interface {
	Start(spec ProcessSpec) (Handle, error)
}

// Waiter blocks until an endpoint is ready.
type Waiter interface {
	WaitUntilReady(ctx context.Context, probeURL string) error
}
