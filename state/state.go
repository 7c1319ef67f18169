package state

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type WfModule interface {
	Init(s *State) error
	Cleanup(s *State) error
}

// State access must be done only on a single Goroutine
type State struct {
	*Env
	Modules map[string]WfModule
	*TopoState
}

// Env can be read from any Goroutine
type Env struct {
	DispatchChannel chan<- func(s *State) error
	CentralCfg
	LocalCfg
	Context    context.Context
	Cancel     context.CancelCauseFunc
	Log        *slog.Logger
	ConfigPath string
	Started    atomic.Bool
	Stopping   atomic.Bool
	Updating   atomic.Bool
}
