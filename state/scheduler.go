package state

import (
	"fmt"
	"time"
)

// Dispatch queues fun to run on the main goroutine without waiting for it to
// complete. Safe to call during shutdown, the dispatch is dropped once the
// context is cancelled.
func (e *Env) Dispatch(fun func(*State) error) {
	defer func() {
		if r := recover(); r != nil {
			e.Cancel(fmt.Errorf("panic: %v", r))
		}
	}()
	select {
	case e.DispatchChannel <- fun:
	case <-e.Context.Done():
	}
}

// DispatchWait queues fun to run on the main goroutine and waits for its
// result. Must not be called from the main goroutine itself.
func (e *Env) DispatchWait(fun func(*State) (any, error)) (any, error) {
	ret := make(chan Pair[any, error], 1)
	e.Dispatch(func(s *State) error {
		res, err := fun(s)
		ret <- Pair[any, error]{res, err}
		return err
	})
	select {
	case res := <-ret:
		return res.V1, res.V2
	case <-e.Context.Done():
		return nil, e.Context.Err()
	}
}

// ScheduleTask runs fun on the main goroutine after delay.
func (e *Env) ScheduleTask(fun func(*State) error, delay time.Duration) {
	time.AfterFunc(delay, func() {
		e.Dispatch(fun)
	})
}

func (e *Env) repeatTask(fun func(*State) error, delay time.Duration) {
	for e.Context.Err() == nil {
		e.Dispatch(fun)
		select {
		case <-e.Context.Done():
			return
		case <-time.After(delay):
		}
	}
}

// RepeatTask runs fun on the main goroutine every delay until shutdown.
func (e *Env) RepeatTask(fun func(*State) error, delay time.Duration) {
	go e.repeatTask(fun, delay)
}
