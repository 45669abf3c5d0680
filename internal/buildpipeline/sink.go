package buildpipeline

import (
	"sync"
	"time"
)

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// FuncSink adapts a function to ProgressSink.
type FuncSink func(Event)

func (f FuncSink) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

// Recorder keeps every event in arrival order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) OnEvent(evt Event) {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Final returns the last final status seen per package.
func (r *Recorder) Final() map[string]Status {
	out := make(map[string]Status)
	for _, evt := range r.Events() {
		if evt.Package != "" && evt.Status.Final() {
			out[evt.Package] = evt.Status
		}
	}
	return out
}

// Emit sends one event to sink; a nil sink drops it.
func Emit(sink ProgressSink, pkg string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Package: pkg, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

// EmitQueued announces pkgs before any work starts.
func EmitQueued(sink ProgressSink, pkgs []string) {
	for _, pkg := range pkgs {
		Emit(sink, pkg, StageLoad, StatusQueued, nil, 0)
	}
}
