// SPDX-License-Identifier: ISC
// Copyright (c) 2017-2020 Refnet Project Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package background - start and stop sets of background goroutines
package background

// Process - interface for a background goroutine
//
// Run is called on its own goroutine and must return promptly after
// the shutdown channel closes
type Process interface {
	Run(args interface{}, shutdown <-chan struct{})
}

// Processes - list of processes to start
type Processes []Process

// the shutdown and completed channels for one background
type shutdown struct {
	shutdown chan struct{}
	finished chan struct{}
}

// T - handle to a started set
type T struct {
	s []shutdown
}

// Start - run a set of background processes
func Start(processes Processes, args interface{}) *T {

	register := new(T)
	register.s = make([]shutdown, len(processes))

	// start each background
	for i, p := range processes {
		s := make(chan struct{})
		f := make(chan struct{})
		register.s[i].shutdown = s
		register.s[i].finished = f
		go func(p Process, s <-chan struct{}, f chan<- struct{}) {
			p.Run(args, s)
			close(f)
		}(p, s, f)
	}
	return register
}

// Stop - shut down the set and wait for all processes to finish
func (t *T) Stop() {

	if nil == t {
		return
	}

	// shutdown all background tasks
	for _, s := range t.s {
		close(s.shutdown)
	}

	// wait for finished
	for _, s := range t.s {
		<-s.finished
	}
}
