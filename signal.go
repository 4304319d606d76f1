// Copyright (c) 2013-2014 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"os/signal"
)

// interruptSignals defines the signals that are handled to do a clean
// shutdown.  Conditional compilation is used to also include SIGTERM on Unix.
var interruptSignals = []os.Signal{os.Interrupt}

// interruptContext returns a context that is canceled on the first interrupt
// signal.  A second signal is not intercepted and terminates the process.
func interruptContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	interruptChannel := make(chan os.Signal, 1)
	signal.Notify(interruptChannel, interruptSignals...)

	go func() {
		select {
		case sig := <-interruptChannel:
			log.Infof("Received signal (%s).  Shutting down...", sig)
			signal.Stop(interruptChannel)
			cancel()
		case <-ctx.Done():
			signal.Stop(interruptChannel)
		}
	}()

	return ctx, cancel
}
