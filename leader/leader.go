// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package leader is the leader loop (spec.md §4.8): on a timer, mint
// the tracker's current open block and publish the result via the
// mutable-name service, then announce the new head on the message bus.
package leader

import (
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/hayesgm/daisy/messagebus"
	"github.com/hayesgm/daisy/nameservice"
	"github.com/hayesgm/daisy/tracker"
)

// DefaultIntervalMilliseconds - spec.md §6's mining_interval_ms default
const DefaultIntervalMilliseconds = 10000

type loop struct {
	log      *logger.L
	interval time.Duration
}

// New - a background.Process that mints and publishes on interval
func New(intervalMilliseconds int) *loop {
	if 0 >= intervalMilliseconds {
		intervalMilliseconds = DefaultIntervalMilliseconds
	}
	return &loop{
		log:      logger.New("leader"),
		interval: time.Duration(intervalMilliseconds) * time.Millisecond,
	}
}

// Run - the mint/publish cycle; satisfies background.Process
func (state *loop) Run(args interface{}, shutdown <-chan struct{}) {
	log := state.log
	log.Info("starting…")

	delay := time.After(state.interval)
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-delay:
			state.mintAndPublish()
			delay = time.After(state.interval)
		}
	}
	log.Info("shutting down…")
}

func (state *loop) mintAndPublish() {
	log := state.log

	hash, err := tracker.MintCurrentBlock()
	if nil != err {
		log.Errorf("mint failed: %s", err)
		return
	}

	if err := nameservice.Publish(hash); nil != err {
		log.Errorf("publish failed: %s", err)
		return
	}

	log.Infof("minted and published: %s", hash)
	messagebus.Bus.Broadcast.Send("mint", []byte(hash))
}
