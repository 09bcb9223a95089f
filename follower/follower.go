// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package follower is the follower loop (spec.md §4.8): on a timer,
// resolve the leader's published head, load it, and hand it to the
// tracker's Chain verifier for adoption. A resolve that comes back
// fault.ErrNotFound means no leader has published yet, a soft
// condition the loop simply waits out rather than logging as a fault.
package follower

import (
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/hayesgm/daisy/block"
	"github.com/hayesgm/daisy/fault"
	"github.com/hayesgm/daisy/merkledag"
	"github.com/hayesgm/daisy/messagebus"
	"github.com/hayesgm/daisy/nameservice"
	"github.com/hayesgm/daisy/storage"
	"github.com/hayesgm/daisy/tracker"
)

// DefaultIntervalMilliseconds - spec.md §6's pulling_interval_ms default
const DefaultIntervalMilliseconds = 10000

type loop struct {
	log        *logger.L
	interval   time.Duration
	storage    *storage.Storage
	serializer block.Serializer

	lastAdopted merkledag.Hash
}

// New - a background.Process that resolves, loads and adopts on interval
func New(intervalMilliseconds int, s *storage.Storage, ser block.Serializer) *loop {
	if 0 >= intervalMilliseconds {
		intervalMilliseconds = DefaultIntervalMilliseconds
	}
	return &loop{
		log:        logger.New("follower"),
		interval:   time.Duration(intervalMilliseconds) * time.Millisecond,
		storage:    s,
		serializer: ser,
	}
}

// Run - the resolve/load/adopt cycle; satisfies background.Process
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
			state.pull()
			delay = time.After(state.interval)
		}
	}
	log.Info("shutting down…")
}

func (state *loop) pull() {
	log := state.log

	hash, err := nameservice.Resolve()
	if nil != err {
		if fault.IsErrNotFound(err) {
			log.Debug("no publisher yet")
			return
		}
		log.Errorf("resolve failed: %s", err)
		return
	}

	if hash == state.lastAdopted {
		return
	}

	candidate, err := block.Load(hash, state.storage, state.serializer)
	if nil != err {
		log.Errorf("load %s failed: %s", hash, err)
		return
	}

	if err := tracker.AdoptBlock(candidate, hash); nil != err {
		log.Warnf("adopt %s rejected: %s", hash, err)
		return
	}

	state.lastAdopted = hash
	log.Infof("adopted: %s", hash)
	messagebus.Bus.Broadcast.Send("block", []byte(hash))
}
