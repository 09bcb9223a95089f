// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tracker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blocksMintedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daisy_blocks_minted_total",
		Help: "Total number of blocks successfully minted by this node acting as leader.",
	})
	blocksAdoptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daisy_blocks_adopted_total",
		Help: "Total number of candidate blocks successfully verified and adopted by this node acting as follower.",
	})
	chainMismatchTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daisy_chain_mismatch_total",
		Help: "Total number of candidate blocks rejected by the Chain verifier.",
	})
)
