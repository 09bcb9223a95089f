// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"github.com/hayesgm/daisy/merkledag"
	"github.com/hayesgm/daisy/storage"
)

// RunResult - the outcome of executing one transaction against storage
type RunResult struct {
	Status       uint32
	FinalStorage merkledag.Hash
	Logs         []string
	Debug        string
}

// Runner - the pluggable execution capability (spec.md §4.6): given a
// verified invocation and the identity that authorized it (a recovered
// public key, or a trusted owner byte string for system-queued
// transactions), mutate storage starting from initialStorage and report
// the outcome. A production Runner implements a real interpreter; the
// vm package supplies a minimal reference implementation.
type Runner interface {
	Run(s *storage.Storage, inv Invocation, initialStorage merkledag.Hash, blockNumber uint64, signerOrOwner []byte) (RunResult, error)
}

// Reader - the pluggable read-only capability, routed at the current
// open block's final_storage (or initial_storage if final is empty)
type Reader interface {
	Read(s *storage.Storage, function string, args []string, root merkledag.Hash) (string, error)
}

// TransactionDrainer - the deferred-queue capability the Builder needs
// to assemble transactions[0..] of a new block. Declared here rather
// than depending on the txqueue package directly, since txqueue depends
// on block for its Transaction/Invocation types; the tracker package
// wires a concrete txqueue-backed implementation in.
type TransactionDrainer interface {
	DrainForBlock(root merkledag.Hash, blockNumber uint64) ([]Transaction, error)
}
