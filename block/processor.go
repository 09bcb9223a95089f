// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"github.com/hayesgm/daisy/signature"
	"github.com/hayesgm/daisy/storage"
)

// Process - fold b's transactions left to right (spec.md §4.6):
// starting from b.InitialStorage, each transaction's Runner result
// becomes the next transaction's starting storage; receipts accumulate
// in order; b.FinalStorage is the last receipt's FinalStorage, or
// InitialStorage if there were no transactions.
//
// Signature verification happens before running, not inside the
// Runner: a transaction with an invalid signature aborts processing of
// the whole block (spec.md §4.9 — the deterministic policy), leaving no
// partial receipts.
func Process(b Block, s *storage.Storage, runner Runner) (Block, error) {
	current := b.InitialStorage
	receipts := make([]Receipt, 0, len(b.Transactions))

	for _, tx := range b.Transactions {
		signerOrOwner, err := authorize(tx)
		if nil != err {
			return Block{}, err
		}

		result, err := runner.Run(s, tx.Invocation, current, b.BlockNumber, signerOrOwner)
		if nil != err {
			return Block{}, err
		}

		receipts = append(receipts, Receipt{
			Status:         result.Status,
			InitialStorage: current,
			FinalStorage:   result.FinalStorage,
			Logs:           result.Logs,
			Debug:          result.Debug,
		})
		current = result.FinalStorage
	}

	finalStorage := b.InitialStorage
	if 0 != len(receipts) {
		finalStorage = receipts[len(receipts)-1].FinalStorage
	}

	b.Receipts = receipts
	b.FinalStorage = finalStorage
	return b, nil
}

// authorize - recover and verify a signed transaction's public key, or
// take the owner byte string as already-trusted (system-queued
// transactions, enqueued by code that performed its own authorization
// at enqueue time)
func authorize(tx Transaction) ([]byte, error) {
	if err := tx.Validate(); nil != err {
		return nil, err
	}
	if nil != tx.Signature {
		return signature.Verify(SignaturePayload(tx.Invocation), *tx.Signature)
	}
	return tx.Owner, nil
}
