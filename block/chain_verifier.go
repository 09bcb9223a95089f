// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"fmt"
	"reflect"

	"github.com/hayesgm/daisy/fault"
	"github.com/hayesgm/daisy/storage"
)

// Verify - a follower's Chain verifier (spec.md §4.6): confirm that
// candidate either IS current (deep-equal) or descends from it through
// a chain of re-executable blocks. Any mismatch or missing parent is a
// hard reject (fault.ChainMismatchError); success means the recursion
// reached current via exact matches at every step.
func Verify(current, candidate Block, s *storage.Storage, runner Runner, ser Serializer) error {
	if candidate.BlockNumber < current.BlockNumber {
		return fault.ChainMismatchError{
			Field:    "block_number",
			Expected: ">= current block_number",
			Actual:   "lower",
		}
	}

	if candidate.BlockNumber == current.BlockNumber {
		return compareBlocks(current, candidate)
	}

	recomputed := candidate
	recomputed.FinalStorage = ""
	recomputed.Receipts = nil
	recomputed, err := Process(recomputed, s, runner)
	if nil != err {
		return err
	}
	if err := compareBlocks(recomputed, candidate); nil != err {
		return err
	}

	if candidate.ParentBlockHash.IsEmpty() {
		return fault.ChainMismatchError{Field: "parent_block_hash", Expected: "present", Actual: "empty"}
	}
	parent, err := Load(candidate.ParentBlockHash, s, ser)
	if nil != err {
		return err
	}
	return Verify(current, parent, s, runner, ser)
}

// compareBlocks - byte-equal field comparison, reporting the first
// mismatched field name per spec.md §4.6
func compareBlocks(expected, actual Block) error {
	if expected.BlockNumber != actual.BlockNumber {
		return mismatch("block_number", expected.BlockNumber, actual.BlockNumber)
	}
	if expected.ParentBlockHash != actual.ParentBlockHash {
		return mismatch("parent_block_hash", expected.ParentBlockHash, actual.ParentBlockHash)
	}
	if expected.InitialStorage != actual.InitialStorage {
		return mismatch("initial_storage", expected.InitialStorage, actual.InitialStorage)
	}
	if expected.FinalStorage != actual.FinalStorage {
		return mismatch("final_storage", expected.FinalStorage, actual.FinalStorage)
	}
	if !reflect.DeepEqual(normalizeTransactions(expected.Transactions), normalizeTransactions(actual.Transactions)) {
		return fault.ChainMismatchError{Field: "transactions", Expected: "match", Actual: "mismatch"}
	}
	if !reflect.DeepEqual(normalizeReceipts(expected.Receipts), normalizeReceipts(actual.Receipts)) {
		return fault.ChainMismatchError{Field: "receipts", Expected: "match", Actual: "mismatch"}
	}
	return nil
}

func mismatch(field string, expected, actual interface{}) error {
	return fault.ChainMismatchError{
		Field:    field,
		Expected: fmt.Sprintf("%v", expected),
		Actual:   fmt.Sprintf("%v", actual),
	}
}

// normalizeTransactions/normalizeReceipts - nil and empty slices compare
// as equal (the zero value of a freshly-built Block uses nil, a
// round-tripped one may come back as an empty slice)
func normalizeTransactions(txs []Transaction) []Transaction {
	if 0 == len(txs) {
		return []Transaction{}
	}
	return txs
}

func normalizeReceipts(receipts []Receipt) []Receipt {
	if 0 == len(receipts) {
		return []Receipt{}
	}
	return receipts
}
