// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package block defines Daisy's core domain types and the pipeline that
// turns a draft of transactions into a finalized, content-addressed
// Block: Builder (genesis / new block), Processor (fold transactions
// into receipts), Runner/Reader (pluggable execution capabilities), and
// ChainVerifier (follower re-execution).
package block

import (
	"github.com/hayesgm/daisy/fault"
	"github.com/hayesgm/daisy/merkledag"
	"github.com/hayesgm/daisy/signature"
)

// Invocation - a function call: a name plus its string arguments. The
// signed payload for a user transaction is the deterministic
// serialization of this struct (see SignaturePayload).
type Invocation struct {
	Function string
	Args     []string
}

// Transaction - exactly one of Signature or Owner must be populated: a
// Signature marks a user-signed transaction; Owner marks a
// system-queued transaction whose signer is trusted by construction
// (it was enqueued by already-authorized code).
type Transaction struct {
	Invocation Invocation
	Signature  *signature.Signature
	Owner      []byte
}

// Validate - exactly one of Signature/Owner must be set
func (t Transaction) Validate() error {
	hasSignature := nil != t.Signature
	hasOwner := len(t.Owner) > 0
	if hasSignature == hasOwner {
		return fault.ErrInvalidTransaction
	}
	return nil
}

// Receipt - the outcome of executing one Transaction. Status 0 is
// success; any other value is a failure code chosen by the Runner.
type Receipt struct {
	Status         uint32
	InitialStorage merkledag.Hash
	FinalStorage   merkledag.Hash
	Logs           []string
	Debug          string
}

// Block - a numbered, content-addressed unit of execution
type Block struct {
	BlockNumber     uint64
	ParentBlockHash merkledag.Hash
	InitialStorage  merkledag.Hash
	FinalStorage    merkledag.Hash
	Transactions    []Transaction
	Receipts        []Receipt
}
