// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package merkledag implements the content-addressed object model shared
// by the storage tree and the Prover: dag-pb style nodes, multihash
// printable hashes, and the minimal protobuf codec needed to build and
// walk them without pulling in a full protobuf runtime.
package merkledag

import (
	"crypto/sha256"

	"github.com/hayesgm/daisy/fault"
	"github.com/mr-tron/base58"
)

// sha2-256 multihash function code, per the multihash spec
const (
	sha2_256Code   = 0x12
	sha2_256Length = 0x20
)

// Hash - a printable, content-addressed identifier for a Node: the
// base58btc encoding of a multihash-wrapped sha2-256 digest, e.g.
// "QmXg9Pp2ytZ14xgmQjYEiHjVjMFXzCVVEcRTWJBmLgR39V"
type Hash string

// String - satisfy fmt.Stringer
func (h Hash) String() string {
	return string(h)
}

// IsEmpty - true for the zero value
func (h Hash) IsEmpty() bool {
	return "" == h
}

// SumBytes - wrap a raw sha2-256 digest in its multihash prefix
func SumBytes(data []byte) []byte {
	digest := sha256.Sum256(data)
	multihash := make([]byte, 0, 2+len(digest))
	multihash = append(multihash, sha2_256Code, sha2_256Length)
	multihash = append(multihash, digest[:]...)
	return multihash
}

// Sum - compute the printable Hash of an arbitrary byte string
func Sum(data []byte) Hash {
	return Hash(base58.Encode(SumBytes(data)))
}

// DecodeHash - recover the raw multihash bytes backing a printable Hash,
// validating the sha2-256 prefix and length
func DecodeHash(h Hash) ([]byte, error) {
	raw, err := base58.Decode(string(h))
	if nil != err {
		return nil, fault.ProtocolError("malformed hash: " + err.Error())
	}
	if len(raw) != 2+sha2_256Length {
		return nil, fault.ProtocolError("malformed multihash length")
	}
	if raw[0] != sha2_256Code || raw[1] != sha2_256Length {
		return nil, fault.ProtocolError("unsupported multihash function")
	}
	return raw, nil
}

// Verify - true if data actually hashes to h
func Verify(h Hash, data []byte) bool {
	return Sum(data) == h
}
