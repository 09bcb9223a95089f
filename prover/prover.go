// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package prover implements standalone verification of a Merkle
// inclusion proof: given a root hash, a path, an expected value, and a
// proof chain of raw dag-pb node bytes, confirm the chain actually
// links the expected value to that root. Verification touches only
// sha256 and the minimal protobuf decoder in merkledag; no network I/O.
package prover

import (
	"bytes"
	"strings"

	"github.com/hayesgm/daisy/fault"
	"github.com/hayesgm/daisy/merkledag"
)

// Verify - confirm that proof (ordered leaf-first, root-last, as
// returned by storage.Proof) demonstrates that expectedValue is stored
// at path under root.
//
// Returns fault.ErrInvalidDataProof if the leaf's data does not match
// expectedValue, fault.InvalidProofError{Segment} if some intermediate
// link in the chain cannot be matched, and nil on success.
func Verify(root merkledag.Hash, path string, expectedValue []byte, proof [][]byte) error {
	if 0 == len(proof) {
		return fault.ErrInvalidDataProof
	}

	leaf, err := merkledag.DecodeNode(proof[0])
	if nil != err {
		return err
	}
	if !bytes.Equal(leaf.Data, expectedValue) {
		return fault.ErrInvalidDataProof
	}

	segments := splitPath(path)
	reverse(segments)

	previous := proof[0]
	for i := 0; i < len(segments); i += 1 {
		if i+1 >= len(proof) {
			return fault.InvalidProofError{Segment: segments[i]}
		}
		upper := proof[i+1]

		upperNode, err := merkledag.DecodeNode(upper)
		if nil != err {
			return err
		}

		expectedHash := merkledag.Sum(previous)
		matched := false
		for _, link := range upperNode.Links {
			if link.Name == segments[i] && link.Hash == expectedHash {
				matched = true
				break
			}
		}
		if !matched {
			return fault.InvalidProofError{Segment: segments[i]}
		}
		previous = upper
	}

	finalHash := merkledag.Sum(previous)
	if finalHash != root {
		lastSegment := ""
		if len(segments) > 0 {
			lastSegment = segments[len(segments)-1]
		}
		return fault.InvalidProofError{Segment: lastSegment}
	}

	return nil
}

func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if "" == path {
		return nil
	}
	return strings.Split(path, "/")
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
