// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import "github.com/hayesgm/daisy/merkledag"

// SignaturePayload - the deterministic byte string a Transaction's
// signature is computed over: a minimal protobuf-compatible encoding of
// the Invocation (field 1 = function, field 2 = repeated args), reusing
// merkledag's wire format so there is exactly one encode/decode scheme
// for length-delimited fields in this module.
func SignaturePayload(inv Invocation) []byte {
	buffer := make([]byte, 0, 16+len(inv.Function))
	buffer = merkledag.AppendStringField(buffer, 1, inv.Function)
	for _, arg := range inv.Args {
		buffer = merkledag.AppendStringField(buffer, 2, arg)
	}
	return buffer
}
