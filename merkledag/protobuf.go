// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkledag

import (
	"github.com/hayesgm/daisy/fault"
	"github.com/hayesgm/daisy/util"
)

// wire types this minimal decoder understands; anything else is a
// protocol error rather than a panic
const (
	wireVarint         = 0
	wireLengthDelimited = 2
)

// field - one decoded protobuf field: either a varint value or a raw
// length-delimited byte slice, tagged by field number
type field struct {
	number int
	varint uint64
	bytes  []byte
	isVar  bool
}

// decodeFields - the minimal varint + length-delimited protobuf reader
// required by the Prover (spec §4.2): only wire types 0 and 2 are legal,
// everything else is fault.ErrInvalidWireType. Ported from the varint
// routines in util/varint.go.
func decodeFields(buffer []byte) ([]field, error) {
	fields := make([]field, 0, 4)
	offset := 0
	for offset < len(buffer) {
		tag, n := util.FromVarint64(buffer[offset:])
		if 0 == n {
			return nil, fault.ErrTruncatedVarint
		}
		offset += n

		wireType := int(tag & 0x7)
		fieldNumber := int(tag >> 3)

		switch wireType {
		case wireVarint:
			value, n := util.FromVarint64(buffer[offset:])
			if 0 == n {
				return nil, fault.ErrTruncatedVarint
			}
			offset += n
			fields = append(fields, field{number: fieldNumber, varint: value, isVar: true})

		case wireLengthDelimited:
			length, n := util.FromVarint64(buffer[offset:])
			if 0 == n {
				return nil, fault.ErrTruncatedVarint
			}
			offset += n
			if offset+int(length) > len(buffer) {
				return nil, fault.ErrTruncatedVarint
			}
			data := buffer[offset : offset+int(length)]
			offset += int(length)
			fields = append(fields, field{number: fieldNumber, bytes: data})

		default:
			return nil, fault.ErrInvalidWireType
		}
	}
	return fields, nil
}

// appendTag - field header: (fieldNumber << 3) | wireType
func appendTag(buffer []byte, fieldNumber, wireType int) []byte {
	return append(buffer, util.ToVarint64(uint64(fieldNumber<<3|wireType))...)
}

func appendBytesField(buffer []byte, fieldNumber int, data []byte) []byte {
	buffer = appendTag(buffer, fieldNumber, wireLengthDelimited)
	buffer = append(buffer, util.ToVarint64(uint64(len(data)))...)
	return append(buffer, data...)
}

func appendStringField(buffer []byte, fieldNumber int, s string) []byte {
	return appendBytesField(buffer, fieldNumber, []byte(s))
}

func appendVarintField(buffer []byte, fieldNumber int, value uint64) []byte {
	buffer = appendTag(buffer, fieldNumber, wireVarint)
	return append(buffer, util.ToVarint64(value)...)
}

// AppendStringField - exported wrapper around the minimal wire format
// so other packages needing a deterministic protobuf-compatible
// encoding (e.g. block's signed Invocation payload) reuse this decoder's
// exact byte layout instead of inventing a second one.
func AppendStringField(buffer []byte, fieldNumber int, s string) []byte {
	return appendStringField(buffer, fieldNumber, s)
}
