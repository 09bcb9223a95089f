// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkledag

import (
	"bytes"

	"github.com/hayesgm/daisy/fault"
	"github.com/mr-tron/base58"
)

// dag-pb field numbers
const (
	fieldData = 1
	fieldLink = 2

	fieldLinkHash  = 1
	fieldLinkName  = 2
	fieldLinkTsize = 3
)

// Link - a named, sized edge to another Node, identified by its Hash
type Link struct {
	Name string
	Hash Hash
	Size uint64
}

// Node - a dag-pb object: an opaque Data payload plus zero or more
// outbound Links. A leaf carries Data and no Links; an intermediate
// (directory) node carries Links and a short placeholder Data. A node
// with both non-placeholder Data and non-empty Links is rejected by
// Validate.
type Node struct {
	Data  []byte
	Links []Link
}

// placeholder data carried by intermediate nodes that have no leaf
// payload of their own, mirroring the unixfs directory sentinel
var directoryPlaceholder = []byte{0x08, 0x01}

// NewLeaf - build a leaf Node wrapping data with no links
func NewLeaf(data []byte) Node {
	return Node{Data: data}
}

// NewTree - build an intermediate Node from a set of links
func NewTree(links []Link) Node {
	return Node{Data: directoryPlaceholder, Links: links}
}

// IsLeaf - true if this Node is a leaf (no outbound links)
func (n Node) IsLeaf() bool {
	return 0 == len(n.Links)
}

// IsTree - true if this Node carries outbound links
func (n Node) IsTree() bool {
	return len(n.Links) > 0
}

// Validate - reject a Node that mixes leaf and intermediate shape: real
// (non-placeholder) Data alongside one or more Links. Such a node has
// no well-defined dispatch as either a leaf or a directory and is a
// protocol violation in the strict reading of dag-pb.
func (n Node) Validate() error {
	if n.IsTree() && len(n.Data) > 0 && !bytes.Equal(n.Data, directoryPlaceholder) {
		return fault.ErrMixedNode
	}
	return nil
}

// HashOf - the content address of a Node: the Hash of its encoded form
func HashOf(n Node) Hash {
	return Sum(EncodeNode(n))
}

// EncodeNode - serialise a Node to its dag-pb wire representation
func EncodeNode(n Node) []byte {
	buffer := make([]byte, 0, len(n.Data)+32*len(n.Links))
	if len(n.Data) > 0 {
		buffer = appendBytesField(buffer, fieldData, n.Data)
	}
	for _, link := range n.Links {
		buffer = appendBytesField(buffer, fieldLink, encodeLink(link))
	}
	return buffer
}

func encodeLink(link Link) []byte {
	raw, err := DecodeHash(link.Hash)
	if nil != err {
		// an unparsable Hash here is a programming error upstream; encode
		// the printable form verbatim rather than panic
		raw = []byte(link.Hash)
	}
	buffer := make([]byte, 0, len(raw)+len(link.Name)+16)
	buffer = appendBytesField(buffer, fieldLinkHash, raw)
	if "" != link.Name {
		buffer = appendStringField(buffer, fieldLinkName, link.Name)
	}
	buffer = appendVarintField(buffer, fieldLinkTsize, link.Size)
	return buffer
}

// DecodeNode - parse a dag-pb wire representation into a Node
func DecodeNode(buffer []byte) (Node, error) {
	fields, err := decodeFields(buffer)
	if nil != err {
		return Node{}, err
	}

	node := Node{}
	for _, f := range fields {
		switch f.number {
		case fieldData:
			node.Data = f.bytes
		case fieldLink:
			link, err := decodeLink(f.bytes)
			if nil != err {
				return Node{}, err
			}
			node.Links = append(node.Links, link)
		default:
			return Node{}, fault.ErrInvalidWireType
		}
	}
	if err := node.Validate(); nil != err {
		return Node{}, err
	}
	return node, nil
}

func decodeLink(buffer []byte) (Link, error) {
	fields, err := decodeFields(buffer)
	if nil != err {
		return Link{}, err
	}

	link := Link{}
	haveHash := false
	for _, f := range fields {
		switch f.number {
		case fieldLinkHash:
			link.Hash = Hash(base58.Encode(f.bytes))
			haveHash = true
		case fieldLinkName:
			link.Name = string(f.bytes)
		case fieldLinkTsize:
			link.Size = f.varint
		default:
			return Link{}, fault.ErrInvalidWireType
		}
	}
	if !haveHash {
		return Link{}, fault.ErrInvalidDataProof
	}
	return link, nil
}
