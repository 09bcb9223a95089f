// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package vm supplies a minimal reference block.Runner/block.Reader so
// the block pipeline is exercisable end-to-end without a production
// interpreter wired in: "spawn" allocates a counted object under
// /objects/<n>, "set"/"get" read and write a flat key/value space under
// /kv/<key>. Production deployments supply their own Runner/Reader
// (spec.md §1 — the VM boundary is explicitly out of core scope).
package vm

import (
	"fmt"
	"strconv"

	"github.com/hayesgm/daisy/block"
	"github.com/hayesgm/daisy/fault"
	"github.com/hayesgm/daisy/merkledag"
	"github.com/hayesgm/daisy/storage"
)

const (
	// StatusOK - a transaction executed successfully
	StatusOK uint32 = 0
	// StatusUnknownFunction - the invocation named a function this
	// Runner/Reader does not implement
	StatusUnknownFunction uint32 = 1
	// StatusBadArgs - the invocation's argument count didn't match what
	// the function expects
	StatusBadArgs uint32 = 2
)

// VM - the reference Runner/Reader
type VM struct{}

// New - build the reference VM
func New() VM {
	return VM{}
}

// Run - dispatch spawn/set to their handlers; any other function name
// yields a failure receipt (status != 0), not a Go error — an unknown
// function is a normal transaction outcome, not a protocol fault
func (VM) Run(s *storage.Storage, inv block.Invocation, initialStorage merkledag.Hash, blockNumber uint64, signerOrOwner []byte) (block.RunResult, error) {
	switch inv.Function {
	case "spawn":
		return runSpawn(s, inv, initialStorage)
	case "set":
		return runSet(s, inv, initialStorage)
	default:
		return block.RunResult{Status: StatusUnknownFunction, FinalStorage: initialStorage}, nil
	}
}

// Read - "get" is the only read function this reference VM implements
func (VM) Read(s *storage.Storage, function string, args []string, root merkledag.Hash) (string, error) {
	if "get" != function {
		return "", fault.ProtocolError("unknown read function: " + function)
	}
	if 1 != len(args) {
		return "", fault.ProtocolError("get takes exactly one argument")
	}
	value, err := s.Get(root, kvPath(args[0]))
	if nil != err {
		return "", err
	}
	return string(value), nil
}

func runSpawn(s *storage.Storage, inv block.Invocation, initialStorage merkledag.Hash) (block.RunResult, error) {
	if 1 != len(inv.Args) {
		return block.RunResult{Status: StatusBadArgs, FinalStorage: initialStorage}, nil
	}

	var id uint64
	root, err := s.Update(initialStorage, "vm/next_id", func(current []byte) []byte {
		n, _ := strconv.ParseUint(string(current), 10, 64)
		id = n
		return []byte(strconv.FormatUint(n+1, 10))
	}, storage.UpdateOptions{Default: []byte("0"), ApplyFOnDefault: true})
	if nil != err {
		return block.RunResult{}, err
	}

	objectPath := fmt.Sprintf("objects/%d", id)
	root, err = s.Put(root, objectPath, []byte(inv.Args[0]))
	if nil != err {
		return block.RunResult{}, err
	}

	return block.RunResult{
		Status:       StatusOK,
		FinalStorage: root,
		Logs:         []string{fmt.Sprintf("spawned:%d", id)},
	}, nil
}

func runSet(s *storage.Storage, inv block.Invocation, initialStorage merkledag.Hash) (block.RunResult, error) {
	if 2 != len(inv.Args) {
		return block.RunResult{Status: StatusBadArgs, FinalStorage: initialStorage}, nil
	}
	root, err := s.Put(initialStorage, kvPath(inv.Args[0]), []byte(inv.Args[1]))
	if nil != err {
		return block.RunResult{}, err
	}
	return block.RunResult{
		Status:       StatusOK,
		FinalStorage: root,
		Logs:         []string{"set:" + inv.Args[0]},
	}, nil
}

func kvPath(key string) string {
	return "kv/" + key
}
