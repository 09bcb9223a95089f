// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nameservice

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/hayesgm/daisy/fault"
	"github.com/hayesgm/daisy/merkledag"
)

// Configuration - the mutable-name endpoint and the key this node
// publishes under (spec.md §6 ipfs_key option)
type Configuration struct {
	BaseURL string
	Key     string
}

type nameserviceData struct {
	sync.RWMutex

	log *logger.L

	client *Client
	key    string

	initialised bool
}

var globalData nameserviceData

// Initialise - a single-writer guard around one mutable-name client,
// generalized from publish/setup.go's broadcast guard: one exclusive
// point of access to the mutable-name endpoint instead of a ZeroMQ
// broadcast socket.
func Initialise(configuration Configuration) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("nameservice")
	globalData.log.Info("starting…")

	globalData.client = New(configuration.BaseURL)
	globalData.key = configuration.Key

	globalData.initialised = true
	return nil
}

// Finalise - shut the nameservice guard down
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}
	globalData.log.Info("shutting down…")
	globalData.log.Flush()
	globalData.initialised = false
	return nil
}

// Publish - update the configured key to point at root
func Publish(root merkledag.Hash) error {
	globalData.Lock()
	defer globalData.Unlock()

	result, err := globalData.client.Publish(root, globalData.key)
	if nil != err {
		globalData.log.Warnf("publish failed: %s", err)
		return err
	}
	globalData.log.Debugf("published %s -> %s", result.Name, result.Value)
	return nil
}

// Resolve - look up the configured key's current target.
// fault.ErrNotFound means no publisher has ever published to this key.
func Resolve() (merkledag.Hash, error) {
	globalData.RLock()
	defer globalData.RUnlock()

	hash, err := globalData.client.Resolve(globalData.key, true)
	if nil != err {
		if !fault.IsErrNotFound(err) {
			globalData.log.Warnf("resolve failed: %s", err)
		}
		return "", err
	}
	return hash, nil
}
