// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package messagebus - a queuing system for decoupling actors: the
// leader/follower loops announce block transitions here
// instead of calling into the RPC façade or metrics directly.
package messagebus
