// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration loads the option set of spec.md §6 with
// spf13/viper (flag > env > config file > default precedence, the
// dusk-network pkg/config/loader.go pattern) into one immutable
// struct the rest of daisyd is wired from.
package configuration

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hayesgm/daisy/fault"
)

// InitialBlockKind - the three forms initial_block_reference can take
type InitialBlockKind int

// the three forms
const (
	InitialBlockGenesis InitialBlockKind = iota
	InitialBlockResolve
	InitialBlockHash
)

// InitialBlockReference - resolved from a scalar or "block_hash:<hash>" string
type InitialBlockReference struct {
	Kind InitialBlockKind
	Hash string
}

// Configuration - the fully resolved, immutable option set
type Configuration struct {
	RunAPI      bool
	RunLeader   bool
	RunFollower bool

	APIPort   int
	APIScheme string

	Runner     string
	Reader     string
	Serializer string

	IPFSKey string

	InitialBlockReference InitialBlockReference

	MiningIntervalMilliseconds  int
	PullingIntervalMilliseconds int

	DagAPIURL   string
	NameAPIURL  string
	StorageRoot string
}

// default option values, spec.md §6
const (
	defaultAPIPort                     = 2335
	defaultAPIScheme                   = "http"
	defaultMiningIntervalMilliseconds  = 10000
	defaultPullingIntervalMilliseconds = 10000
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("run_api", false)
	v.SetDefault("run_leader", false)
	v.SetDefault("run_follower", false)
	v.SetDefault("api_port", defaultAPIPort)
	v.SetDefault("api_scheme", defaultAPIScheme)
	v.SetDefault("runner", "vm")
	v.SetDefault("reader", "vm")
	v.SetDefault("serializer", "json_tree")
	v.SetDefault("ipfs_key", "")
	v.SetDefault("initial_block_reference", "genesis")
	v.SetDefault("mining_interval_ms", defaultMiningIntervalMilliseconds)
	v.SetDefault("pulling_interval_ms", defaultPullingIntervalMilliseconds)
	v.SetDefault("dag_api_url", "http://127.0.0.1:5001/api/v0")
	v.SetDefault("name_api_url", "http://127.0.0.1:5001/api/v0")
	v.SetDefault("storage_root", "")
}

// Load - read flags, environment, an optional config file named by
// configFile (empty to skip), and defaults, in that precedence order,
// and validate the result against spec.md §6's invariants
func Load(flags *pflag.FlagSet, configFile string) (Configuration, error) {
	v := viper.New()
	setDefaults(v)

	if nil != flags {
		if err := v.BindPFlags(flags); nil != err {
			return Configuration{}, fault.ProcessError(fmt.Sprintf("bind flags: %s", err))
		}
	}

	v.SetEnvPrefix("daisy")
	v.AutomaticEnv()

	if "" != configFile {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); nil != err {
			return Configuration{}, fault.ProcessError(fmt.Sprintf("read config: %s", err))
		}
	}

	ref, err := parseInitialBlockReference(v.GetString("initial_block_reference"))
	if nil != err {
		return Configuration{}, err
	}

	cfg := Configuration{
		RunAPI:                      v.GetBool("run_api"),
		RunLeader:                   v.GetBool("run_leader"),
		RunFollower:                 v.GetBool("run_follower"),
		APIPort:                     v.GetInt("api_port"),
		APIScheme:                   v.GetString("api_scheme"),
		Runner:                      v.GetString("runner"),
		Reader:                      v.GetString("reader"),
		Serializer:                  v.GetString("serializer"),
		IPFSKey:                     v.GetString("ipfs_key"),
		InitialBlockReference:       ref,
		MiningIntervalMilliseconds:  v.GetInt("mining_interval_ms"),
		PullingIntervalMilliseconds: v.GetInt("pulling_interval_ms"),
		DagAPIURL:                   v.GetString("dag_api_url"),
		NameAPIURL:                  v.GetString("name_api_url"),
		StorageRoot:                 v.GetString("storage_root"),
	}

	return cfg, validate(cfg)
}

func parseInitialBlockReference(raw string) (InitialBlockReference, error) {
	switch raw {
	case "", "genesis":
		return InitialBlockReference{Kind: InitialBlockGenesis}, nil
	case "resolve":
		return InitialBlockReference{Kind: InitialBlockResolve}, nil
	}
	const prefix = "block_hash:"
	if len(raw) > len(prefix) && prefix == raw[:len(prefix)] {
		return InitialBlockReference{Kind: InitialBlockHash, Hash: raw[len(prefix):]}, nil
	}
	return InitialBlockReference{}, fault.InvalidError("invalid initial_block_reference: " + raw)
}

func validate(cfg Configuration) error {
	if cfg.RunLeader && cfg.RunFollower {
		return fault.InvalidError("run_leader and run_follower are mutually exclusive")
	}
	if "http" != cfg.APIScheme && "https" != cfg.APIScheme {
		return fault.InvalidError("api_scheme must be http or https")
	}
	if 0 >= cfg.APIPort || cfg.APIPort > 65535 {
		return fault.InvalidError("api_port out of range")
	}
	if InitialBlockHash == cfg.InitialBlockReference.Kind && "" == cfg.InitialBlockReference.Hash {
		return fault.InvalidError("initial_block_reference block_hash must not be empty")
	}
	return nil
}
