// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Daisy Authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"

	"github.com/hayesgm/daisy/background"
	"github.com/hayesgm/daisy/block"
	"github.com/hayesgm/daisy/configuration"
	"github.com/hayesgm/daisy/dagclient"
	"github.com/hayesgm/daisy/follower"
	"github.com/hayesgm/daisy/getoptions"
	"github.com/hayesgm/daisy/leader"
	"github.com/hayesgm/daisy/merkledag"
	"github.com/hayesgm/daisy/nameservice"
	"github.com/hayesgm/daisy/rpcfacade"
	"github.com/hayesgm/daisy/serializer"
	"github.com/hayesgm/daisy/storage"
	"github.com/hayesgm/daisy/tracker"
	"github.com/hayesgm/daisy/version"
	"github.com/hayesgm/daisy/vm"
)

var aliases = getoptions.AliasMap{
	"h": "help",
	"v": "verbose",
	"V": "version",
	"c": "config-file",
}

func main() {
	defer exitwithstatus.Handler()

	program, options, _ := getoptions.GetOS(aliases)

	if len(options["version"]) > 0 {
		fmt.Printf("%s: version %s\n", program, version.Version)
		return
	}
	if len(options["help"]) > 0 {
		fmt.Printf("usage: %s --config-file=<path> [--verbose] [--version]\n", program)
		return
	}

	configFile := ""
	if len(options["config-file"]) > 0 {
		configFile = options["config-file"][len(options["config-file"])-1]
	}

	cfg, err := configuration.Load(nil, configFile)
	if nil != err {
		exitwithstatus.Message("%s: configuration error: %s", program, err)
	}

	logLevel := "info"
	if len(options["verbose"]) > 0 {
		logLevel = "debug"
	}
	logConfig := logger.Configuration{
		Directory: ".",
		File:      program + ".log",
		Size:      1048576,
		Count:     10,
		Console:   0 == len(options["quiet"]),
		Levels: map[string]string{
			logger.DefaultTag: logLevel,
		},
	}
	if err := logger.Initialise(logConfig); nil != err {
		exitwithstatus.Message("%s: logger setup failed: %s", program, err)
	}
	defer logger.Finalise()

	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version.Version)

	daisyStorage, current, currentHash := setupStorageAndHead(log, program, cfg)

	ser := selectSerializer(log, program, cfg.Serializer)
	runner := selectRunner(log, program, cfg.Runner)
	reader := selectReader(log, program, cfg.Reader)

	mode := tracker.Follower
	if cfg.RunLeader {
		mode = tracker.Leader
	}

	if err := tracker.Initialise(tracker.Config{
		Storage:    daisyStorage,
		Serializer: ser,
		Runner:     runner,
		Reader:     reader,
		Mode:       mode,
	}, current, currentHash); nil != err {
		exitwithstatus.Message("%s: tracker initialise error: %s", program, err)
	}
	defer tracker.Finalise()

	if err := nameservice.Initialise(nameservice.Configuration{
		BaseURL: cfg.NameAPIURL,
		Key:     cfg.IPFSKey,
	}); nil != err {
		exitwithstatus.Message("%s: nameservice initialise error: %s", program, err)
	}
	defer nameservice.Finalise()

	processes := background.Processes{}
	if cfg.RunLeader {
		processes = append(processes, leader.New(cfg.MiningIntervalMilliseconds))
	}
	if cfg.RunFollower {
		processes = append(processes, follower.New(cfg.PullingIntervalMilliseconds, daisyStorage, ser))
	}
	handle := background.Start(processes, nil)
	defer handle.Stop()

	var apiServer *http.Server
	if cfg.RunAPI {
		apiServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.APIPort),
			Handler: rpcfacade.New(daisyStorage, ser, reader, runner),
		}
		go func() {
			log.Infof("api listening on %s://%s", cfg.APIScheme, apiServer.Addr)
			if err := apiServer.ListenAndServe(); nil != err && http.ErrServerClosed != err {
				log.Errorf("api server error: %s", err)
			}
		}()
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)

	if nil != apiServer {
		apiServer.Close()
	}
	log.Info("shutting down…")
}

func setupStorageAndHead(log *logger.L, program string, cfg configuration.Configuration) (*storage.Storage, block.Block, merkledag.Hash) {
	daisyStorage := storage.New(dagclient.New(cfg.DagAPIURL))
	ser := serializer.New()

	switch cfg.InitialBlockReference.Kind {
	case configuration.InitialBlockGenesis:
		genesis, err := block.Genesis(daisyStorage)
		if nil != err {
			exitwithstatus.Message("%s: genesis error: %s", program, err)
		}
		hash, err := block.Save(genesis, daisyStorage, ser)
		if nil != err {
			exitwithstatus.Message("%s: save genesis error: %s", program, err)
		}
		log.Infof("starting from genesis: %s", hash)
		return daisyStorage, genesis, hash

	case configuration.InitialBlockResolve:
		if err := nameservice.Initialise(nameservice.Configuration{BaseURL: cfg.NameAPIURL, Key: cfg.IPFSKey}); nil != err {
			exitwithstatus.Message("%s: nameservice initialise error: %s", program, err)
		}
		hash, err := nameservice.Resolve()
		if nil != err {
			exitwithstatus.Message("%s: resolve initial head error: %s", program, err)
		}
		if err := nameservice.Finalise(); nil != err {
			exitwithstatus.Message("%s: nameservice finalise error: %s", program, err)
		}
		current, err := block.Load(hash, daisyStorage, ser)
		if nil != err {
			exitwithstatus.Message("%s: load resolved head error: %s", program, err)
		}
		log.Infof("starting from resolved head: %s", hash)
		return daisyStorage, current, hash

	default:
		hash := merkledag.Hash(cfg.InitialBlockReference.Hash)
		current, err := block.Load(hash, daisyStorage, ser)
		if nil != err {
			exitwithstatus.Message("%s: load configured head error: %s", program, err)
		}
		log.Infof("starting from configured head: %s", hash)
		return daisyStorage, current, hash
	}
}

func selectSerializer(log *logger.L, program string, name string) block.Serializer {
	switch name {
	case "", "json_tree":
		return serializer.New()
	default:
		exitwithstatus.Message("%s: unknown serializer: %q", program, name)
		return nil
	}
}

func selectRunner(log *logger.L, program string, name string) block.Runner {
	switch name {
	case "", "vm":
		return vm.New()
	default:
		exitwithstatus.Message("%s: unknown runner: %q", program, name)
		return nil
	}
}

func selectReader(log *logger.L, program string, name string) block.Reader {
	switch name {
	case "", "vm":
		return vm.New()
	default:
		exitwithstatus.Message("%s: unknown reader: %q", program, name)
		return nil
	}
}
