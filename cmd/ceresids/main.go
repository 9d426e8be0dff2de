/*
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/CeresDB/ceresids/pkg/coderr"
	"github.com/CeresDB/ceresids/pkg/log"
	"github.com/CeresDB/ceresids/server"
	"github.com/CeresDB/ceresids/server/config"
	"go.uber.org/zap"
)

var (
	buildDate  string
	branchName string
	commitID   string
)

func buildVersion() string {
	return fmt.Sprintf("CeresIDs Server\nGit commit:%s\nGit branch:%s\nBuild date:%s", commitID, branchName, buildDate)
}

func panicf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	panic(msg)
}

// reloadFlowLimiter parses the command line params and the config file again, and applies the
// limiter config found there. Other changes take effect after a restart.
func reloadFlowLimiter(srv *server.Server) {
	cfgParser, err := config.MakeConfigParser()
	if err != nil {
		log.Error("fail to generate config builder", zap.Error(err))
		return
	}
	cfg, err := cfgParser.Parse(os.Args[1:])
	if err != nil {
		log.Error("fail to reload config", zap.Error(err))
		return
	}
	if err := cfg.ValidateAndAdjust(); err != nil {
		log.Error("invalid reloaded config", zap.Error(err))
		return
	}
	if err := srv.UpdateFlowLimiter(cfg.FlowLimiter); err != nil {
		log.Error("fail to update flow limiter", zap.Error(err))
	}
}

func main() {
	cfgParser, err := config.MakeConfigParser()
	if err != nil {
		panicf("fail to generate config builder, err:%v", err)
	}

	cfg, err := cfgParser.Parse(os.Args[1:])
	if coderr.Is(err, coderr.PrintHelpUsage) {
		return
	}
	if err != nil {
		panicf("fail to parse config from command line params, err:%v", err)
	}

	if err := cfg.ValidateAndAdjust(); err != nil {
		panicf("invalid config, err:%v", err)
	}

	logger, err := log.InitGlobalLogger(&cfg.Log)
	if err != nil {
		panicf("fail to init global logger, err:%v", err)
	}
	defer logger.Sync() //nolint:errcheck
	log.Info(buildVersion())
	log.Info("server start with config", zap.Any("config", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	srv, err := server.CreateServer(cfg)
	if err != nil {
		log.Error("fail to create server", zap.Error(err))
		return
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	var sig os.Signal
	go func() {
		for sig = range sc {
			if sig != syscall.SIGHUP {
				break
			}
			reloadFlowLimiter(srv)
		}
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		log.Error("fail to run server", zap.Error(err))
		srv.Close()
		return
	}

	<-ctx.Done()
	log.Info("got signal to exit", zap.Any("signal", sig))

	srv.Close()
}
