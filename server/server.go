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

package server

import (
	"context"
	"sync"

	"github.com/CeresDB/ceresids/pkg/log"
	"github.com/CeresDB/ceresids/server/config"
	"github.com/CeresDB/ceresids/server/etcdutil"
	"github.com/CeresDB/ceresids/server/limiter"
	"github.com/CeresDB/ceresids/server/producer"
	"github.com/CeresDB/ceresids/server/status"
	"github.com/CeresDB/ceresids/server/storage"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/server/v3/embed"
	"go.uber.org/zap"
)

type Server struct {
	isClosed bool
	status   *status.ServerStatus

	cfg *config.Config

	etcdCfg *embed.Config
	etcdSrv *embed.Etcd
	// etcd client
	etcdCli *clientv3.Client

	storage     storage.Storage
	flowLimiter *limiter.FlowLimiter
	manager     *producer.Manager
	inspector   *producer.Inspector

	// bg jobs
	bgJobWg     *sync.WaitGroup
	bgJobCancel func()
}

// CreateServer creates the server instance without starting any services or background jobs.
func CreateServer(cfg *config.Config) (*Server, error) {
	etcdCfg, err := cfg.GenEtcdConfig()
	if err != nil {
		return nil, err
	}

	srv := &Server{
		isClosed:    false,
		status:      status.NewServerStatus(),
		cfg:         cfg,
		etcdCfg:     etcdCfg,
		etcdSrv:     nil,
		etcdCli:     nil,
		storage:     nil,
		flowLimiter: limiter.NewFlowLimiter(cfg.FlowLimiter),
		manager:     nil,
		inspector:   nil,
		bgJobWg:     &sync.WaitGroup{},
		bgJobCancel: nil,
	}
	return srv, nil
}

// Run runs the services and background jobs.
func (srv *Server) Run(ctx context.Context) error {
	if err := srv.startEtcd(ctx); err != nil {
		srv.status.Set(status.Terminated)
		return err
	}

	if err := srv.startServer(ctx); err != nil {
		srv.status.Set(status.Terminated)
		return err
	}

	srv.startBgJobs(ctx)
	srv.status.Set(status.StatusRunning)
	return nil
}

func (srv *Server) Close() {
	if srv.isClosed {
		return
	}

	srv.status.Set(status.Terminated)
	srv.stopBgJobs()

	if srv.etcdCli != nil {
		if err := srv.etcdCli.Close(); err != nil {
			log.Error("fail to close client", zap.Error(err))
		}
	}

	if srv.etcdSrv != nil {
		srv.etcdSrv.Close()
	}

	srv.isClosed = true
}

func (srv *Server) IsClosed() bool {
	return srv.isClosed
}

func (srv *Server) startEtcd(ctx context.Context) error {
	etcdSrv, err := embed.StartEtcd(srv.etcdCfg)
	if err != nil {
		return ErrStartEtcd.WithCause(err)
	}
	srv.etcdSrv = etcdSrv

	newCtx, cancel := context.WithTimeout(ctx, srv.cfg.EtcdStartTimeout())
	defer cancel()

	select {
	case <-etcdSrv.Server.ReadyNotify():
	case <-newCtx.Done():
		return ErrStartEtcdTimeout.WithCausef("timeout is:%v", srv.cfg.EtcdStartTimeout())
	}

	endpoints := []string{srv.etcdCfg.AdvertiseClientUrls[0].String()}
	client, err := etcdutil.NewClient(endpoints, srv.cfg.EtcdCallTimeout())
	if err != nil {
		return ErrCreateEtcdClient.WithCause(err)
	}
	srv.etcdCli = client

	log.Info("embedded etcd is ready", zap.Strings("endpoints", endpoints))
	return nil
}

// startServer builds the components serving the produce requests.
func (srv *Server) startServer(ctx context.Context) error {
	srv.storage = storage.NewStorageWithEtcdBackend(srv.etcdCli, srv.cfg.StorageRootPath, storage.Options{
		MaxScanLimit:   srv.cfg.EtcdMaxScanLimit,
		RequestTimeout: srv.cfg.EtcdCallTimeout(),
	})

	logger := log.GetLogger()
	srv.manager = producer.NewManager(logger.With(zap.String("component", "manager")), srv.storage,
		producer.DefaultAllocator, srv.flowLimiter, producer.ManagerOptions{
			MaxRetry: srv.cfg.ProduceMaxRetry,
			Clock:    nil,
		})
	srv.inspector = producer.NewInspector(logger.With(zap.String("component", "inspector")), srv.storage, srv.cfg.InspectInterval())

	if err := srv.inspector.Start(ctx); err != nil {
		return ErrStartServer.WithCause(err)
	}
	return nil
}

func (srv *Server) startBgJobs(ctx context.Context) {
	var bgJobCtx context.Context
	bgJobCtx, srv.bgJobCancel = context.WithCancel(ctx)

	srv.bgJobWg.Add(1)
	go srv.stopInspectorOnDone(bgJobCtx)
}

func (srv *Server) stopBgJobs() {
	if srv.bgJobCancel != nil {
		srv.bgJobCancel()
	}
	srv.bgJobWg.Wait()
}

func (srv *Server) stopInspectorOnDone(ctx context.Context) {
	defer srv.bgJobWg.Done()

	<-ctx.Done()
	if err := srv.inspector.Stop(ctx); err != nil {
		log.Warn("fail to stop inspector", zap.Error(err))
	}
}

// Manager serves the iders and the produce requests of this server.
func (srv *Server) Manager() *producer.Manager {
	return srv.manager
}

func (srv *Server) GetFlowLimiter() (*limiter.FlowLimiter, error) {
	if srv.flowLimiter == nil {
		return nil, ErrFlowLimiterNotFound
	}
	return srv.flowLimiter, nil
}

// UpdateFlowLimiter applies the limiter config to the produce requests served from now on.
func (srv *Server) UpdateFlowLimiter(cfg config.LimiterConfig) error {
	flowLimiter, err := srv.GetFlowLimiter()
	if err != nil {
		return err
	}
	if err := flowLimiter.UpdateLimiter(cfg); err != nil {
		return err
	}
	log.Info("flow limiter updated", zap.Int("limit", cfg.Limit), zap.Int("burst", cfg.Burst), zap.Bool("enable", cfg.Enable))
	return nil
}

func (srv *Server) Status() status.Status {
	return srv.status.Get()
}
