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

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/CeresDB/ceresids/pkg/log"
	"github.com/caarlos0/env/v6"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"go.etcd.io/etcd/server/v3/embed"
	"go.uber.org/zap"
)

const (
	defaultEtcdStartTimeoutMs int64 = 10 * 1000
	defaultCallTimeoutMs            = 5 * 1000
	defaultEtcdMaxScanLimit         = 100

	defaultNodeNamePrefix          = "ceresids"
	defaultRootPath                = "/ceresids"
	defaultClientUrls              = "http://127.0.0.1:2379"
	defaultPeerUrls                = "http://127.0.0.1:2380"
	defaultInitialClusterState     = embed.ClusterStateFlagNew
	defaultInitialClusterToken     = "ceresids-cluster" //#nosec G101
	defaultCompactionMode          = "periodic"
	defaultAutoCompactionRetention = "1h"

	defaultTickIntervalMs    int64 = 500
	defaultElectionTimeoutMs       = 3000
	defaultQuotaBackendBytes       = 8 * 1024 * 1024 * 1024 // 8GB

	defaultMaxRequestBytes uint = 2 * 1024 * 1024 // 2MB

	defaultProduceMaxRetry   = 3
	defaultInspectIntervalMs = 30 * 1000

	defaultEnableLimiter bool = true
	defaultLimit              = 10 * 1000
	defaultBurst              = 1000

	envPrefix = "CERESIDS_"
)

type LimiterConfig struct {
	// Limit is the number of produce requests allowed per second.
	Limit int `toml:"limit" env:"LIMIT" json:"limit"`
	// Burst is the max number of produce requests allowed at once.
	Burst int `toml:"burst" env:"BURST" json:"burst"`
	// Enable is used to control the switch of the limiter.
	Enable bool `toml:"enable" env:"ENABLE" json:"enable"`
}

type Config struct {
	Log log.Config `toml:"log" envPrefix:"LOG_" json:"log"`

	EtcdStartTimeoutMs int64 `toml:"etcd-start-timeout-ms" env:"ETCD_START_TIMEOUT_MS" json:"etcd-start-timeout-ms"`
	EtcdCallTimeoutMs  int64 `toml:"etcd-call-timeout-ms" env:"ETCD_CALL_TIMEOUT_MS" json:"etcd-call-timeout-ms"`
	EtcdMaxScanLimit   int   `toml:"etcd-max-scan-limit" env:"ETCD_MAX_SCAN_LIMIT" json:"etcd-max-scan-limit"`

	// StorageRootPath is the etcd key prefix all the records are stored under.
	StorageRootPath string `toml:"storage-root-path" env:"STORAGE_ROOT_PATH" json:"storage-root-path"`

	// ProduceMaxRetry is the max rounds of one produce request when the producer is modified concurrently.
	ProduceMaxRetry   int           `toml:"produce-max-retry" env:"PRODUCE_MAX_RETRY" json:"produce-max-retry"`
	InspectIntervalMs int64         `toml:"inspect-interval-ms" env:"INSPECT_INTERVAL_MS" json:"inspect-interval-ms"`
	FlowLimiter       LimiterConfig `toml:"flow-limiter" envPrefix:"FLOW_LIMITER_" json:"flow-limiter"`

	NodeName            string `toml:"node-name" env:"NODE_NAME" json:"node-name"`
	DataDir             string `toml:"data-dir" env:"DATA_DIR" json:"data-dir"`
	WalDir              string `toml:"wal-dir" env:"WAL_DIR" json:"wal-dir"`
	InitialCluster      string `toml:"initial-cluster" env:"INITIAL_CLUSTER" json:"initial-cluster"`
	InitialClusterState string `toml:"initial-cluster-state" env:"INITIAL_CLUSTER_STATE" json:"initial-cluster-state"`
	InitialClusterToken string `toml:"initial-cluster-token" env:"INITIAL_CLUSTER_TOKEN" json:"initial-cluster-token"`
	// TickInterval is the interval for etcd Raft tick.
	TickIntervalMs    int64 `toml:"tick-interval-ms" env:"TICK_INTERVAL_MS" json:"tick-interval-ms"`
	ElectionTimeoutMs int64 `toml:"election-timeout-ms" env:"ELECTION_TIMEOUT_MS" json:"election-timeout-ms"`
	// QuotaBackendBytes Raise alarms when backend size exceeds the given quota. 0 means use the default quota.
	// the default size is 2GB, the maximum is 8GB.
	QuotaBackendBytes int64 `toml:"quota-backend-bytes" env:"QUOTA_BACKEND_BYTES" json:"quota-backend-bytes"`
	// AutoCompactionMode is either 'periodic' or 'revision'. The default value is 'periodic'.
	AutoCompactionMode string `toml:"auto-compaction-mode" env:"AUTO_COMPACTION_MODE" json:"auto-compaction-mode"`
	// AutoCompactionRetention is either duration string with time unit
	// (e.g. '5m' for 5-minute), or revision unit (e.g. '5000').
	// If no time unit is provided and compaction mode is 'periodic',
	// the unit defaults to hour. For example, '5' translates into 5-hour.
	AutoCompactionRetention string `toml:"auto-compaction-retention" env:"AUTO_COMPACTION_RETENTION" json:"auto-compaction-retention-v2"`
	MaxRequestBytes         uint   `toml:"max-request-bytes" env:"MAX_REQUEST_BYTES" json:"max-request-bytes"`

	ClientUrls          string `toml:"client-urls" env:"CLIENT_URLS" json:"client-urls"`
	PeerUrls            string `toml:"peer-urls" env:"PEER_URLS" json:"peer-urls"`
	AdvertiseClientUrls string `toml:"advertise-client-urls" env:"ADVERTISE_CLIENT_URLS" json:"advertise-client-urls"`
	AdvertisePeerUrls   string `toml:"advertise-peer-urls" env:"ADVERTISE_PEER_URLS" json:"advertise-peer-urls"`
}

func (c *Config) EtcdStartTimeout() time.Duration {
	return time.Duration(c.EtcdStartTimeoutMs) * time.Millisecond
}

func (c *Config) EtcdCallTimeout() time.Duration {
	return time.Duration(c.EtcdCallTimeoutMs) * time.Millisecond
}

func (c *Config) InspectInterval() time.Duration {
	return time.Duration(c.InspectIntervalMs) * time.Millisecond
}

// ValidateAndAdjust validates the config fields and adjusts some fields which should be adjusted.
// Return error if any field is invalid.
func (c *Config) ValidateAndAdjust() error {
	if c.AdvertisePeerUrls == "" {
		c.AdvertisePeerUrls = c.PeerUrls
	}
	if c.AdvertiseClientUrls == "" {
		c.AdvertiseClientUrls = c.ClientUrls
	}
	if c.InitialCluster == "" {
		c.InitialCluster = fmt.Sprintf("%s=%s", c.NodeName, c.AdvertisePeerUrls)
	}
	if !strings.HasPrefix(c.StorageRootPath, "/") {
		return ErrInvalidConfig.WithCausef("storage root path must be absolute, path:%s", c.StorageRootPath)
	}
	if c.EtcdStartTimeoutMs <= 0 || c.EtcdCallTimeoutMs <= 0 {
		return ErrInvalidConfig.WithCausef("etcd timeouts must be positive, start:%d, call:%d", c.EtcdStartTimeoutMs, c.EtcdCallTimeoutMs)
	}
	if c.ProduceMaxRetry <= 0 {
		return ErrInvalidConfig.WithCausef("produce max retry must be positive, retry:%d", c.ProduceMaxRetry)
	}
	if c.FlowLimiter.Enable && (c.FlowLimiter.Limit <= 0 || c.FlowLimiter.Burst <= 0) {
		return ErrInvalidLimiterConfig.WithCausef("limit:%d, burst:%d", c.FlowLimiter.Limit, c.FlowLimiter.Burst)
	}
	return nil
}

func (c *Config) GenEtcdConfig() (*embed.Config, error) {
	cfg := embed.NewConfig()

	cfg.Name = c.NodeName
	cfg.Dir = c.DataDir
	cfg.WalDir = c.WalDir
	cfg.InitialCluster = c.InitialCluster
	cfg.ClusterState = c.InitialClusterState
	cfg.InitialClusterToken = c.InitialClusterToken
	cfg.EnablePprof = true
	cfg.TickMs = uint(c.TickIntervalMs)
	cfg.ElectionMs = uint(c.ElectionTimeoutMs)
	cfg.AutoCompactionMode = c.AutoCompactionMode
	cfg.AutoCompactionRetention = c.AutoCompactionRetention
	cfg.QuotaBackendBytes = c.QuotaBackendBytes
	cfg.MaxRequestBytes = c.MaxRequestBytes
	cfg.Logger = "zap"
	cfg.LogLevel = c.Log.Level

	var err error
	cfg.ListenPeerUrls, err = parseUrls(c.PeerUrls)
	if err != nil {
		return nil, err
	}

	cfg.AdvertisePeerUrls, err = parseUrls(c.AdvertisePeerUrls)
	if err != nil {
		return nil, err
	}

	cfg.ListenClientUrls, err = parseUrls(c.ClientUrls)
	if err != nil {
		return nil, err
	}

	cfg.AdvertiseClientUrls, err = parseUrls(c.AdvertiseClientUrls)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parser builds the config from the flags, the config file and the environment, the later ones take precedence.
type Parser struct {
	flagSet        *pflag.FlagSet
	cfg            *Config
	configFilePath string
}

func (p *Parser) Parse(arguments []string) (*Config, error) {
	if err := p.flagSet.Parse(arguments); err != nil {
		if err == pflag.ErrHelp {
			return nil, ErrHelpRequested.WithCause(err)
		}
		return nil, ErrInvalidCommandArgs.WithCausef("original arguments:%v, parse err:%v", arguments, err)
	}

	if err := p.parseConfigFromToml(); err != nil {
		return nil, err
	}
	if err := p.parseConfigFromEnv(); err != nil {
		return nil, err
	}

	return p.cfg, nil
}

func (p *Parser) parseConfigFromToml() error {
	if p.configFilePath == "" {
		log.Info("no config file specified, skip parsing from config file")
		return nil
	}

	content, err := os.ReadFile(p.configFilePath)
	if err != nil {
		return ErrInvalidConfigFile.WithCausef("read file %s, err:%v", p.configFilePath, err)
	}
	if err := toml.Unmarshal(content, p.cfg); err != nil {
		return ErrInvalidConfigFile.WithCausef("parse file %s, err:%v", p.configFilePath, err)
	}

	log.Info("succeed in parsing config from file", zap.String("file", p.configFilePath))
	return nil
}

func (p *Parser) parseConfigFromEnv() error {
	if err := env.Parse(p.cfg, env.Options{Prefix: envPrefix}); err != nil {
		return ErrInvalidConfig.WithCausef("parse env with prefix %s, err:%v", envPrefix, err)
	}
	return nil
}

func makeDefaultNodeName() (string, error) {
	host, err := os.Hostname()
	if err != nil {
		return "", ErrRetrieveHostname.WithCause(err)
	}

	return fmt.Sprintf("%s-%s", defaultNodeNamePrefix, host), nil
}

func MakeConfigParser() (*Parser, error) {
	defaultNodeName, err := makeDefaultNodeName()
	if err != nil {
		return nil, err
	}
	defaultDataDir := fmt.Sprintf("/tmp/ceresids/%s/data", defaultNodeName)

	fs := pflag.NewFlagSet("ceresids", pflag.ContinueOnError)
	cfg := &Config{
		Log: log.Config{
			Level: log.DefaultLogLevel,
			File:  log.DefaultLogFile,
			Rotate: log.RotateConfig{
				Enable:     false,
				MaxSizeMB:  512,
				MaxAgeDays: 7,
				MaxBackups: 10,
				Compress:   false,
			},
		},
	}
	builder := &Parser{
		flagSet: fs,
		cfg:     cfg,
	}

	fs.StringVar(&builder.configFilePath, "config", "", "config file path")

	fs.StringVar(&cfg.Log.Level, "log-level", log.DefaultLogLevel, "log level of the server")
	fs.StringVar(&cfg.Log.File, "log-file", log.DefaultLogFile, "log file of the server")

	fs.Int64Var(&cfg.EtcdStartTimeoutMs, "etcd-start-timeout-ms", defaultEtcdStartTimeoutMs, "max duration of starting the embedded etcd")
	fs.Int64Var(&cfg.EtcdCallTimeoutMs, "etcd-call-timeout-ms", defaultCallTimeoutMs, "max duration of a request to etcd")
	fs.IntVar(&cfg.EtcdMaxScanLimit, "etcd-max-scan-limit", defaultEtcdMaxScanLimit, "max keys fetched by one etcd scan request")
	fs.StringVar(&cfg.StorageRootPath, "storage-root-path", defaultRootPath, "etcd key prefix of the records")

	fs.IntVar(&cfg.ProduceMaxRetry, "produce-max-retry", defaultProduceMaxRetry, "max rounds of a produce request on concurrent modification")
	fs.Int64Var(&cfg.InspectIntervalMs, "inspect-interval-ms", defaultInspectIntervalMs, "interval of the producer inspection")
	fs.BoolVar(&cfg.FlowLimiter.Enable, "flow-limiter-enable", defaultEnableLimiter, "whether to limit the produce requests")
	fs.IntVar(&cfg.FlowLimiter.Limit, "flow-limiter-limit", defaultLimit, "produce requests allowed per second")
	fs.IntVar(&cfg.FlowLimiter.Burst, "flow-limiter-burst", defaultBurst, "max produce requests allowed at once")

	fs.StringVar(&cfg.NodeName, "node-name", defaultNodeName, "member name of this node in the cluster")
	fs.StringVar(&cfg.DataDir, "data-dir", defaultDataDir, "data directory for the etcd server")
	fs.StringVar(&cfg.WalDir, "wal-dir", "", "wal directory for the etcd server")
	fs.StringVar(&cfg.InitialCluster, "initial-cluster", "", "members in the cluster, default '${node-name}=${advertise-peer-urls}'")
	fs.StringVar(&cfg.InitialClusterState, "initial-cluster-state", defaultInitialClusterState, "state of the cluster to join")
	fs.StringVar(&cfg.InitialClusterToken, "initial-cluster-token", defaultInitialClusterToken, "token of the cluster")

	fs.Int64Var(&cfg.TickIntervalMs, "tick-interval-ms", defaultTickIntervalMs, "interval of the etcd raft tick")
	fs.Int64Var(&cfg.ElectionTimeoutMs, "election-timeout-ms", defaultElectionTimeoutMs, "timeout of the etcd raft election")
	fs.Int64Var(&cfg.QuotaBackendBytes, "quota-backend-bytes", defaultQuotaBackendBytes, "alarming threshold of the etcd backend size")
	fs.StringVar(&cfg.AutoCompactionMode, "auto-compaction-mode", defaultCompactionMode, "'periodic' or 'revision'")
	fs.StringVar(&cfg.AutoCompactionRetention, "auto-compaction-retention", defaultAutoCompactionRetention, "retention of the etcd history")
	fs.UintVar(&cfg.MaxRequestBytes, "max-request-bytes", defaultMaxRequestBytes, "max bytes of an etcd request")

	fs.StringVar(&cfg.ClientUrls, "client-urls", defaultClientUrls, "url for client traffic")
	fs.StringVar(&cfg.AdvertiseClientUrls, "advertise-client-urls", "", "advertise url for client traffic (default '${client-urls}')")
	fs.StringVar(&cfg.PeerUrls, "peer-urls", defaultPeerUrls, "url for peer traffic")
	fs.StringVar(&cfg.AdvertisePeerUrls, "advertise-peer-urls", "", "advertise url for peer traffic (default '${peer-urls}')")

	return builder, nil
}
