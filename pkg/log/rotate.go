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

package log

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotationSchema marks the output paths which are written through lumberjack.
const RotationSchema = "rotate"

var (
	rotateLock sync.Mutex
	// rotateCfg is read by the sink factory, which zap allows to register only once per schema.
	rotateCfg        RotateConfig
	rotateRegistered bool
)

type rotation struct {
	*lumberjack.Logger
}

// Sync implements zap.Sink. The remaining methods are implemented
// by the embedded *lumberjack.Logger.
func (rotation) Sync() error {
	return nil
}

func rotatedOutputs(paths []string, cfg RotateConfig) ([]string, error) {
	rotateLock.Lock()
	defer rotateLock.Unlock()

	rotateCfg = cfg
	if !rotateRegistered {
		err := zap.RegisterSink(RotationSchema, func(u *url.URL) (zap.Sink, error) {
			rotateLock.Lock()
			defer rotateLock.Unlock()
			return rotation{&lumberjack.Logger{
				Filename:   u.Path,
				MaxSize:    rotateCfg.MaxSizeMB,
				MaxAge:     rotateCfg.MaxAgeDays,
				MaxBackups: rotateCfg.MaxBackups,
				Compress:   rotateCfg.Compress,
			}}, nil
		})
		if err != nil {
			return nil, errors.WithMessage(err, "register rotation sink")
		}
		rotateRegistered = true
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.WithMessage(err, "get current directory")
	}

	results := make([]string, len(paths))
	for i, path := range paths {
		switch path {
		case "stderr", "stdout":
			results[i] = path
		default:
			if !filepath.IsAbs(path) {
				path = filepath.Join(wd, path)
			}
			results[i] = fmt.Sprintf("%s://%s", RotationSchema, path)
		}
	}
	return results, nil
}
