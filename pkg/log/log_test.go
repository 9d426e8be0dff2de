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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitGlobalLogger(t *testing.T) {
	re := require.New(t)

	logger, err := InitGlobalLogger(&Config{Level: "debug", File: DefaultLogFile})
	re.NoError(err)
	re.Equal(logger, GetLogger())
	re.Equal(zapcore.DebugLevel, GetLevel())

	re.NoError(SetLevel("warn"))
	re.Equal(zapcore.WarnLevel, GetLevel())
	re.Error(SetLevel("verbose"))

	_, err = InitGlobalLogger(&Config{Level: "unknown"})
	re.Error(err)
}

func TestRotatedFileOutput(t *testing.T) {
	re := require.New(t)
	defer func() {
		_, err := InitGlobalLogger(&Config{Level: DefaultLogLevel, File: DefaultLogFile})
		re.NoError(err)
	}()

	file := filepath.Join(t.TempDir(), "ceresids.log")
	_, err := InitGlobalLogger(&Config{
		Level: DefaultLogLevel,
		File:  file,
		Rotate: RotateConfig{
			Enable:     true,
			MaxSizeMB:  1,
			MaxBackups: 1,
		},
	})
	re.NoError(err)
	re.Equal([]string{RotationSchema + "://" + file}, GetLoggerConfig().OutputPaths)

	Info("rotated output works")
	re.NoError(GetLogger().Sync())

	content, err := os.ReadFile(file)
	re.NoError(err)
	re.Contains(string(content), "rotated output works")
}
