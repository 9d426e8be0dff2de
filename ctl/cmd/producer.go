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

package cmd

import (
	"github.com/CeresDB/ceresids/ctl/operation"
	"github.com/spf13/cobra"
)

var amount int64

var producerCmd = &cobra.Command{
	Use:     "producer <id-code>",
	Aliases: []string{"p"},
	Short:   "Show the producers of an ider",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return operation.ProducersList(cmd.OutOrStdout(), args[0])
	},
}

var produceCmd = &cobra.Command{
	Use:   "produce <id-code>",
	Short: "Issue ids of an ider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return operation.Produce(cmd.OutOrStdout(), args[0], amount)
	},
}

func init() {
	produceCmd.Flags().Int64VarP(&amount, "amount", "n", 1, "number of ids to issue")
	rootCmd.AddCommand(producerCmd, produceCmd)
}
