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

var createIderArgs operation.CreateIderArgs

var iderCmd = &cobra.Command{
	Use:     "ider",
	Aliases: []string{"i"},
	Short:   "Manage the iders",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var iderCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an ider with its producers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return operation.IderCreate(cmd.OutOrStdout(), createIderArgs)
	},
}

var iderListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all the iders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return operation.IdersList(cmd.OutOrStdout())
	},
}

var iderGetCmd = &cobra.Command{
	Use:   "get <id-code>",
	Short: "Show an ider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return operation.IderGet(cmd.OutOrStdout(), args[0])
	},
}

var iderDeleteCmd = &cobra.Command{
	Use:   "delete <id-code>",
	Short: "Delete an ider with its producers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return operation.IderDelete(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	flags := iderCreateCmd.Flags()
	flags.StringVar(&createIderArgs.IDCode, "code", "", "id code of the ider")
	flags.StringVar(&createIderArgs.IDName, "name", "", "descriptive name of the ider")
	flags.StringVar(&createIderArgs.PeriodType, "period", "NONE", "period type: NONE, HOUR, DAY, MONTH or YEAR")
	flags.Int64Var(&createIderArgs.Factor, "factor", 1, "number of producers, ids of one producer are factor apart")
	flags.Int64Var(&createIderArgs.MaxID, "max-id", 0, "max id of a period, 0 means unbounded")
	flags.Int64Var(&createIderArgs.MaxAmount, "max-amount", 0, "max ids of one request, 0 means no limit")
	_ = iderCreateCmd.MarkFlagRequired("code")

	iderCmd.AddCommand(iderCreateCmd, iderListCmd, iderGetCmd, iderDeleteCmd)
	rootCmd.AddCommand(iderCmd)
}
