// Copyright 2025 The TIR Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command tirbind binds a function signature described in a YAML manifest
// against the values of a call and prints the resulting preamble plan:
// variable definitions, ordered initialization statements, and runtime
// assertions.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tir-org/tir/manifest"
)

var rootCmd = &cobra.Command{
	Use:   "tirbind",
	Short: "Argument binding for tensor program signatures.",
	Long:  "Bind formal signatures with symbolic shapes against call values, producing the checks and definitions of the generated program preamble.",
}

var bindCmd = &cobra.Command{
	Use:   "bind [manifest]",
	Short: "Bind the signature of a manifest to its actual values.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			log.SetLevel(log.DebugLevel)
		}
		src, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		m, err := manifest.Parse(src)
		if err != nil {
			return err
		}
		plan, err := m.Bind()
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"defs":    len(plan.Binder.Defs()),
			"init":    len(plan.Binder.InitNest()),
			"asserts": len(plan.Binder.Asserts()),
		}).Debug("signature bound")
		fmt.Print(plan)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.AddCommand(bindCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
