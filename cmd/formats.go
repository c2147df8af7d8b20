// Copyright 2025 The framed Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framed/framed/format"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List all registered frame formats",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range format.Names() {
			fmt.Printf("- %s\n", name)
		}
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
