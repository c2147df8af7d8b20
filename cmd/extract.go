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
	"os"

	"github.com/spf13/cobra"

	"github.com/framed/framed/common"
	"github.com/framed/framed/confengine"
	"github.com/framed/framed/controller"
)

type extractCmdConfig struct {
	config string
	format string
	path   string
}

var extractConfig extractCmdConfig

// Yaml 由命令行参数合成一次性解析配置 stdout 输出 particle
func (c *extractCmdConfig) Yaml() []byte {
	s := fmt.Sprintf(`
logger:
  stdout: false
  filename: /dev/null

controller:
  sources:
  - format: %s
    path: "%s"

exporter:
  particles:
    enabled: true
    console: true
`, c.format, c.path)
	return []byte(s)
}

// extract 模式一次性解析 全部来源处理完成后退出
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract framed records from files and exit",
	Run: func(cmd *cobra.Command, args []string) {
		var cfg *confengine.Config
		var err error
		switch {
		case extractConfig.config != "":
			cfg, err = confengine.LoadConfigPath(extractConfig.config)
		case extractConfig.format != "" && extractConfig.path != "":
			cfg, err = confengine.LoadContent(extractConfig.Yaml())
		default:
			err = fmt.Errorf("either --config or both --format and --path are required")
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}

		ctr, err := controller.New(cfg, common.GetBuildInfo())
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create controller: %v\n", err)
			os.Exit(1)
		}
		if err := ctr.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start controller: %v\n", err)
			os.Exit(1)
		}

		ctr.Wait()
		ctr.Stop()
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractConfig.config, "config", "", "Configuration file path")
	extractCmd.Flags().StringVar(&extractConfig.format, "format", "", "Frame format name (see `framed formats`)")
	extractCmd.Flags().StringVar(&extractConfig.path, "path", "", "Source file path, glob supported")
	rootCmd.AddCommand(extractCmd)
}
