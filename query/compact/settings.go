// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package compact

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/opskit/estools/eventbus"
)

const (
	// DefaultJoinConfigPath 自由文本片段之间的默认连接符，AND 或者 OR
	DefaultJoinConfigPath = "compact.default_join"
	// MaxNestedDepthConfigPath nested 子查询的最大递归层级
	MaxNestedDepthConfigPath = "compact.max_nested_depth"
	// MaxExpansionFileBytesConfigPath 文件展开插件允许读取的最大文件大小
	MaxExpansionFileBytesConfigPath = "compact.max_expansion_file_bytes"
)

const (
	defaultJoin           = "AND"
	defaultMaxNestedDepth = 3
	defaultMaxFileBytes   = 10 << 20
)

// setDefaultConfig
func setDefaultConfig() {
	viper.SetDefault(DefaultJoinConfigPath, defaultJoin)
	viper.SetDefault(MaxNestedDepthConfigPath, defaultMaxNestedDepth)
	viper.SetDefault(MaxExpansionFileBytesConfigPath, defaultMaxFileBytes)
}

// init
func init() {
	if err := eventbus.EventBus.Subscribe(eventbus.EventSignalConfigPreParse, setDefaultConfig); err != nil {
		fmt.Printf(
			"failed to subscribe event->[%s] for compact module for default config.",
			eventbus.EventSignalConfigPreParse,
		)
	}
}
