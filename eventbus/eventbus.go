// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package eventbus

import (
	bus "github.com/asaskevich/EventBus"
)

const (
	// EventSignalConfigPreParse 配置文件读取前信号，各模块借此注册默认配置
	EventSignalConfigPreParse = "signal::config_pre_parse"
	// EventSignalConfigPostParse 配置文件读取后信号，各模块借此重载配置
	EventSignalConfigPostParse = "signal::config_post_parse"
)

// EventBus 全局事件总线，模块间通过订阅配置信号解耦
var EventBus = bus.New()
