// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package json

import (
	"encoding/json"
	"strings"
)

const (
	StepString = "."
)

func mapData(prefix string, data map[string]any, res map[string]any) {
	for k, v := range data {
		if prefix != "" {
			k = prefix + StepString + k
		}
		switch nv := v.(type) {
		case map[string]any:
			mapData(k, nv, res)
		default:
			res[k] = v
		}
	}
}

// ParseObject 解析 json，按照层级打平
func ParseObject(prefix, input string) (map[string]any, error) {
	oldData := make(map[string]any)
	newData := make(map[string]any)

	// 使用标准库的 json.Decoder，因为需要 UseNumber() 功能
	decoder := json.NewDecoder(strings.NewReader(input))
	decoder.UseNumber()
	err := decoder.Decode(&oldData)
	if err != nil {
		return newData, err
	}

	mapData(prefix, oldData, newData)
	return newData, nil
}

// Decode 解码任意 json 片段，数值保留为 json.Number
func Decode(input []byte, v any) error {
	decoder := json.NewDecoder(strings.NewReader(string(input)))
	decoder.UseNumber()
	return decoder.Decode(v)
}

func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
