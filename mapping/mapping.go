// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package mapping

import (
	"strings"
)

const (
	Type       = "type"
	Properties = "properties"

	KeyWord = "keyword"
	Text    = "text"
	Long    = "long"
	Integer = "integer"
	Date    = "date"
	Nested  = "nested"

	Step = "."
)

// FieldTypes 字段名到声明类型的映射，按照 es mapping 的层级打平
type FieldTypes map[string]string

func mapProperties(prefix string, data map[string]any, res map[string]string) {
	if prefix != "" {
		if t, ok := data[Type]; ok {
			switch ts := t.(type) {
			case string:
				res[prefix] = ts
			}
		}
	}

	if properties, ok := data[Properties]; ok {
		if pm, ok := properties.(map[string]any); ok {
			for k, v := range pm {
				if prefix != "" {
					k = prefix + Step + k
				}
				switch nv := v.(type) {
				case map[string]any:
					mapProperties(k, nv, res)
				}
			}
		}
	}
}

// ParseProperties 合并 mapping，后面的合并前面的
func ParseProperties(mappings ...map[string]any) FieldTypes {
	res := make(FieldTypes)
	for _, mapping := range mappings {
		mapProperties("", mapping, res)
	}
	return res
}

func (ft FieldTypes) Type(field string) string {
	return ft[field]
}

func (ft FieldTypes) IsText(field string) bool {
	return ft[field] == Text
}

// NestedPath 返回字段所属的 nested 路径，非 nested 字段返回空
func (ft FieldTypes) NestedPath(field string) string {
	lbs := strings.Split(field, Step)
	for i := len(lbs) - 1; i >= 0; i-- {
		checkKey := strings.Join(lbs[0:i], Step)
		if v, ok := ft[checkKey]; ok {
			if v == Nested {
				return checkKey
			}
		}
	}
	return ""
}
