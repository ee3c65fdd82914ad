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
	"context"
	"strings"
)

// escapeChars query_string 语法中需要转义的字符
const escapeChars = ` /()`

// autoEscape backslash-escapes the characters that would break query_string
// syntax. Characters already escaped stay untouched, and a token with
// nothing to escape is declined so classification stays idempotent.
func (c *Classifier) autoEscape(_ context.Context, token string) ([]Result, bool, error) {
	var (
		sb       strings.Builder
		changed  bool
		escaping bool
	)
	for _, r := range token {
		if escaping {
			sb.WriteRune(r)
			escaping = false
			continue
		}
		if r == '\\' {
			sb.WriteRune(r)
			escaping = true
			continue
		}
		if strings.ContainsRune(escapeChars, r) {
			sb.WriteRune('\\')
			changed = true
		}
		sb.WriteRune(r)
	}
	if !changed {
		return nil, false, nil
	}
	return []Result{Fragment{Text: sb.String()}}, true, nil
}
