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
	"regexp"
	"strings"

	"github.com/opskit/estools/log"
	"github.com/opskit/estools/query/body"
)

var (
	// nestedTokenRe path:"sub tokens..."
	nestedTokenRe = regexp.MustCompile(`^([\w.@-]+):"(.+)"$`)
	// macLikeRe 避免把 MAC 地址之类的冒号序列误判成 nested 查询
	macLikeRe = regexp.MustCompile(`^(?:[0-9A-Fa-f]{2}:){2,}[0-9A-Fa-f]{2}`)
)

// nested recognizes a path scoped sub query and compiles it by recursively
// running the whole pipeline over the inner tokens. Recursion depth is
// bounded because the input is operator controlled text.
func (c *Classifier) nested(ctx context.Context, token string) ([]Result, bool, error) {
	if macLikeRe.MatchString(token) {
		return nil, false, nil
	}
	m := nestedTokenRe.FindStringSubmatch(token)
	if m == nil {
		return nil, false, nil
	}
	path, inner := m[1], m[2]

	subTokens := strings.Fields(inner)
	if len(subTokens) == 0 {
		return nil, false, nil
	}
	// the first sub token has to carry a real field:value pair, otherwise
	// this is just a quoted phrase
	if !hasUnescapedColon(subTokens[0]) {
		return nil, false, nil
	}

	if c.depth+1 >= c.opts.maxDepth {
		log.Warnf(ctx, "nested depth limit %d reached, token %q kept as free text", c.opts.maxDepth, token)
		return nil, false, nil
	}

	sub := body.New()
	asm := &Assembler{classifier: c.child()}
	if err := asm.Assemble(ctx, subTokens, sub); err != nil {
		return nil, false, err
	}

	return []Result{NestedQuery{Path: path, Sub: sub}}, true, nil
}

func hasUnescapedColon(s string) bool {
	for i, r := range s {
		if r != ':' {
			continue
		}
		if i > 0 && s[i-1] == '\\' {
			continue
		}
		if i > 0 && i < len(s)-1 {
			return true
		}
	}
	return false
}
