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

	elastic "github.com/olivere/elastic/v7"
	"github.com/pkg/errors"
)

// rangeTokenRe field:<op>val[,<op>val]，op 为 < <= > >=
var rangeTokenRe = regexp.MustCompile(`^([\w.@-]+):((?:<=|>=|<|>)[^,\s]+(?:,(?:<=|>=|<|>)[^,\s]+)?)$`)

// ranges merges at most one lower bound and one upper bound operator into a
// single range clause. Two operators on the same side describe a
// contradictory filter and abort query construction instead of being
// silently dropped.
func (c *Classifier) ranges(_ context.Context, token string) ([]Result, bool, error) {
	m := rangeTokenRe.FindStringSubmatch(token)
	if m == nil {
		return nil, false, nil
	}
	field := m[1]

	var (
		q          = elastic.NewRangeQuery(field)
		hasLower   bool
		hasUpper   bool
	)
	for _, part := range strings.Split(m[2], ",") {
		var op, value string
		switch {
		case strings.HasPrefix(part, "<="):
			op, value = "<=", part[2:]
		case strings.HasPrefix(part, ">="):
			op, value = ">=", part[2:]
		case strings.HasPrefix(part, "<"):
			op, value = "<", part[1:]
		case strings.HasPrefix(part, ">"):
			op, value = ">", part[1:]
		}

		switch op {
		case ">", ">=":
			if hasLower {
				return nil, false, errors.Errorf("duplicate lower bound operator for field %s", field)
			}
			hasLower = true
			if op == ">" {
				q = q.Gt(value)
			} else {
				q = q.Gte(value)
			}
		case "<", "<=":
			if hasUpper {
				return nil, false, errors.Errorf("duplicate upper bound operator for field %s", field)
			}
			hasUpper = true
			if op == "<" {
				q = q.Lt(value)
			} else {
				q = q.Lte(value)
			}
		}
	}

	return []Result{Condition{Query: q}}, true, nil
}
