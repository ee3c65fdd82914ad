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

	elastic "github.com/olivere/elastic/v7"
)

// textTokenRe [op]field:value，value 不允许包含空格、冒号、引号、斜杠和比较符，
// 这些形态分别属于 nested、cidr、ranges 和 autoescape 插件
var textTokenRe = regexp.MustCompile(`^([=*/~+]?)([\w.@-]+):([^\s:"/<>()]+)$`)

// textOps maps the explicit match operators onto structured clauses. A bare
// field:value pair without an operator is only claimed when the field is
// declared text, otherwise it stays valid free text query string syntax.
func (c *Classifier) textOps(_ context.Context, token string) ([]Result, bool, error) {
	m := textTokenRe.FindStringSubmatch(token)
	if m == nil {
		return nil, false, nil
	}
	op, field, value := m[1], m[2], m[3]

	var q elastic.Query
	switch op {
	case "=":
		// term filters on analyzed fields never match, downgrade to match
		if c.opts.fieldTypes.IsText(field) {
			q = elastic.NewMatchQuery(field, value)
		} else {
			q = elastic.NewTermQuery(field, value)
		}
	case "*":
		q = elastic.NewWildcardQuery(field, value)
	case "/":
		q = elastic.NewRegexpQuery(field, value)
	case "~":
		q = elastic.NewFuzzyQuery(field, value)
	case "+":
		q = elastic.NewMatchPhraseQuery(field, value)
	default:
		if !c.opts.fieldTypes.IsText(field) {
			return nil, false, nil
		}
		q = elastic.NewMatchQuery(field, value)
	}

	return []Result{Condition{Query: q}}, true, nil
}
