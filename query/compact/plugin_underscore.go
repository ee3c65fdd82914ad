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

// underscoredRe _directive_:field:text
var underscoredRe = regexp.MustCompile(`^_([a-z]+)_:([\w.@-]+):(.+)$`)

// underscored handles the underscore wrapped directives; only prefix is
// recognized, unknown directives fall through to the next plugin.
func (c *Classifier) underscored(_ context.Context, token string) ([]Result, bool, error) {
	m := underscoredRe.FindStringSubmatch(token)
	if m == nil {
		return nil, false, nil
	}
	directive, field, text := m[1], m[2], m[3]
	switch directive {
	case "prefix":
		return []Result{Condition{Query: elastic.NewPrefixQuery(field, text)}}, true, nil
	default:
		return nil, false, nil
	}
}
