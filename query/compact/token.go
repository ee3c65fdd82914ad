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
	elastic "github.com/olivere/elastic/v7"

	"github.com/opskit/estools/query/body"
)

// Result is one typed output of the token classifier. A plugin may emit
// none, one or several results per token, in order.
type Result any

// Fragment is literal text folded into the free text query string. Dangles
// marks a bareword that must not survive at the start or the end of the
// assembled query; Invert marks that the following results go to must_not.
type Fragment struct {
	Text    string
	Dangles bool
	Invert  bool
}

// Condition is a structured query clause.
type Condition struct {
	Query elastic.Query
}

// NestedQuery is a path scoped sub query, it short-circuits the normal
// must/filter accumulation.
type NestedQuery struct {
	Path string
	Sub  *body.Body
}
