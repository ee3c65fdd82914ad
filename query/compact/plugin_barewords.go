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

const (
	opAnd = "AND"
	opOr  = "OR"
	opNot = "NOT"
)

// bareWords uppercases the boolean keywords and marks them dangling so the
// assembler can trim them off the edges of the free text query. not
// additionally flips the invert flag for the results that follow.
func (c *Classifier) bareWords(_ context.Context, token string) ([]Result, bool, error) {
	switch strings.ToLower(token) {
	case "and":
		return []Result{Fragment{Text: opAnd, Dangles: true}}, true, nil
	case "or":
		return []Result{Fragment{Text: opOr, Dangles: true}}, true, nil
	case "not":
		return []Result{Fragment{Text: opNot, Dangles: true, Invert: true}}, true, nil
	default:
		return nil, false, nil
	}
}
