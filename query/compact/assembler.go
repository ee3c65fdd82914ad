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

	elastic "github.com/olivere/elastic/v7"

	"github.com/opskit/estools/query/body"
)

// Assembler consumes the classified token stream and folds it into one
// accumulator. Boolean context is tracked per token: the invert flag only
// persists across results that explicitly carry it forward, and dangling
// barewords are buffered until a real fragment commits them.
type Assembler struct {
	classifier *Classifier
}

// NewAssembler .
func NewAssembler(opts ...Option) *Assembler {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Assembler{classifier: newClassifier(o, 0)}
}

// Assemble 把 token 流编译进查询体
func (a *Assembler) Assemble(ctx context.Context, tokens []string, b *body.Body) error {
	var (
		invert   bool
		dangling []string
		qs       []string
	)
	target := a.classifier.opts.target

	for _, token := range tokens {
		results, err := a.classifier.Classify(ctx, token)
		if err != nil {
			return err
		}

		nextInvert := false
		for _, res := range results {
			switch r := res.(type) {
			case Fragment:
				if r.Dangles {
					dangling = append(dangling, r.Text)
				} else {
					qs = append(qs, dangling...)
					dangling = nil
					qs = append(qs, r.Text)
				}
				if r.Invert {
					nextInvert = true
				}
			case Condition:
				if invert {
					b.MustNot(r.Query)
				} else {
					b.Append(target, r.Query)
				}
				// a bareword right before a structured condition is dropped
				dangling = nil
			case NestedQuery:
				// last one wins
				b.Nested(r.Path, r.Sub)
				dangling = nil
			}
		}
		invert = nextInvert
	}

	qs = trimDangling(qs)
	if len(qs) == 0 {
		return nil
	}
	joined := insertJoins(qs, a.classifier.opts.defaultJoin)
	q := elastic.NewQueryStringQuery(strings.Join(joined, " ")).AnalyzeWildcard(true)
	b.Append(target, q)
	return nil
}

func isJoinWord(s string) bool {
	return s == opAnd || s == opOr || s == opNot
}

// trimDangling removes the keywords that would be invalid at the edges of a
// query_string: leading AND/OR and trailing AND/OR/NOT.
func trimDangling(qs []string) []string {
	for len(qs) > 0 && (qs[0] == opAnd || qs[0] == opOr) {
		qs = qs[1:]
	}
	for len(qs) > 0 && isJoinWord(qs[len(qs)-1]) {
		qs = qs[:len(qs)-1]
	}
	return qs
}

// insertJoins puts the default operator between any two adjacent fragments
// that are not already joined by a keyword.
func insertJoins(qs []string, join string) []string {
	if len(qs) < 2 {
		return qs
	}
	out := make([]string, 0, len(qs)*2-1)
	out = append(out, qs[0])
	for i := 1; i < len(qs); i++ {
		if !isJoinWord(qs[i-1]) && !isJoinWord(qs[i]) {
			out = append(out, join)
		}
		out = append(out, qs[i])
	}
	return out
}
