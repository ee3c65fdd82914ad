// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package body

import (
	elastic "github.com/olivere/elastic/v7"
)

// Section 查询语句所属的 bool 区块
type Section string

const (
	Must    Section = "must"
	MustNot Section = "must_not"
	Should  Section = "should"
	Filter  Section = "filter"
)

// Body is the mutable accumulator a search request is assembled into. It is
// single-owner: callers reusing one across concurrent scroll requests must
// Clone it first, there is no internal locking.
type Body struct {
	must    []elastic.Query
	mustNot []elastic.Query
	should  []elastic.Query
	filter  []elastic.Query

	minimumShouldMatch string

	// nested short-circuits the bool structure entirely when set
	nestedPath string
	nestedSub  *Body

	size int
	from int

	sorters []elastic.Sorter

	aggNames []string
	aggs     map[string]elastic.Aggregation

	// stash holds the one filter clause that is swapped on every poll while
	// the rest of the body is preserved (a shifting time filter, typically)
	stashed elastic.Query

	scrollID  string
	keepAlive string
}

func New() *Body {
	return &Body{
		size: -1,
		from: -1,
		aggs: make(map[string]elastic.Aggregation),
	}
}

func (b *Body) Must(qs ...elastic.Query) *Body {
	b.must = append(b.must, qs...)
	return b
}

func (b *Body) MustNot(qs ...elastic.Query) *Body {
	b.mustNot = append(b.mustNot, qs...)
	return b
}

func (b *Body) Should(qs ...elastic.Query) *Body {
	b.should = append(b.should, qs...)
	return b
}

func (b *Body) Filter(qs ...elastic.Query) *Body {
	b.filter = append(b.filter, qs...)
	return b
}

// Append 按照区块名追加查询语句
func (b *Body) Append(section Section, qs ...elastic.Query) *Body {
	switch section {
	case MustNot:
		b.MustNot(qs...)
	case Should:
		b.Should(qs...)
	case Filter:
		b.Filter(qs...)
	default:
		b.Must(qs...)
	}
	return b
}

func (b *Body) MinimumShouldMatch(m string) *Body {
	b.minimumShouldMatch = m
	return b
}

// Nested sets a path scoped sub query. It replaces the whole bool structure
// in the rendered query; the last call wins.
func (b *Body) Nested(path string, sub *Body) *Body {
	b.nestedPath = path
	b.nestedSub = sub
	return b
}

func (b *Body) NestedPath() string {
	return b.nestedPath
}

func (b *Body) Size(size int) *Body {
	b.size = size
	return b
}

func (b *Body) From(from int) *Body {
	b.from = from
	return b
}

func (b *Body) Sort(field string, ascending bool) *Body {
	sorter := elastic.NewFieldSort(field)
	if ascending {
		sorter = sorter.Asc()
	} else {
		sorter = sorter.Desc()
	}
	b.sorters = append(b.sorters, sorter)
	return b
}

func (b *Body) Aggregation(name string, agg elastic.Aggregation) *Body {
	if _, ok := b.aggs[name]; !ok {
		b.aggNames = append(b.aggNames, name)
	}
	b.aggs[name] = agg
	return b
}

// SetStash 设置轮询时需要替换的过滤语句，渲染时追加到 filter 区块
func (b *Body) SetStash(q elastic.Query) *Body {
	b.stashed = q
	return b
}

func (b *Body) Stashed() elastic.Query {
	return b.stashed
}

func (b *Body) ClearStash() *Body {
	b.stashed = nil
	return b
}

func (b *Body) SetScrollID(id string) *Body {
	b.scrollID = id
	return b
}

func (b *Body) ScrollID() string {
	return b.scrollID
}

func (b *Body) KeepAlive(d string) *Body {
	b.keepAlive = d
	return b
}

func (b *Body) IsEmpty() bool {
	return len(b.must) == 0 && len(b.mustNot) == 0 && len(b.should) == 0 &&
		len(b.filter) == 0 && b.stashed == nil && b.nestedPath == ""
}

// Query renders the accumulated clauses. A nested sub query replaces the
// bool structure entirely, the two cannot be combined in one body.
func (b *Body) Query() elastic.Query {
	if b.nestedPath != "" {
		var sub elastic.Query
		if b.nestedSub != nil {
			sub = b.nestedSub.Query()
		} else {
			sub = elastic.NewBoolQuery()
		}
		return elastic.NewNestedQuery(b.nestedPath, sub)
	}

	q := elastic.NewBoolQuery()
	if len(b.must) > 0 {
		q = q.Must(b.must...)
	}
	if len(b.mustNot) > 0 {
		q = q.MustNot(b.mustNot...)
	}
	if len(b.should) > 0 {
		q = q.Should(b.should...)
	}
	filter := b.filter
	if b.stashed != nil {
		filter = append(append([]elastic.Query{}, filter...), b.stashed)
	}
	if len(filter) > 0 {
		q = q.Filter(filter...)
	}
	if b.minimumShouldMatch != "" {
		q = q.MinimumShouldMatch(b.minimumShouldMatch)
	}
	return q
}

// SearchSource 组装完整的查询体
func (b *Body) SearchSource() *elastic.SearchSource {
	source := elastic.NewSearchSource().Query(b.Query())
	if b.size >= 0 {
		source = source.Size(b.size)
	}
	if b.from >= 0 {
		source = source.From(b.from)
	}
	if len(b.sorters) > 0 {
		source = source.SortBy(b.sorters...)
	}
	for _, name := range b.aggNames {
		source = source.Aggregation(name, b.aggs[name])
	}
	return source
}

// Clone 深拷贝，跨请求复用时必须先拷贝
func (b *Body) Clone() *Body {
	nb := New()
	nb.must = append(nb.must, b.must...)
	nb.mustNot = append(nb.mustNot, b.mustNot...)
	nb.should = append(nb.should, b.should...)
	nb.filter = append(nb.filter, b.filter...)
	nb.minimumShouldMatch = b.minimumShouldMatch
	nb.nestedPath = b.nestedPath
	if b.nestedSub != nil {
		nb.nestedSub = b.nestedSub.Clone()
	}
	nb.size = b.size
	nb.from = b.from
	nb.sorters = append(nb.sorters, b.sorters...)
	nb.aggNames = append(nb.aggNames, b.aggNames...)
	for k, v := range b.aggs {
		nb.aggs[k] = v
	}
	nb.stashed = b.stashed
	nb.scrollID = b.scrollID
	nb.keepAlive = b.keepAlive
	return nb
}
