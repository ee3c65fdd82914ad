// Tencent is pleased to support the open source community by making
// 蓝鲸智云 - 监控平台 (BlueKing - Monitor) available.
// Copyright (C) 2022 THL A29 Limited, a Tencent company. All rights reserved.
// Licensed under the MIT License (the "License"); you may not use this file except in compliance with the License.
// You may obtain a copy of the License at http://opensource.org/licenses/MIT
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package aggregate

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

const (
	// Delimiter 紧凑语法里多个聚合定义之间的分隔符
	Delimiter = "+"

	TypeTerms            = "terms"
	TypeSignificantTerms = "significant_terms"
	TypeRareTerms        = "rare_terms"
	TypeHistogram        = "histogram"
	TypeDateHistogram    = "date_histogram"
	TypeGeohashGrid      = "geohash_grid"
	TypeMissing          = "missing"

	TypeAvg           = "avg"
	TypeMax           = "max"
	TypeMin           = "min"
	TypeSum           = "sum"
	TypeCardinality   = "cardinality"
	TypeStats         = "stats"
	TypeExtendedStats = "extended_stats"
	TypePercentiles   = "percentiles"
	TypeGeoCentroid   = "geo_centroid"
)

var bucketTypes = map[string]struct{}{
	TypeTerms: {}, TypeSignificantTerms: {}, TypeRareTerms: {},
	TypeHistogram: {}, TypeDateHistogram: {}, TypeGeohashGrid: {},
	TypeMissing: {},
}

var metricTypes = map[string]struct{}{
	TypeAvg: {}, TypeMax: {}, TypeMin: {}, TypeSum: {},
	TypeCardinality: {}, TypeStats: {}, TypeExtendedStats: {},
	TypePercentiles: {}, TypeGeoCentroid: {},
}

// singleValueMetricTypes 可以作为桶排序键的单值指标
var singleValueMetricTypes = map[string]struct{}{
	TypeAvg: {}, TypeMax: {}, TypeMin: {}, TypeSum: {}, TypeCardinality: {},
}

var defaultPercents = []float64{25, 50, 75, 90}

// kvParamsRe 显式 key=value 参数段的判断
var kvParamsRe = regexp.MustCompile(`^\w+=`)

func isKnownType(t string) bool {
	if _, ok := bucketTypes[t]; ok {
		return true
	}
	_, ok := metricTypes[t]
	return ok
}

// Node is one aggregation request node. It implements elastic.Aggregation
// so a tree can be attached to any search source directly.
type Node struct {
	Name     string
	Type     string
	Field    string
	Params   map[string]any
	Children map[string]*Node
}

// IsBucket reports whether the node groups documents into buckets; only
// bucket nodes meaningfully carry children.
func (n *Node) IsBucket() bool {
	_, ok := bucketTypes[n.Type]
	return ok
}

// Source 输出 {type: {field, ...params}, aggregations?: {...}}
func (n *Node) Source() (interface{}, error) {
	inner := make(map[string]any, len(n.Params)+1)
	inner["field"] = n.Field
	for k, v := range n.Params {
		inner[k] = v
	}
	src := map[string]any{
		n.Type: inner,
	}
	if len(n.Children) > 0 {
		aggs := make(map[string]any, len(n.Children))
		for name, child := range n.Children {
			cs, err := child.Source()
			if err != nil {
				return nil, err
			}
			aggs[name] = cs
		}
		src["aggregations"] = aggs
	}
	return src, nil
}

// Tree 顶层聚合名到节点的映射
type Tree map[string]*Node

// Source 输出 {name: {...}} 形态的完整请求体片段
func (t Tree) Source() (interface{}, error) {
	src := make(map[string]any, len(t))
	for name, node := range t {
		ns, err := node.Source()
		if err != nil {
			return nil, err
		}
		src[name] = ns
	}
	return src, nil
}

// Parse expands the compact grammar: plus-joined definitions of
// [alias=]type:field[:params] or [alias=]field. Unknown types fold back
// into a terms aggregation over the first colon segment.
func Parse(spec string) (Tree, error) {
	tree := make(Tree)
	for _, def := range strings.Split(spec, Delimiter) {
		def = strings.TrimSpace(def)
		if def == "" {
			continue
		}
		node, err := parseDef(def)
		if err != nil {
			return nil, err
		}
		tree[node.Name] = node
	}
	return tree, nil
}

func parseDef(def string) (*Node, error) {
	var alias string
	if i := strings.Index(def, "="); i >= 0 {
		j := strings.Index(def, ":")
		if j < 0 || i < j {
			alias, def = def[:i], def[i+1:]
		}
	}

	node := &Node{
		Params:   make(map[string]any),
		Children: make(map[string]*Node),
	}

	var params string
	parts := strings.SplitN(def, ":", 3)
	if len(parts) >= 2 && isKnownType(parts[0]) {
		node.Type = parts[0]
		node.Field = parts[1]
		if len(parts) == 3 {
			params = parts[2]
		}
	} else {
		// unknown leading segment, the whole definition is a terms
		// aggregation over the first segment
		node.Type = TypeTerms
		node.Field = parts[0]
		if len(parts) >= 2 {
			params = strings.Join(parts[1:], ":")
		}
	}
	if node.Field == "" {
		return nil, errors.Errorf("aggregation definition %q has no field", def)
	}

	if params != "" && kvParamsRe.MatchString(params) {
		parseExplicitParams(node, params)
	} else {
		parsePositionalParams(node, params)
	}

	node.Name = alias
	if node.Name == "" {
		if node.Type == TypeTerms {
			node.Name = node.Field
		} else {
			node.Name = node.Type + "." + node.Field
		}
	}
	return node, nil
}

// parseExplicitParams key=value[,key=value...]，同一个 key 的多个逗号值合并成数组
func parseExplicitParams(node *Node, params string) {
	var key string
	for _, seg := range strings.Split(params, ",") {
		if i := strings.Index(seg, "="); i > 0 && kvParamsRe.MatchString(seg) {
			key = seg[:i]
			node.Params[key] = coerce(seg[i+1:])
			continue
		}
		if key == "" {
			continue
		}
		switch cur := node.Params[key].(type) {
		case []any:
			node.Params[key] = append(cur, coerce(seg))
		default:
			node.Params[key] = []any{cur, coerce(seg)}
		}
	}
}

// parsePositionalParams 无 key 的参数按类型有各自的位置含义
func parsePositionalParams(node *Node, params string) {
	switch node.Type {
	case TypeTerms, TypeSignificantTerms:
		if n, err := cast.ToIntE(params); err == nil && n > 0 {
			node.Params["size"] = n
		}
	case TypeRareTerms:
		if n, err := cast.ToIntE(params); err == nil && n > 0 {
			node.Params["max_doc_count"] = n
		}
	case TypeHistogram:
		if v, err := cast.ToFloat64E(params); err == nil && v > 0 {
			node.Params["interval"] = v
		}
	case TypeDateHistogram:
		interval := params
		if interval == "" {
			interval = "1h"
		}
		node.Params["calendar_interval"] = interval
	case TypeGeohashGrid:
		if n, err := cast.ToIntE(params); err == nil && n > 0 {
			node.Params["precision"] = n
		}
	case TypePercentiles:
		percents := defaultPercents
		if params != "" {
			var parsed []float64
			for _, p := range strings.Split(params, ",") {
				if v, err := cast.ToFloat64E(strings.TrimSpace(p)); err == nil {
					parsed = append(parsed, v)
				}
			}
			if len(parsed) > 0 {
				percents = parsed
			}
		}
		node.Params["percents"] = percents
	}
}

func coerce(s string) any {
	if n, err := cast.ToIntE(s); err == nil {
		return n
	}
	if f, err := cast.ToFloat64E(s); err == nil {
		return f
	}
	return s
}

// Wrap builds a new tree from the outer definition and hangs the existing
// tree below every node of it. Repeated wrapping from the innermost spec
// outward builds an N-level group by.
func Wrap(outerSpec string, inner Tree) (Tree, error) {
	tree, err := Parse(outerSpec)
	if err != nil {
		return nil, err
	}
	if len(inner) == 0 {
		return tree, nil
	}
	for _, node := range tree {
		for name, child := range inner {
			node.Children[name] = child
		}
	}
	return tree, nil
}

// OrderBy attaches a bucket order clause to every bucket node at the top
// level of the tree. The ordering metrics are parsed from the compact
// grammar and inserted as additional children so the engine can compute
// the sort key; _count desc is always appended as the tie break.
func (t Tree) OrderBy(direction string, metricSpec string) error {
	direction = strings.ToLower(direction)
	if direction != "asc" {
		direction = "desc"
	}

	metrics := make(Tree)
	if metricSpec != "" {
		var err error
		metrics, err = Parse(metricSpec)
		if err != nil {
			return err
		}
		for name, m := range metrics {
			if _, ok := singleValueMetricTypes[m.Type]; !ok {
				return errors.Errorf("order_by aggregation %s (%s) is not a single value metric", name, m.Type)
			}
		}
	}

	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	order := make([]map[string]string, 0, len(names)+1)
	for _, name := range names {
		order = append(order, map[string]string{name: direction})
	}
	order = append(order, map[string]string{"_count": "desc"})

	for _, node := range t {
		if !node.IsBucket() {
			continue
		}
		for _, name := range names {
			node.Children[name] = metrics[name]
		}
		node.Params["order"] = order
	}
	return nil
}
