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
	"sort"
	"strconv"

	elastic "github.com/olivere/elastic/v7"
	"github.com/spf13/cast"

	"github.com/opskit/estools/internal/json"
)

// noise keys the engine attaches to terms buckets, useless in a flat table
const (
	keyDocCountError = "doc_count_error_upper_bound"
	keySumOtherCount = "sum_other_doc_count"

	keyKey         = "key"
	keyKeyAsString = "key_as_string"
	keyDocCount    = "doc_count"
	keyBuckets     = "buckets"
	keyValue       = "value"
	keyValues      = "values"

	hitsSuffix = ".hits"
)

// Cell 一列，列名采用点分层级
type Cell struct {
	Name  string
	Value any
}

// Row one path from the aggregation root to a leaf
type Row []Cell

// Flatten walks a hierarchical aggregation response and emits one row per
// leaf path through the bucket tree, fully denormalized. Missing optional
// fields are never an error, absence just emits nothing.
func Flatten(aggs elastic.Aggregations) ([]Row, error) {
	root := make(map[string]any, len(aggs))
	for name, raw := range aggs {
		if len(raw) == 0 {
			continue
		}
		var v any
		if err := json.Decode(raw, &v); err != nil {
			return nil, err
		}
		root[name] = v
	}
	return FlattenData(root), nil
}

// FlattenData 对已经解析好的响应树做同样的展开
func FlattenData(root map[string]any) []Row {
	return walk("", root, Row{})
}

func walk(name string, node map[string]any, parent Row) []Row {
	row := make(Row, len(parent), len(parent)+4)
	copy(row, parent)

	// the node itself is a bucket when it carries a key and a count
	key, hasKey := node[keyKey]
	count, hasCount := node[keyDocCount]
	if name != "" && hasKey && hasCount {
		if ks, ok := node[keyKeyAsString]; ok {
			key = ks
		}
		row = append(row, Cell{Name: name, Value: key}, Cell{Name: name + hitsSuffix, Value: count})
	}

	childNames := make([]string, 0, len(node))
	for childName := range node {
		switch childName {
		case keyKey, keyKeyAsString, keyDocCount, keyDocCountError, keySumOtherCount:
			continue
		}
		childNames = append(childNames, childName)
	}
	sort.Strings(childNames)

	bucketLists := make(map[string][]any)
	bucketNames := make([]string, 0)

	for _, childName := range childNames {
		child, ok := node[childName].(map[string]any)
		if !ok {
			continue
		}
		if buckets, has := child[keyBuckets]; has {
			if list, ok := buckets.([]any); ok {
				bucketLists[childName] = list
				bucketNames = append(bucketNames, childName)
			}
			continue
		}
		row = appendMetric(row, childName, child)
	}

	if len(bucketNames) == 0 {
		return []Row{row}
	}

	var rows []Row
	for _, childName := range bucketNames {
		list := bucketLists[childName]
		// an empty group must not silently disappear
		if len(list) == 0 {
			rows = append(rows, row)
			continue
		}
		for _, item := range list {
			bucket, ok := item.(map[string]any)
			if !ok {
				continue
			}
			rows = append(rows, walk(childName, bucket, row)...)
		}
	}
	return rows
}

// appendMetric folds one metric object into the row: a single value, the
// non-zero entries of a values map, or the object's own scalar fields.
func appendMetric(row Row, name string, metric map[string]any) Row {
	if v, ok := metric[keyValue]; ok {
		return append(row, Cell{Name: name, Value: v})
	}

	if vs, ok := metric[keyValues].(map[string]any); ok {
		for _, k := range sortedValueKeys(vs) {
			v := vs[k]
			if cast.ToFloat64(v) == 0 {
				continue
			}
			row = append(row, Cell{Name: name + "." + k, Value: v})
		}
		return row
	}

	fields := make([]string, 0, len(metric))
	for k := range metric {
		if k == keyBuckets {
			continue
		}
		fields = append(fields, k)
	}
	sort.Strings(fields)
	for _, k := range fields {
		switch metric[k].(type) {
		case map[string]any, []any:
			continue
		}
		row = append(row, Cell{Name: name + "." + k, Value: metric[k]})
	}
	return row
}

// sortedValueKeys 数值键按数值排序，保证 percentiles 的输出顺序稳定
func sortedValueKeys(vs map[string]any) []string {
	keys := make([]string, 0, len(vs))
	for k := range vs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		fi, erri := strconv.ParseFloat(keys[i], 64)
		fj, errj := strconv.ParseFloat(keys[j], 64)
		if erri == nil && errj == nil {
			return fi < fj
		}
		return keys[i] < keys[j]
	})
	return keys
}
