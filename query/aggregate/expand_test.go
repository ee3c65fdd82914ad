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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func treeJSON(t *testing.T, tree Tree) string {
	src, err := tree.Source()
	require.NoError(t, err)
	out, err := json.Marshal(src)
	require.NoError(t, err)
	return string(out)
}

func TestParse(t *testing.T) {
	for name, tc := range map[string]struct {
		spec     string
		expected string
	}{
		"bare field is a terms aggregation": {
			spec:     "src_ip",
			expected: `{"src_ip":{"terms":{"field":"src_ip"}}}`,
		},
		"positional size": {
			spec:     "src_ip:13",
			expected: `{"src_ip":{"terms":{"field":"src_ip","size":13}}}`,
		},
		"alias with explicit params": {
			spec:     "ips=src_ip:size=16",
			expected: `{"ips":{"terms":{"field":"src_ip","size":16}}}`,
		},
		"metric names default to type.field": {
			spec:     "avg:response_time",
			expected: `{"avg.response_time":{"avg":{"field":"response_time"}}}`,
		},
		"percentiles default percents": {
			spec:     "percentiles:latency",
			expected: `{"percentiles.latency":{"percentiles":{"field":"latency","percents":[25,50,75,90]}}}`,
		},
		"explicit percents merge into an array": {
			spec:     "lat=percentiles:latency:percents=50,90,99",
			expected: `{"lat":{"percentiles":{"field":"latency","percents":[50,90,99]}}}`,
		},
		"date histogram default interval": {
			spec:     "date_histogram:ts",
			expected: `{"date_histogram.ts":{"date_histogram":{"field":"ts","calendar_interval":"1h"}}}`,
		},
		"date histogram positional interval": {
			spec:     "date_histogram:ts:1d",
			expected: `{"date_histogram.ts":{"date_histogram":{"field":"ts","calendar_interval":"1d"}}}`,
		},
		"histogram positional interval": {
			spec:     "histogram:bytes:100",
			expected: `{"histogram.bytes":{"histogram":{"field":"bytes","interval":100}}}`,
		},
		"rare terms positional max doc count": {
			spec:     "rare_terms:user:5",
			expected: `{"rare_terms.user":{"rare_terms":{"field":"user","max_doc_count":5}}}`,
		},
		"unknown leading segment folds back to terms": {
			spec:     "foo:bar:size=5",
			expected: `{"foo":{"terms":{"field":"foo"}}}`,
		},
		"plus joins sibling aggregations": {
			spec: "src_ip:13+avg:bytes",
			expected: `{"src_ip":{"terms":{"field":"src_ip","size":13}},` +
				`"avg.bytes":{"avg":{"field":"bytes"}}}`,
		},
	} {
		t.Run(name, func(t *testing.T) {
			tree, err := Parse(tc.spec)
			require.NoError(t, err)
			assert.JSONEq(t, tc.expected, treeJSON(t, tree))
		})
	}
}

func TestParseEmptyAndInvalid(t *testing.T) {
	tree, err := Parse("")
	require.NoError(t, err)
	assert.Len(t, tree, 0)

	_, err = Parse("terms:")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no field")
}

func TestWrap(t *testing.T) {
	inner, err := Parse("ports")
	require.NoError(t, err)

	tree, err := Wrap("src_ip:10", inner)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"src_ip": {
			"terms": {"field": "src_ip", "size": 10},
			"aggregations": {"ports": {"terms": {"field": "ports"}}}
		}
	}`, treeJSON(t, tree))

	// wrapping again builds the next grouping level outward
	outer, err := Wrap("date_histogram:ts:1h", tree)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"date_histogram.ts": {
			"date_histogram": {"field": "ts", "calendar_interval": "1h"},
			"aggregations": {
				"src_ip": {
					"terms": {"field": "src_ip", "size": 10},
					"aggregations": {"ports": {"terms": {"field": "ports"}}}
				}
			}
		}
	}`, treeJSON(t, outer))
}

func TestOrderBy(t *testing.T) {
	tree, err := Parse("src_ip:10")
	require.NoError(t, err)
	require.NoError(t, tree.OrderBy("desc", "sum:bytes"))

	assert.JSONEq(t, `{
		"src_ip": {
			"terms": {
				"field": "src_ip",
				"size": 10,
				"order": [{"sum.bytes": "desc"}, {"_count": "desc"}]
			},
			"aggregations": {"sum.bytes": {"sum": {"field": "bytes"}}}
		}
	}`, treeJSON(t, tree))
}

func TestOrderByCountOnly(t *testing.T) {
	tree, err := Parse("src_ip:10")
	require.NoError(t, err)
	require.NoError(t, tree.OrderBy("asc", ""))

	assert.JSONEq(t, `{
		"src_ip": {
			"terms": {"field": "src_ip", "size": 10, "order": [{"_count": "desc"}]}
		}
	}`, treeJSON(t, tree))
}

func TestOrderByRejectsMultiValueMetrics(t *testing.T) {
	tree, err := Parse("src_ip:10")
	require.NoError(t, err)

	err = tree.OrderBy("desc", "stats:bytes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a single value metric")
}

func TestOrderBySkipsMetricNodes(t *testing.T) {
	tree, err := Parse("avg:bytes")
	require.NoError(t, err)
	require.NoError(t, tree.OrderBy("desc", "sum:bytes"))

	assert.JSONEq(t, `{"avg.bytes":{"avg":{"field":"bytes"}}}`, treeJSON(t, tree))
}
