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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opskit/estools/log"
	"github.com/opskit/estools/mapping"
)

func conditionJSON(t *testing.T, res Result) string {
	cond, ok := res.(Condition)
	require.True(t, ok, "result should be a condition, got %T", res)
	src, err := cond.Query.Source()
	require.NoError(t, err)
	body, err := json.Marshal(src)
	require.NoError(t, err)
	return string(body)
}

func TestClassifyConditions(t *testing.T) {
	log.InitTestLogger()

	c := NewClassifier(WithFieldTypes(mapping.FieldTypes{
		"log":    mapping.Text,
		"level":  mapping.KeyWord,
		"events": mapping.Nested,
	}))
	ctx := context.Background()

	for i, tc := range []struct {
		token    string
		expected string
	}{
		{
			token:    "=level:error",
			expected: `{"term":{"level":"error"}}`,
		},
		{
			// term filters on analyzed fields downgrade to match
			token:    "=log:timeout",
			expected: `{"match":{"log":{"query":"timeout"}}}`,
		},
		{
			// bare field:value on a text field becomes a match query
			token:    "log:timeout",
			expected: `{"match":{"log":{"query":"timeout"}}}`,
		},
		{
			token:    "*host:web-*",
			expected: `{"wildcard":{"host":{"value":"web-*"}}}`,
		},
		{
			token:    "/host:web-[0-9]+",
			expected: `{"regexp":{"host":{"value":"web-[0-9]+"}}}`,
		},
		{
			token:    "~host:wbe01",
			expected: `{"fuzzy":{"host":{"value":"wbe01"}}}`,
		},
		{
			token:    "+log:connection.reset",
			expected: `{"match_phrase":{"log":{"query":"connection.reset"}}}`,
		},
		{
			token:    "_prefix_:host:web",
			expected: `{"prefix":{"host":"web"}}`,
		},
		{
			token:    "src_ip:10.0.0.0/8",
			expected: `{"range":{"src_ip":{"from":"10.0.0.0","include_lower":true,"include_upper":true,"to":"10.255.255.255"}}}`,
		},
		{
			token:    "src_ip:2001:db8::/126",
			expected: `{"range":{"src_ip":{"from":"2001:db8::","include_lower":true,"include_upper":true,"to":"2001:db8::3"}}}`,
		},
		{
			token:    "price:>50,<100",
			expected: `{"range":{"price":{"from":"50","include_lower":false,"include_upper":false,"to":"100"}}}`,
		},
		{
			token:    "ms:>500",
			expected: `{"range":{"ms":{"from":"500","include_lower":false,"include_upper":true,"to":null}}}`,
		},
		{
			token:    "ts:>=10,<=20",
			expected: `{"range":{"ts":{"from":"10","include_lower":true,"include_upper":true,"to":"20"}}}`,
		},
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			results, err := c.Classify(ctx, tc.token)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.JSONEq(t, tc.expected, conditionJSON(t, results[0]))
		})
	}
}

func TestClassifyFragments(t *testing.T) {
	log.InitTestLogger()

	c := NewClassifier()
	ctx := context.Background()

	for name, tc := range map[string]struct {
		token    string
		expected Fragment
	}{
		"unclaimed tokens stay free text": {
			token:    "hello",
			expected: Fragment{Text: "hello"},
		},
		"bare field:value without metadata stays free text": {
			token:    "username:bob",
			expected: Fragment{Text: "username:bob"},
		},
		"and": {
			token:    "AND",
			expected: Fragment{Text: "AND", Dangles: true},
		},
		"or is case insensitive": {
			token:    "oR",
			expected: Fragment{Text: "OR", Dangles: true},
		},
		"not also inverts": {
			token:    "not",
			expected: Fragment{Text: "NOT", Dangles: true, Invert: true},
		},
		"specials get escaped": {
			token:    "GET /api/v1 (slow)",
			expected: Fragment{Text: `GET\ \/api\/v1\ \(slow\)`},
		},
		"already escaped input is untouched": {
			token:    `GET\ \/api\/v1`,
			expected: Fragment{Text: `GET\ \/api\/v1`},
		},
		"mac address is not a nested query": {
			token:    "00:1a:2b:3c:4d:5e",
			expected: Fragment{Text: "00:1a:2b:3c:4d:5e"},
		},
	} {
		t.Run(name, func(t *testing.T) {
			results, err := c.Classify(ctx, tc.token)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tc.expected, results[0])
		})
	}
}

func TestClassifyRangeConflict(t *testing.T) {
	log.InitTestLogger()

	c := NewClassifier()
	_, err := c.Classify(context.Background(), "price:>50,>60")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate lower bound")

	_, err = c.Classify(context.Background(), "price:<50,<=60")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate upper bound")
}

func TestClassifyFileTerms(t *testing.T) {
	log.InitTestLogger()

	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("users.txt", "bob\nalice\n\nbob\n")
	write("hosts.csv", "web01,eu\nweb02,us\n")
	write("events.json", `{"_id":"a1","user":{"name":"bob"}}
not json at all
{"_id":"a2","user":{"name":"alice"}}`)
	write("empty.json", "\n")

	c := NewClassifier(WithBaseDir(dir))
	ctx := context.Background()

	for name, tc := range map[string]struct {
		token    string
		expected string
	}{
		"txt values are unique and sorted": {
			token:    "user:users.txt",
			expected: `{"terms":{"user":["alice","bob"]}}`,
		},
		"csv first column": {
			token:    "host:hosts.csv",
			expected: `{"terms":{"host":["web01","web02"]}}`,
		},
		"json default selector, bad lines skipped": {
			token:    "event_id:events.json",
			expected: `{"terms":{"event_id":["a1","a2"]}}`,
		},
		"json selector picks a flattened key": {
			token:    "user:events.json[user.name]",
			expected: `{"terms":{"user":["alice","bob"]}}`,
		},
		"wildcard mode": {
			token:    "user:*users.txt",
			expected: `{"bool":{"minimum_should_match":"1","should":[{"wildcard":{"user":{"value":"alice"}}},{"wildcard":{"user":{"value":"bob"}}}]}}`,
		},
		"regexp mode": {
			token:    "user:~users.txt",
			expected: `{"bool":{"minimum_should_match":"1","should":[{"regexp":{"user":{"value":"alice"}}},{"regexp":{"user":{"value":"bob"}}}]}}`,
		},
	} {
		t.Run(name, func(t *testing.T) {
			results, err := c.Classify(ctx, tc.token)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.JSONEq(t, tc.expected, conditionJSON(t, results[0]))
		})
	}

	t.Run("missing file falls through to free text", func(t *testing.T) {
		results, err := c.Classify(ctx, "user:missing.txt")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, Fragment{Text: "user:missing.txt"}, results[0])
	})

	t.Run("empty json expansion is fatal", func(t *testing.T) {
		_, err := c.Classify(ctx, "user:empty.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "produced no values")
	})
}

func TestClassifyNested(t *testing.T) {
	log.InitTestLogger()

	c := NewClassifier()
	ctx := context.Background()

	results, err := c.Classify(ctx, `events:"=events.type:alert severity"`)
	require.NoError(t, err)
	require.Len(t, results, 1)

	nq, ok := results[0].(NestedQuery)
	require.True(t, ok, "result should be a nested query, got %T", results[0])
	assert.Equal(t, "events", nq.Path)

	src, err := nq.Sub.Query().Source()
	require.NoError(t, err)
	body, err := json.Marshal(src)
	require.NoError(t, err)
	assert.JSONEq(
		t,
		`{"bool":{"must":[{"term":{"events.type":"alert"}},{"query_string":{"analyze_wildcard":true,"query":"severity"}}]}}`,
		string(body),
	)
}

func TestClassifyNestedDepthLimit(t *testing.T) {
	log.InitTestLogger()

	c := NewClassifier(WithMaxNestedDepth(1))
	results, err := c.Classify(context.Background(), `events:"=events.type:alert"`)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// over the limit the token degrades to a free text fragment
	frag, ok := results[0].(Fragment)
	require.True(t, ok, "result should be a fragment, got %T", results[0])
	assert.Equal(t, `events:"=events.type:alert"`, frag.Text)
}

func TestClassifyQuotedPhraseIsNotNested(t *testing.T) {
	log.InitTestLogger()

	c := NewClassifier()
	results, err := c.Classify(context.Background(), `message:"plain words only"`)
	require.NoError(t, err)
	require.Len(t, results, 1)

	frag, ok := results[0].(Fragment)
	require.True(t, ok, "result should be a fragment, got %T", results[0])
	assert.Equal(t, `message:"plain\ words\ only"`, frag.Text)
}
