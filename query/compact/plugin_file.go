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
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	elastic "github.com/olivere/elastic/v7"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/opskit/estools/internal/json"
	"github.com/opskit/estools/internal/set"
	"github.com/opskit/estools/log"
)

// fileTokenRe field:[*~]path.ext[ [selector] ]，* 按 wildcard 展开，~ 按 regexp 展开
var fileTokenRe = regexp.MustCompile(`^([\w.@-]+):([*~]?)([\w./@~-]*\.(?:txt|dat|csv|json))(?:\[([^\[\]]+)\])?$`)

const defaultJSONSelector = "_id"

// fileTerms expands a local file into one structured clause: a terms filter
// over the unique values, or a bool/should of per-value wildcard/regexp
// clauses when the filename carries a match-mode prefix. A missing or
// unreadable file declines so the token falls through to the other plugins.
func (c *Classifier) fileTerms(ctx context.Context, token string) ([]Result, bool, error) {
	m := fileTokenRe.FindStringSubmatch(token)
	if m == nil {
		return nil, false, nil
	}
	field, mode, path, selector := m[1], m[2], m[3], m[4]

	if c.opts.baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(c.opts.baseDir, path)
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, false, nil
	}
	maxBytes := viper.GetInt64(MaxExpansionFileBytesConfigPath)
	if maxBytes <= 0 {
		maxBytes = defaultMaxFileBytes
	}
	if info.Size() > maxBytes {
		log.Warnf(ctx, "expansion file %s exceeds %d bytes, token kept as free text", path, maxBytes)
		return nil, false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		log.Debugf(ctx, "expansion file %s unreadable: %s", path, err)
		return nil, false, nil
	}
	defer func() {
		_ = f.Close()
	}()

	var values []string
	isJSON := strings.EqualFold(filepath.Ext(path), ".json")
	switch {
	case isJSON:
		values = c.readJSONValues(ctx, path, f, selector)
	case strings.EqualFold(filepath.Ext(path), ".csv"):
		values, err = readCSVColumn(f)
		if err != nil {
			log.Debugf(ctx, "expansion file %s csv parse failed: %s", path, err)
			return nil, false, nil
		}
	default:
		values = readLines(f)
	}

	uniq := set.New[string](values...)
	arr := uniq.ToArray()
	sort.Strings(arr)

	if len(arr) == 0 {
		if isJSON {
			key := selector
			if key == "" {
				key = defaultJSONSelector
			}
			return nil, false, errors.Errorf("expansion file %s produced no values for key %s", path, key)
		}
		return nil, false, nil
	}

	var q elastic.Query
	switch mode {
	case "*":
		should := make([]elastic.Query, 0, len(arr))
		for _, v := range arr {
			should = append(should, elastic.NewWildcardQuery(field, v))
		}
		q = elastic.NewBoolQuery().Should(should...).MinimumShouldMatch("1")
	case "~":
		should := make([]elastic.Query, 0, len(arr))
		for _, v := range arr {
			should = append(should, elastic.NewRegexpQuery(field, v))
		}
		q = elastic.NewBoolQuery().Should(should...).MinimumShouldMatch("1")
	default:
		vals := make([]any, 0, len(arr))
		for _, v := range arr {
			vals = append(vals, v)
		}
		q = elastic.NewTermsQuery(field, vals...)
	}

	return []Result{Condition{Query: q}}, true, nil
}

func readLines(r io.Reader) []string {
	var values []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		values = append(values, line)
	}
	return values
}

// readCSVColumn 取首列
func readCSVColumn(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	var values []string
	for _, record := range records {
		if len(record) == 0 {
			continue
		}
		v := strings.TrimSpace(record[0])
		if v == "" {
			continue
		}
		values = append(values, v)
	}
	return values, nil
}

// readJSONValues walks newline delimited json objects, flattens each one and
// picks the selector key. Malformed lines are reported with their line
// number and skipped.
func (c *Classifier) readJSONValues(ctx context.Context, path string, r io.Reader, selector string) []string {
	if selector == "" {
		selector = defaultJSONSelector
	}
	var values []string
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		flat, err := json.ParseObject("", line)
		if err != nil {
			log.Warnf(ctx, "expansion file %s line %d: %s", path, lineNo, err)
			continue
		}
		v, ok := flat[selector]
		if !ok {
			continue
		}
		values = append(values, cast.ToString(v))
	}
	return values
}
