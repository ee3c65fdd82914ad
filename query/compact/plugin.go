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
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/opskit/estools/mapping"
	"github.com/opskit/estools/query/body"
)

// fieldRe 字段名的通用形态
var fieldRe = regexp.MustCompile(`^[\w.@-]+$`)

// PluginFunc inspects one token. ok reports whether the plugin claims the
// token; a claimed token with an error aborts the whole classification.
type PluginFunc func(ctx context.Context, token string) (results []Result, ok bool, err error)

// Plugin 一条识别重写规则，Priority 越小越先执行
type Plugin struct {
	Name     string
	Priority int
	Func     PluginFunc
}

type options struct {
	fieldTypes  mapping.FieldTypes
	baseDir     string
	maxDepth    int
	defaultJoin string
	target      body.Section
}

type Option func(*options)

// WithFieldTypes 注入字段类型元数据，仅文本匹配插件使用
func WithFieldTypes(ft mapping.FieldTypes) Option {
	return func(o *options) {
		o.fieldTypes = ft
	}
}

// WithBaseDir 文件展开插件解析相对路径的根目录
func WithBaseDir(dir string) Option {
	return func(o *options) {
		o.baseDir = dir
	}
}

// WithMaxNestedDepth 覆盖 nested 子查询的最大递归层级
func WithMaxNestedDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithDefaultJoin 覆盖默认连接符，仅接受 AND / OR
func WithDefaultJoin(join string) Option {
	return func(o *options) {
		join = strings.ToUpper(join)
		if join == opAnd || join == opOr {
			o.defaultJoin = join
		}
	}
}

// WithTarget 条件语句默认写入的区块，must 或者 filter
func WithTarget(section body.Section) Option {
	return func(o *options) {
		if section == body.Must || section == body.Filter {
			o.target = section
		}
	}
}

func defaultOptions() *options {
	o := &options{
		maxDepth:    viper.GetInt(MaxNestedDepthConfigPath),
		defaultJoin: strings.ToUpper(viper.GetString(DefaultJoinConfigPath)),
		target:      body.Must,
	}
	if o.maxDepth <= 0 {
		o.maxDepth = defaultMaxNestedDepth
	}
	if o.defaultJoin != opAnd && o.defaultJoin != opOr {
		o.defaultJoin = defaultJoin
	}
	return o
}

// Classifier runs the ordered plugin chain over single tokens. Apart from
// the bounded file read in the file expansion plugin it is a pure function
// of the token and of the static field type metadata.
type Classifier struct {
	opts  *options
	depth int

	plugins []Plugin
}

// NewClassifier .
func NewClassifier(opts ...Option) *Classifier {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return newClassifier(o, 0)
}

func newClassifier(o *options, depth int) *Classifier {
	c := &Classifier{
		opts:  o,
		depth: depth,
	}
	c.plugins = []Plugin{
		{Name: "fileterms", Priority: 10, Func: c.fileTerms},
		{Name: "textops", Priority: 20, Func: c.textOps},
		{Name: "ranges", Priority: 30, Func: c.ranges},
		{Name: "underscored", Priority: 40, Func: c.underscored},
		{Name: "cidr", Priority: 50, Func: c.cidr},
		{Name: "barewords", Priority: 60, Func: c.bareWords},
		{Name: "nested", Priority: 70, Func: c.nested},
		{Name: "autoescape", Priority: 80, Func: c.autoEscape},
	}
	sort.SliceStable(c.plugins, func(i, j int) bool {
		return c.plugins[i].Priority < c.plugins[j].Priority
	})
	return c
}

// child 构建下一层级的分类器，nested 插件递归时使用
func (c *Classifier) child() *Classifier {
	return newClassifier(c.opts, c.depth+1)
}

// Classify runs the chain; the first plugin to claim the token wins and
// unclaimed tokens fall through to the identity fragment.
func (c *Classifier) Classify(ctx context.Context, token string) ([]Result, error) {
	for _, p := range c.plugins {
		results, ok, err := p.Func(ctx, token)
		if err != nil {
			return nil, errors.Wrapf(err, "plugin %s rejected token %q", p.Name, token)
		}
		if ok {
			return results, nil
		}
	}
	return []Result{Fragment{Text: token}}, nil
}
