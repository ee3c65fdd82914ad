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
	"net/netip"
	"strings"

	elastic "github.com/olivere/elastic/v7"
)

// cidr rewrites field:a.b.c.d/n (and IPv6 prefixes) into a range clause
// spanning the first and the last address of the block.
func (c *Classifier) cidr(_ context.Context, token string) ([]Result, bool, error) {
	idx := strings.Index(token, ":")
	if idx <= 0 {
		return nil, false, nil
	}
	field, rest := token[:idx], token[idx+1:]
	if !fieldRe.MatchString(field) {
		return nil, false, nil
	}
	if !strings.Contains(rest, "/") {
		return nil, false, nil
	}

	prefix, err := netip.ParsePrefix(rest)
	if err != nil {
		return nil, false, nil
	}

	first, last := cidrBounds(prefix)
	q := elastic.NewRangeQuery(field).Gte(first.String()).Lte(last.String())
	return []Result{Condition{Query: q}}, true, nil
}

// cidrBounds 计算网段的首末地址
func cidrBounds(p netip.Prefix) (netip.Addr, netip.Addr) {
	first := p.Masked().Addr()

	b := first.AsSlice()
	host := len(b)*8 - p.Bits()
	for i := len(b) - 1; i >= 0 && host > 0; i-- {
		n := host
		if n > 8 {
			n = 8
		}
		b[i] |= byte((1 << n) - 1)
		host -= n
	}
	last, _ := netip.AddrFromSlice(b)
	return first, last
}
