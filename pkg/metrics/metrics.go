// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// serdeNamespace 是当前项目所有 Prometheus 指标使用的命名空间。
	serdeNamespace = "yaml_serde"

	// 以下为当前使用的通用标签名。
	formatLabelName = "format"
	statusLabelName = "status"

	StatusOK   = "ok"
	StatusFail = "fail"
)

var (
	SerializeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: serdeNamespace,
			Name:      "serialize_total",
			Help:      "serialize 调用总次数，按 format 与结果区分",
		}, []string{formatLabelName, statusLabelName})

	DeserializeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: serdeNamespace,
			Name:      "deserialize_total",
			Help:      "deserialize 调用总次数，按 format 与结果区分",
		}, []string{formatLabelName, statusLabelName})

	StrategyCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: serdeNamespace,
			Name:      "strategy_cache_hits",
			Help:      "策略解析命中缓存的次数",
		})

	StrategyCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: serdeNamespace,
			Name:      "strategy_cache_misses",
			Help:      "策略解析未命中缓存、触发构建的次数",
		})

	metricRegisterer prometheus.Registerer
)

// GetRegisterer 返回全局 Prometheus Registerer。
// 如果尚未通过 Register 显式设置，则返回 prometheus.DefaultRegisterer。
func GetRegisterer() prometheus.Registerer {
	if metricRegisterer == nil {
		return prometheus.DefaultRegisterer
	}
	return metricRegisterer
}

// Register 注册当前定义的所有指标。
// 通常应在 init 函数中调用。
func Register(r prometheus.Registerer) {
	r.MustRegister(SerializeTotal)
	r.MustRegister(DeserializeTotal)
	r.MustRegister(StrategyCacheHits)
	r.MustRegister(StrategyCacheMisses)
	metricRegisterer = r
}
