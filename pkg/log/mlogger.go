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

package log

import (
	"sync"

	"github.com/uber/jaeger-client-go/utils"
	"go.uber.org/zap"
)

var _namedRateLimiters sync.Map

// MLogger 是 zap.Logger 的包装，提供带限流的日志方法。
type MLogger struct {
	*zap.Logger
	rateGroup string
}

// With 创建一个携带额外字段的子 MLogger。
func (l *MLogger) With(fields ...zap.Field) *MLogger {
	return &MLogger{
		Logger:    l.Logger.With(fields...),
		rateGroup: l.rateGroup,
	}
}

// WithRateGroup 为 MLogger 绑定一个命名限流组。
// 同名限流组共享同一个限流器实例。
func (l *MLogger) WithRateGroup(groupName string, creditPerSecond, maxBalance float64) *MLogger {
	if _, ok := _namedRateLimiters.Load(groupName); !ok {
		rl := utils.NewRateLimiter(creditPerSecond, maxBalance)
		_namedRateLimiters.Store(groupName, rl)
	}
	return &MLogger{
		Logger:    l.Logger,
		rateGroup: groupName,
	}
}

func (l *MLogger) r() RateLimiter {
	if l.rateGroup != "" {
		if rl, ok := _namedRateLimiters.Load(l.rateGroup); ok {
			return rl.(RateLimiter)
		}
	}
	return R()
}

// RatedDebug 以 Debug 级别输出限流日志。
// 返回值为 true 表示本次日志已成功输出。
func (l *MLogger) RatedDebug(cost float64, msg string, fields ...zap.Field) bool {
	if l.r().CheckCredit(cost) {
		l.Debug(msg, fields...)
		return true
	}
	return false
}

// RatedInfo 以 Info 级别输出限流日志。
// 返回值为 true 表示本次日志已成功输出。
func (l *MLogger) RatedInfo(cost float64, msg string, fields ...zap.Field) bool {
	if l.r().CheckCredit(cost) {
		l.Info(msg, fields...)
		return true
	}
	return false
}

// RatedWarn 以 Warn 级别输出限流日志。
// 返回值为 true 表示本次日志已成功输出。
func (l *MLogger) RatedWarn(cost float64, msg string, fields ...zap.Field) bool {
	if l.r().CheckCredit(cost) {
		l.Warn(msg, fields...)
		return true
	}
	return false
}
