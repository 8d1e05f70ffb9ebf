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

package merr

import (
	"github.com/cockroachdb/errors"
)

const (
	CanceledCode int32 = 10000
	TimeoutCode  int32 = 10001
)

type ErrorType int32

const (
	SystemError ErrorType = 0
	InputError  ErrorType = 1
)

var ErrorTypeName = map[ErrorType]string{
	SystemError: "system_error",
	InputError:  "input_error",
}

func (err ErrorType) String() string {
	return ErrorTypeName[err]
}

// Define leaf errors here,
// WARN: take care to add new error,
// check whether you can use the errors below before adding a new one.
// Name: Err + related prefix + error name
var (
	// Strategy resolution related
	ErrStrategyNotResolved    = newSerdeError("no serialization strategy resolved", 100, false)
	ErrStrategyInvalid        = newSerdeError("invalid serialization strategy declared", 101, false)
	ErrStrategyTargetMismatch = newSerdeError("strategy target does not satisfy required capability", 102, false)
	ErrStrategyElemOnString   = newSerdeError("container element type specified for a string type", 103, false)
	ErrStrategyBindFailed     = newSerdeError("strategy cannot be bound to value", 104, false)

	// Wire conversion related
	ErrWireIncompatible = newSerdeError("wire value incompatible with target type", 200, false)

	// Format registry related
	ErrFormatNotRegistered = newSerdeError("serialization format not registered", 300, false)
	ErrFormatReserved      = newSerdeError("serialization format id is reserved", 301, false)
	ErrFormatConflict      = newSerdeError("serialization format already registered", 302, false)

	// Codec related
	ErrCodecEncode          = newSerdeError("encode failed", 400, false)
	ErrCodecDecode          = newSerdeError("decode failed", 401, false)
	ErrCodecUnsupportedType = newSerdeError("type not representable in safe mode", 402, false)

	// IO related
	ErrIoKeyNotFound = newSerdeError("key not found", 1000, false)
	ErrIoFailed      = newSerdeError("IO failed", 1001, false)

	// Parameter related
	ErrParameterInvalid = newSerdeError("invalid parameter", 1100, false)
	ErrParameterMissing = newSerdeError("missing parameter", 1101, false)

	// Do NOT export this,
	// never allow programmer using this, keep only for converting unknown error to serdeError
	errUnexpected = newSerdeError("unexpected error", (1<<16)-1, false)
)

type errorOption func(*serdeError)

func WithDetail(detail string) errorOption {
	return func(err *serdeError) {
		err.detail = detail
	}
}

func WithErrorType(etype ErrorType) errorOption {
	return func(err *serdeError) {
		err.errType = etype
	}
}

type serdeError struct {
	msg       string
	detail    string
	retriable bool
	errCode   int32
	errType   ErrorType
}

func newSerdeError(msg string, code int32, retriable bool, options ...errorOption) serdeError {
	err := serdeError{
		msg:       msg,
		detail:    msg,
		retriable: retriable,
		errCode:   code,
	}

	for _, option := range options {
		option(&err)
	}
	return err
}

func (e serdeError) code() int32 {
	return e.errCode
}

func (e serdeError) Error() string {
	return e.msg
}

func (e serdeError) Detail() string {
	return e.detail
}

func (e serdeError) Is(err error) bool {
	cause := errors.Cause(err)
	if cause, ok := cause.(serdeError); ok {
		return e.errCode == cause.errCode
	}
	return false
}

type multiErrors struct {
	errs []error
}

func (e multiErrors) Unwrap() error {
	if len(e.errs) <= 1 {
		return nil
	}
	// The cause of combined errors is defined as the last one,
	// so peel errors off the front.
	if len(e.errs) == 2 {
		return e.errs[1]
	}

	return multiErrors{
		errs: e.errs[1:],
	}
}

func (e multiErrors) Error() string {
	final := e.errs[0]
	for i := 1; i < len(e.errs); i++ {
		final = errors.Wrap(e.errs[i], final.Error())
	}
	return final.Error()
}

func (e multiErrors) Is(err error) bool {
	for _, item := range e.errs {
		if errors.Is(item, err) {
			return true
		}
	}
	return false
}
