// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dispatch

import "errors"

var (
	// ErrPatternInvalid indicates that a route template does not begin with '/'.
	ErrPatternInvalid = errors.New("pattern must begin with '/'")

	// ErrCaptureUnterminated indicates that a capture segment was opened with '<' but never closed.
	ErrCaptureUnterminated = errors.New("capture segment is not terminated")

	// ErrCaptureNameEmpty indicates that a capture segment declares no name before ':'.
	ErrCaptureNameEmpty = errors.New("capture name is empty")

	// ErrCaptureNameInvalid indicates that a capture name contains characters outside [A-Za-z0-9_].
	ErrCaptureNameInvalid = errors.New("capture name must contain only letters, digits or underscores")

	// ErrCaptureNameDuplicate indicates that the same capture name appears twice in one pattern.
	ErrCaptureNameDuplicate = errors.New("duplicate capture name")

	// ErrCaptureConstraintInvalid indicates that a capture constraint is not a valid regular expression.
	ErrCaptureConstraintInvalid = errors.New("capture constraint is not a valid regular expression")

	// ErrHandlerNil indicates that a route was registered with a nil handler.
	ErrHandlerNil = errors.New("handler must not be nil")

	// ErrMiddlewareNil indicates that a nil middleware was registered.
	ErrMiddlewareNil = errors.New("middleware must not be nil")

	// ErrDispatcherFrozen indicates that registration was attempted after serving started.
	ErrDispatcherFrozen = errors.New("dispatcher is frozen; register routes, middleware and state before serving")

	// ErrStateValueNil indicates that a nil value was staged into the state container.
	ErrStateValueNil = errors.New("state value must not be nil")

	// ErrStateValueMissing indicates that no state value is stored under the requested type.
	ErrStateValueMissing = errors.New("no state value for type")

	// ErrServerTimeoutInvalid indicates that the server timeout value must be positive.
	ErrServerTimeoutInvalid = errors.New("server timeout must be positive")
)
