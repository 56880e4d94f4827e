/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package lib

import "fmt"

// InputFormatError is returned when input can never be processed as given, e.g. a file with an
// unsupported extension or a malformed payload. It is the caller's fault and is not retried.
type InputFormatError struct {
	Reason string
	Err    error
}

func NewInputFormatError(reason string, err error) *InputFormatError {
	return &InputFormatError{Reason: reason, Err: err}
}

func (e *InputFormatError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *InputFormatError) Unwrap() error {
	return e.Err
}
