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

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

/**
	Instrument runs fn as the operation op, logging before and after it.

	The finishing record carries the elapsed time and the memory allocated while fn ran
	(the process-wide allocation counter, so concurrent work is included). If fn fails, the
	error is logged and returned unchanged.
**/
func Instrument[T any](logger zerolog.Logger, op string, fn func() (T, error)) (T, error) {
	logger.Info().Str("op", op).Msg("starting")

	var before runtime.MemStats
	runtime.ReadMemStats(&before)
	start := time.Now()

	result, err := fn()

	elapsed := time.Since(start)
	var after runtime.MemStats
	runtime.ReadMemStats(&after)
	allocated := float64(after.TotalAlloc-before.TotalAlloc) / 1024

	if err != nil {
		logger.Error().Err(err).Str("op", op).Dur("elapsed", elapsed).Msg("failed")
		return result, err
	}
	logger.Info().Str("op", op).Dur("elapsed", elapsed).Float64("allocated_kib", allocated).Msg("finished")
	return result, nil
}
