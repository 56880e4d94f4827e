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
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

// HandleInterrupt blocks until the process is interrupted, then runs onInterrupt and exits.
func HandleInterrupt(onInterrupt func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	if onInterrupt != nil {
		onInterrupt()
	}
	log.Fatal().Msg("process interrupted")
}
