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
	"encoding/json"

	"github.com/gin-gonic/gin"
)

// JsonLogFormatter writes gin request logs as single JSON lines.
func JsonLogFormatter(params gin.LogFormatterParams) string {
	logline := map[string]interface{}{
		"time":    params.TimeStamp.UTC().Format("2006-01-02T15:04:05.999"),
		"status":  params.StatusCode,
		"latency": params.Latency.String(),
		"client":  params.ClientIP,
		"method":  params.Method,
		"path":    params.Path,
	}
	if params.ErrorMessage != "" {
		logline["error"] = params.ErrorMessage
	}
	if len(params.Keys) > 0 {
		logline["context"] = params.Keys
	}
	b, _ := json.Marshal(logline)
	return string(b) + "\n"
}
