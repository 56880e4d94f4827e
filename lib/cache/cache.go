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

package cache

// Lookup is the value we store against a normalised term.
// Dictionary is the label of the entity the term belongs to.
type Lookup struct {
	Dictionary  string            `json:"dictionary"`
	Identifiers map[string]string `json:"identifiers,omitempty"`
}

// Type names a dictionary backend.
type Type string

const (
	Local         Type = "local"
	Redis         Type = "redis"
	Elasticsearch Type = "elasticsearch"
)
