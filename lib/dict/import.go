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

package dict

import (
	"encoding/json"
	"io"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/cache/remote"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/text"
)

/**
	Import writes every synonym of the gazetteer read from r into client, keyed by its
	normalised form, in batches of batchSize. source is recorded against each term so that
	the origin of a hit can be traced. It returns the number of terms written.

	If a term appears more than once the last label wins.
**/
func Import(r io.Reader, source string, client remote.Client, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	written := 0
	pipe := client.NewSetPipeline(batchSize)

	flush := func() error {
		if pipe.Size() == 0 {
			return nil
		}
		if err := pipe.ExecSet(); err != nil {
			return err
		}
		written += pipe.Size()
		log.Debug().Str("source", source).Int("terms", written).Msg("imported batch")
		pipe = client.NewSetPipeline(batchSize)
		return nil
	}

	onEntry := func(entry Entry) error {
		for _, synonym := range entry.Synonyms {
			key := text.Normalize(synonym)
			data, err := json.Marshal(remote.EsLookup{
				Dictionary:  entry.Label,
				Synonyms:    []string{key},
				Identifiers: map[string]string{"source": source},
			})
			if err != nil {
				return err
			}
			pipe.Set(key, data)

			if pipe.Size() >= batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := ReadWithCallback(r, onEntry, flush); err != nil {
		return written, err
	}
	return written, nil
}
