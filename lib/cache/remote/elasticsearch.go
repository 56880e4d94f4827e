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

package remote

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v7"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/cache"
)

type ElasticsearchConfig struct {
	Host  string
	Port  int
	Index string
}

// EsLookup is the document stored per term. The document id is the normalised term.
type EsLookup struct {
	Dictionary  string            `json:"dictionary"`
	Synonyms    []string          `json:"synonyms"`
	Identifiers map[string]string `json:"identifiers"`
}

type esResponse struct {
	Responses []struct {
		Hits struct {
			Hits []struct {
				ID     string   `json:"_id"`
				Source EsLookup `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
		Status int `json:"status"`
	} `json:"responses"`
}

func NewElasticsearchClient(conf ElasticsearchConfig) (Client, error) {
	c, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{fmt.Sprintf("http://%s:%d", conf.Host, conf.Port)},
	})
	if err != nil {
		return nil, err
	}
	return &esClient{
		Client: c,
		index:  conf.Index,
	}, nil
}

type esClient struct {
	*elasticsearch.Client
	index string
}

func (e *esClient) Ready() bool {
	res, err := e.Info()
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return res.StatusCode == 200
}

func (e *esClient) Close() error {
	return nil
}

func (e *esClient) NewGetPipeline(size int) GetPipeline {
	return &esPipeline{
		esClient:     e,
		buf:          bytes.NewBuffer(nil),
		currentQuery: make([]string, 0, size),
	}
}

func (e *esClient) NewSetPipeline(size int) SetPipeline {
	return &esPipeline{
		esClient:     e,
		buf:          bytes.NewBuffer(nil),
		currentQuery: make([]string, 0, size),
	}
}

type esPipeline struct {
	*esClient
	buf          *bytes.Buffer
	currentQuery []string
}

func (p *esPipeline) Set(key string, data []byte) {
	p.buf.WriteString(fmt.Sprintf(`{"index":{"_id":"%s"}}%s`, jsonEscape(key), "\n"))
	p.buf.WriteString(fmt.Sprintf("%s%s", string(data), "\n"))
	p.currentQuery = append(p.currentQuery, key)
}

func (p *esPipeline) ExecSet() error {
	if len(p.currentQuery) == 0 {
		return nil
	}
	res, err := p.Bulk(p.buf, p.Bulk.WithIndex(p.index))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return errors.New(res.String())
	}
	return nil
}

func (p *esPipeline) Get(key string) {
	p.buf.WriteString(fmt.Sprintf(`{}%s`, "\n"))
	p.buf.WriteString(fmt.Sprintf(`{"size": 1, "query" : {"ids" : { "values": ["%s"] }}}%s`, jsonEscape(key), "\n"))
	p.currentQuery = append(p.currentQuery, key)
}

func jsonEscape(i string) string {
	b, err := json.Marshal(i)
	if err != nil {
		panic(err)
	}
	s := string(b)
	return s[1 : len(s)-1]
}

func (p *esPipeline) ExecGet(onResult func(string, *cache.Lookup) error) error {
	if len(p.currentQuery) == 0 {
		return nil
	}
	res, err := p.Msearch(p.buf, p.Msearch.WithIndex(p.index))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return errors.New(res.String())
	}

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	var esresponse esResponse
	if err := json.Unmarshal(b, &esresponse); err != nil {
		return err
	}
	if len(esresponse.Responses) != len(p.currentQuery) {
		return fmt.Errorf("elasticsearch returned %d responses for %d queries", len(esresponse.Responses), len(p.currentQuery))
	}

	for i, response := range esresponse.Responses {
		if response.Status != 0 && response.Status != 200 {
			return fmt.Errorf("elasticsearch query for %q failed with status %d", p.currentQuery[i], response.Status)
		}

		var lookup *cache.Lookup
		if len(response.Hits.Hits) > 0 {
			lookup = &cache.Lookup{
				Dictionary:  response.Hits.Hits[0].Source.Dictionary,
				Identifiers: response.Hits.Hits[0].Source.Identifiers,
			}
		}
		if err := onResult(p.currentQuery[i], lookup); err != nil {
			return err
		}
	}
	return nil
}

func (p *esPipeline) Size() int {
	return len(p.currentQuery)
}
