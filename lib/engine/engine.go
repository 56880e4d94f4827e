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

// Package engine assembles an anonymiser, its recognisers and their connections from config.
package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/anonymiser"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/blocklist"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/cache"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/cache/local"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/cache/remote"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/chunk"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/detect"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/dict"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/recogniser"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/recogniser/dictionary"
	grpc_recogniser "gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/recogniser/grpc-recogniser"
	http_recogniser "gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/recogniser/http-recogniser"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/recogniser/regexer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type RecogniserType string

const (
	Http       RecogniserType = "http"
	Grpc       RecogniserType = "grpc"
	Dictionary RecogniserType = "dictionary"
	Regex      RecogniserType = "regex"
)

type DictionaryConfig struct {
	Backend             cache.Type
	Path                string
	CompoundTokenLength int  `mapstructure:"compound_token_length"`
	TokenCache          bool `mapstructure:"token_cache"`
	Redis               remote.RedisConfig
	Elasticsearch       remote.ElasticsearchConfig
}

type Config struct {
	ChunkSize   int `mapstructure:"chunk_size"`
	Blocklist   string
	Recognisers struct {
		Enabled    []RecogniserType
		Timeout    time.Duration
		Http       http_recogniser.Config
		Grpc       struct{ Address string }
		Dictionary DictionaryConfig
		Regex      struct{ Path string }
	}
}

// Defaults is the config for local development: pattern matchers plus a local gazetteer.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"chunk_size": chunk.DefaultChunkSize,
		"blocklist":  "",
		"recognisers": map[string]interface{}{
			"enabled": []string{string(Dictionary)},
			"timeout": "30s",
			"http": map[string]interface{}{
				"url":         "http://localhost:8001/classify",
				"offset_unit": string(http_recogniser.Runes),
				"min_score":   0.0,
			},
			"grpc": map[string]interface{}{
				"address": "localhost:50051",
			},
			"dictionary": map[string]interface{}{
				"backend":               string(cache.Local),
				"path":                  "./resources/gazetteer.tsv",
				"compound_token_length": dictionary.DefaultCompoundTokenLength,
				"token_cache":           false,
				"redis": map[string]interface{}{
					"host": "localhost",
					"port": 6379,
				},
				"elasticsearch": map[string]interface{}{
					"host":  "localhost",
					"port":  9200,
					"index": "gazetteer",
				},
			},
			"regex": map[string]interface{}{
				"path": "./resources/regexps.yml",
			},
		},
	}
}

// Engine holds the anonymiser and whatever connections its recognisers opened.
type Engine struct {
	*anonymiser.Anonymiser
	closers []func() error
}

// Close releases every connection. It returns the first error found.
func (e *Engine) Close() error {
	var first error
	for _, c := range e.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func New(conf Config) (*Engine, error) {
	e := &Engine{}

	r, err := e.recogniser(conf)
	if err != nil {
		_ = e.Close()
		return nil, err
	}

	opts := []anonymiser.Option{
		anonymiser.WithSplitter(chunk.NewMarkdownSplitter(conf.ChunkSize)),
		anonymiser.WithLogger(log.Logger),
	}
	if conf.Blocklist != "" {
		bl, err := blocklist.Load(conf.Blocklist)
		if err != nil {
			_ = e.Close()
			return nil, err
		}
		opts = append(opts, anonymiser.WithBlocklist(*bl))
	}

	e.Anonymiser = anonymiser.New(detect.NewCollector(r), opts...)
	return e, nil
}

// recogniser composes the enabled recognisers. With none enabled only the pattern matchers run.
func (e *Engine) recogniser(conf Config) (recogniser.Client, error) {
	var clients []recogniser.Client
	for _, name := range conf.Recognisers.Enabled {
		var client recogniser.Client
		switch name {
		case Http:
			client = http_recogniser.New(conf.Recognisers.Http, nil)
		case Grpc:
			conn, err := grpc.Dial(conf.Recognisers.Grpc.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return nil, err
			}
			e.closers = append(e.closers, conn.Close)
			client = grpc_recogniser.New(conn)
		case Dictionary:
			backend, err := NewDictionaryBackend(conf.Recognisers.Dictionary)
			if err != nil {
				return nil, err
			}
			e.closers = append(e.closers, backend.Close)

			opts := []dictionary.Option{dictionary.WithCompoundTokenLength(conf.Recognisers.Dictionary.CompoundTokenLength)}
			if conf.Recognisers.Dictionary.TokenCache {
				opts = append(opts, dictionary.WithTokenCache(local.New()))
			}
			client = dictionary.New(backend, opts...)
		case Regex:
			r, err := regexer.Load(conf.Recognisers.Regex.Path)
			if err != nil {
				return nil, err
			}
			client = r
		default:
			return nil, fmt.Errorf("unknown recogniser %q", name)
		}
		log.Info().Str("recogniser", string(name)).Msg("recogniser enabled")
		clients = append(clients, recogniser.WithTimeout(client, conf.Recognisers.Timeout))
	}

	if len(clients) == 0 {
		log.Warn().Msg("no recognisers enabled, only emails and phone numbers will be found")
		return nil, nil
	}
	return recogniser.Compose(clients...), nil
}

// NewDictionaryBackend connects to the configured gazetteer store. The local backend is
// filled from the tsv file at conf.Path.
func NewDictionaryBackend(conf DictionaryConfig) (remote.Client, error) {
	switch conf.Backend {
	case cache.Local, "":
		store := local.New()
		f, err := os.Open(conf.Path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		n, err := dict.Import(f, filepath.Base(conf.Path), store, 0)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", conf.Path, err)
		}
		log.Info().Str("path", conf.Path).Int("terms", n).Msg("gazetteer loaded")
		return store, nil
	case cache.Redis:
		client := remote.NewRedisClient(conf.Redis)
		if !client.Ready() {
			_ = client.Close()
			return nil, fmt.Errorf("redis at %s:%d is not ready", conf.Redis.Host, conf.Redis.Port)
		}
		return client, nil
	case cache.Elasticsearch:
		client, err := remote.NewElasticsearchClient(conf.Elasticsearch)
		if err != nil {
			return nil, err
		}
		if !client.Ready() {
			return nil, fmt.Errorf("elasticsearch at %s:%d is not ready", conf.Elasticsearch.Host, conf.Elasticsearch.Port)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown dictionary backend %q", conf.Backend)
	}
}
