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

package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/cache"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/cache/remote"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/dict"
)

// config structure
type dictionaryImporterConfig struct {
	lib.BaseConfig `mapstructure:",squash"`
	Dictionary     struct {
		Path string
	}
	Backend       cache.Type `mapstructure:"dictionary_backend"`
	PipelineSize  int        `mapstructure:"pipeline_size"`
	Redis         remote.RedisConfig
	Elasticsearch remote.ElasticsearchConfig
}

var config dictionaryImporterConfig

func initConfig() {
	// initialise config with defaults.
	err := lib.InitializeConfig("./config/dictionary-importer.yml", map[string]interface{}{
		"log_level":          "info",
		"dictionary_backend": cache.Redis,
		"pipeline_size":      10000,
		"dictionary": map[string]interface{}{
			"path": "./resources/gazetteer.tsv",
		},
		"redis": map[string]interface{}{
			"host": "localhost",
			"port": 6379,
		},
		"elasticsearch": map[string]interface{}{
			"host":  "localhost",
			"port":  9200,
			"index": "gazetteer",
		},
	}, &config)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}

func main() {
	initConfig()

	var dbClient remote.Client
	var err error
	switch config.Backend {
	case cache.Redis:
		dbClient = remote.NewRedisClient(config.Redis)
	case cache.Elasticsearch:
		dbClient, err = remote.NewElasticsearchClient(config.Elasticsearch)
		if err != nil {
			log.Fatal().Err(err).Send()
		}
	default:
		log.Fatal().Str("backend", string(config.Backend)).Msg("invalid backend database type")
	}
	defer dbClient.Close()

	gazetteer, err := os.Open(config.Dictionary.Path)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	defer gazetteer.Close()

	for !dbClient.Ready() {
		log.Info().Msg("database is not ready, waiting...")
		time.Sleep(10 * time.Second)
	}

	start := time.Now()
	n, err := dict.Import(gazetteer, filepath.Base(config.Dictionary.Path), dbClient, config.PipelineSize)
	if err != nil {
		log.Fatal().Err(err).Int("terms", n).Send()
	}
	log.Info().Int("terms", n).Dur("elapsed", time.Since(start)).Msg("gazetteer imported")
}
