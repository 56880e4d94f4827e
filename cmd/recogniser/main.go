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
	"fmt"
	"net"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/cache"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/cache/local"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/engine"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/recogniser"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/recogniser/dictionary"
	grpc_recogniser "gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/recogniser/grpc-recogniser"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/recogniser/regexer"
	"google.golang.org/grpc"
)

// config structure
type recogniserConfig struct {
	lib.BaseConfig `mapstructure:",squash"`
	Server         struct {
		GrpcPort int `mapstructure:"grpc_port"`
	}
	Recogniser engine.RecogniserType
	Dictionary engine.DictionaryConfig
	Regex      struct {
		Path string
	}
}

var config recogniserConfig

func initConfig() {
	// initialise config with defaults.
	err := lib.InitializeConfig("./config/recogniser.yml", map[string]interface{}{
		"log_level":  "info",
		"recogniser": engine.Dictionary,
		"server": map[string]interface{}{
			"grpc_port": 50051,
		},
		"dictionary": map[string]interface{}{
			"backend":               cache.Redis,
			"path":                  "./resources/gazetteer.tsv",
			"compound_token_length": dictionary.DefaultCompoundTokenLength,
			"token_cache":           true,
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
	}, &config)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}

func newRecogniser() (recogniser.Client, func() error, error) {
	switch config.Recogniser {
	case engine.Dictionary:
		backend, err := engine.NewDictionaryBackend(config.Dictionary)
		if err != nil {
			return nil, nil, err
		}
		opts := []dictionary.Option{dictionary.WithCompoundTokenLength(config.Dictionary.CompoundTokenLength)}
		if config.Dictionary.TokenCache {
			opts = append(opts, dictionary.WithTokenCache(local.New()))
		}
		return dictionary.New(backend, opts...), backend.Close, nil
	case engine.Regex:
		r, err := regexer.Load(config.Regex.Path)
		return r, func() error { return nil }, err
	default:
		return nil, nil, fmt.Errorf("recogniser %q cannot be served", config.Recogniser)
	}
}

func main() {
	initConfig()

	r, closeBackend, err := newRecogniser()
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	// start the grpc server
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", config.Server.GrpcPort))
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	grpcServer := grpc.NewServer()
	grpc_recogniser.RegisterServer(grpcServer, r)

	go lib.HandleInterrupt(func() {
		grpcServer.GracefulStop()
		if err := closeBackend(); err != nil {
			log.Error().Err(err).Msg("closing dictionary backend")
		}
	})

	log.Info().Str("recogniser", string(config.Recogniser)).Int("port", config.Server.GrpcPort).Msg("serving")
	if err := grpcServer.Serve(lis); err != nil {
		log.Fatal().Err(err).Send()
	}
}
