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
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/engine"
)

// config structure
type anonymiserAPIConfig struct {
	lib.BaseConfig `mapstructure:",squash"`
	engine.Config  `mapstructure:",squash"`
	Server         struct {
		HttpPort       int           `mapstructure:"http_port"`
		MaxConcurrent  int64         `mapstructure:"max_concurrent"`
		RequestTimeout time.Duration `mapstructure:"request_timeout"`
		AllowOrigins   []string      `mapstructure:"allow_origins"`
	}
}

var config anonymiserAPIConfig

func defaultConfig() map[string]interface{} {
	defaults := engine.Defaults()
	defaults["log_level"] = "info"
	defaults["server"] = map[string]interface{}{
		"http_port":       8080,
		"max_concurrent":  4,
		"request_timeout": "2m",
		"allow_origins":   []string{"*"},
	}
	return defaults
}

func main() {
	if err := lib.InitializeConfig("./config/anonymiser-api.yml", defaultConfig(), &config); err != nil {
		log.Fatal().Err(err).Send()
	}

	e, err := engine.New(config.Config)
	if err != nil {
		log.Fatal().Err(err).Msg("could not build the anonymiser")
	}
	go lib.HandleInterrupt(func() {
		if err := e.Close(); err != nil {
			log.Error().Err(err).Msg("closing recognisers")
		}
	})

	r := gin.New()
	r.Use(gin.LoggerWithFormatter(lib.JsonLogFormatter), gin.Recovery())
	r.Use(cors.New(corsConfig(config.Server.AllowOrigins)))

	s := server{controller: newController(e, config.Server.MaxConcurrent, config.Server.RequestTimeout)}
	s.RegisterRoutes(r)

	log.Info().Int("port", config.Server.HttpPort).Msg("serving")
	if err := r.Run(fmt.Sprintf(":%d", config.Server.HttpPort)); err != nil {
		_ = e.Close()
		log.Fatal().Err(err).Send()
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	for _, origin := range origins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}
