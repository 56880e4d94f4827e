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
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib"
)

const requestIDKey = "request_id"

type HttpError struct {
	code int
	error
}

func (e HttpError) Error() string {
	return e.error.Error()
}

func NewHttpError(code int, err error) HttpError {
	return HttpError{
		code:  code,
		error: err,
	}
}

type server struct {
	controller controller
}

func (s server) RegisterRoutes(r *gin.Engine) {
	r.Use(requestID)
	r.GET("/healthz", s.Health)
	r.GET("/anonymize/text", requireQuery("text"), s.AnonymizeText)
	r.GET("/anonymize/file", requireQuery("file_path"), s.AnonymizeFile)
	r.GET("/deanonymize", requireQuery("anonymized_json"), s.Deanonymize)
	r.GET("/extract/text", requireQuery("text"), s.ExtractText)
}

func (s server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s server) AnonymizeText(c *gin.Context) {
	res, err := s.controller.AnonymizeText(c.Request.Context(), c.Query("text"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s server) AnonymizeFile(c *gin.Context) {
	res, err := s.controller.AnonymizeFile(c.Request.Context(), c.Query("file_path"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s server) ExtractText(c *gin.Context) {
	inventory, err := s.controller.ExtractText(c.Request.Context(), c.Query("text"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, inventory)
}

func (s server) Deanonymize(c *gin.Context) {
	restored, err := s.controller.Deanonymize(c.Request.Context(), c.Query("anonymized_json"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restored_text": restored})
}

// requireQuery rejects requests without the named query parameter. An empty value is allowed.
func requireQuery(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.GetQuery(name); !ok {
			handleError(c, NewHttpError(http.StatusBadRequest, errors.New("missing query parameter "+name)))
			return
		}
		c.Next()
	}
}

func requestID(c *gin.Context) {
	id := c.GetHeader("X-Request-Id")
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDKey, id)
	c.Header("X-Request-Id", id)
	c.Next()
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		abort(c, 500, errors.New("abort called on nil error"))
		return
	}

	var httpErr HttpError
	var inputErr *lib.InputFormatError
	switch {
	case errors.As(err, &httpErr):
		abort(c, httpErr.code, httpErr.error)
	case errors.As(err, &inputErr):
		abort(c, http.StatusBadRequest, inputErr)
	case errors.Is(err, errTimeout):
		abort(c, http.StatusInternalServerError, errors.New("recogniser failure: request timed out"))
	default:
		log.Error().Err(err).Str(requestIDKey, c.GetString(requestIDKey)).Msg("request failed")
		abort(c, http.StatusInternalServerError, errors.New("recogniser failure: "+err.Error()))
	}
}

func abort(c *gin.Context, code int, err error) {
	switch {
	case code <= 500:
		c.JSON(code, map[string]interface{}{
			"status":  code,
			"message": err.Error(),
		})
		c.Abort()
	default:
		_ = c.AbortWithError(code, err)
	}
}
