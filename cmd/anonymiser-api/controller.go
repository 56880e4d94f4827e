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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/extract"
	"golang.org/x/sync/semaphore"
)

var errTimeout = errors.New("request timed out")

type pipeline interface {
	Anonymize(ctx context.Context, text string) (*entity.Result, error)
	Extract(ctx context.Context, text string) (entity.Inventory, error)
	Deanonymize(ctx context.Context, anonymized string, mapping []entity.Occurrence) string
}

type controller struct {
	pipeline pipeline
	gate     *semaphore.Weighted
	timeout  time.Duration
}

func newController(p pipeline, maxConcurrent int64, timeout time.Duration) controller {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return controller{
		pipeline: p,
		gate:     semaphore.NewWeighted(maxConcurrent),
		timeout:  timeout,
	}
}

type outcome[T any] struct {
	value T
	err   error
}

/**
	offload runs fn on its own goroutine once a slot of the worker gate is free, and waits for
	it until the request times out. On timeout the caller gets errTimeout straight away; fn keeps
	its slot until it returns, so a stuck recogniser cannot cause unbounded work. The result only
	travels over the channel, so an abandoned fn never shares memory with the caller.
**/
func offload[T any](ctx context.Context, c controller, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.gate.Acquire(ctx, 1); err != nil {
		return zero, errTimeout
	}

	done := make(chan outcome[T], 1)
	go func() {
		defer c.gate.Release(1)
		v, err := fn(ctx)
		done <- outcome[T]{value: v, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil && ctx.Err() != nil {
			return zero, errTimeout
		}
		return o.value, o.err
	case <-ctx.Done():
		return zero, errTimeout
	}
}

func (c controller) AnonymizeText(ctx context.Context, text string) (*entity.Result, error) {
	return offload(ctx, c, func(ctx context.Context) (*entity.Result, error) {
		return c.pipeline.Anonymize(ctx, text)
	})
}

func (c controller) AnonymizeFile(ctx context.Context, path string) (*entity.Result, error) {
	if !extract.Supported(path) {
		return nil, lib.NewInputFormatError(fmt.Sprintf("unsupported file extension, expected one of %v", extract.SupportedExtensions()), nil)
	}

	return offload(ctx, c, func(ctx context.Context) (*entity.Result, error) {
		text, err := extract.Extract(path)
		if err != nil {
			return nil, err
		}
		return c.pipeline.Anonymize(ctx, text)
	})
}

func (c controller) ExtractText(ctx context.Context, text string) (entity.Inventory, error) {
	return offload(ctx, c, func(ctx context.Context) (entity.Inventory, error) {
		return c.pipeline.Extract(ctx, text)
	})
}

type anonymizedPayload struct {
	AnonymizedText *string              `json:"anonymized_text"`
	EntityMapping  *[]entity.Occurrence `json:"entity_mapping"`
}

// Deanonymize restores the text of a serialised anonymisation result.
func (c controller) Deanonymize(ctx context.Context, anonymizedJson string) (string, error) {
	var payload anonymizedPayload
	if err := json.Unmarshal([]byte(anonymizedJson), &payload); err != nil {
		return "", lib.NewInputFormatError("invalid json", err)
	}
	if payload.AnonymizedText == nil || payload.EntityMapping == nil {
		return "", lib.NewInputFormatError("invalid json: missing required fields 'anonymized_text' or 'entity_mapping'", nil)
	}

	return offload(ctx, c, func(ctx context.Context) (string, error) {
		return c.pipeline.Deanonymize(ctx, *payload.AnonymizedText, *payload.EntityMapping), nil
	})
}
