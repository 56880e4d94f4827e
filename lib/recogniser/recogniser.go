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

package recogniser

import (
	"context"
	"time"

	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
)

// Client is an entity recogniser. Offsets of the returned spans are byte offsets into text.
// Implementations must be safe for concurrent use.
type Client interface {
	Recognise(ctx context.Context, text string) ([]entity.RawSpan, error)
}

// Func adapts a function to a Client.
type Func func(ctx context.Context, text string) ([]entity.RawSpan, error)

func (f Func) Recognise(ctx context.Context, text string) ([]entity.RawSpan, error) {
	return f(ctx, text)
}

// Compose runs every client in turn over the same text and concatenates their spans.
// The first error stops the run and is returned as is.
func Compose(clients ...Client) Client {
	if len(clients) == 1 {
		return clients[0]
	}
	return composite(clients)
}

type composite []Client

func (c composite) Recognise(ctx context.Context, text string) ([]entity.RawSpan, error) {
	var spans []entity.RawSpan
	for _, client := range c {
		s, err := client.Recognise(ctx, text)
		if err != nil {
			return nil, err
		}
		spans = append(spans, s...)
	}
	return spans, nil
}

// WithTimeout bounds every call to client by d. A zero or negative d disables the bound.
func WithTimeout(client Client, d time.Duration) Client {
	if d <= 0 {
		return client
	}
	return Func(func(ctx context.Context, text string) ([]entity.RawSpan, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return client.Recognise(ctx, text)
	})
}
