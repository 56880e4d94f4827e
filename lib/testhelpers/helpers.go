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

package testhelpers

import (
	"context"
	"net/http"
	"strings"

	"github.com/stretchr/testify/mock"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/entity"
)

// Recogniser is a mock recogniser.Client.
type Recogniser struct {
	mock.Mock
}

func (r *Recogniser) Recognise(ctx context.Context, text string) ([]entity.RawSpan, error) {
	args := r.Called(ctx, text)
	spans, _ := args.Get(0).([]entity.RawSpan)
	return spans, args.Error(1)
}

// HttpClient is a mock lib.HttpClient.
type HttpClient struct {
	mock.Mock
}

func (h *HttpClient) Do(req *http.Request) (*http.Response, error) {
	args := h.Called(req)
	resp, _ := args.Get(0).(*http.Response)
	return resp, args.Error(1)
}

// Gazetteer is a recogniser which labels every occurrence of the given terms.
// Terms are matched case sensitively and may overlap.
type Gazetteer map[string]string

func (g Gazetteer) Recognise(_ context.Context, text string) ([]entity.RawSpan, error) {
	var spans []entity.RawSpan
	for term, label := range g {
		if term == "" {
			continue
		}
		from := 0
		for {
			i := strings.Index(text[from:], term)
			if i < 0 {
				break
			}
			start := from + i
			spans = append(spans, entity.RawSpan{Label: label, Start: start, End: start + len(term)})
			from = start + 1
		}
	}
	return spans, nil
}
