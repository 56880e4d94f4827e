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

package local

import (
	"encoding/json"
	"sync"

	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/cache"
	"gitlab.mdcatapult.io/informatics/software-engineering/anonymiser/lib/cache/remote"
)

func New() Client {
	return &local{
		store: make(map[string]*cache.Lookup),
		mut:   &sync.RWMutex{},
	}
}

// Client is an in-process store. It also serves as a remote.Client so that a dictionary
// held in memory can be used wherever redis or elasticsearch can.
type Client interface {
	Get(key string) (*cache.Lookup, bool)
	Set(key string, lookup *cache.Lookup)
	Delete(key string)
	Len() int
	remote.Client
}

type local struct {
	store map[string]*cache.Lookup
	mut   *sync.RWMutex
}

// Get returns the lookup held for key. A nil lookup with ok set means the key is known to
// be absent from the dictionary.
func (l *local) Get(key string) (*cache.Lookup, bool) {
	l.mut.RLock()
	defer l.mut.RUnlock()

	lookup, ok := l.store[key]
	return lookup, ok
}

func (l *local) Set(key string, lookup *cache.Lookup) {
	l.mut.Lock()
	defer l.mut.Unlock()

	l.store[key] = lookup
}

func (l *local) Delete(key string) {
	l.mut.Lock()
	defer l.mut.Unlock()

	delete(l.store, key)
}

func (l *local) Len() int {
	l.mut.RLock()
	defer l.mut.RUnlock()

	return len(l.store)
}

func (l *local) Ready() bool {
	return true
}

func (l *local) Close() error {
	return nil
}

func (l *local) NewGetPipeline(size int) remote.GetPipeline {
	return &pipeline{local: l, keys: make([]string, 0, size)}
}

func (l *local) NewSetPipeline(size int) remote.SetPipeline {
	return &pipeline{local: l, keys: make([]string, 0, size), values: make([][]byte, 0, size)}
}

type pipeline struct {
	*local
	keys   []string
	values [][]byte
}

func (p *pipeline) Get(key string) {
	p.keys = append(p.keys, key)
}

func (p *pipeline) ExecGet(onResult func(string, *cache.Lookup) error) error {
	for _, key := range p.keys {
		lookup, _ := p.local.Get(key)
		if err := onResult(key, lookup); err != nil {
			return err
		}
	}
	return nil
}

func (p *pipeline) Set(key string, data []byte) {
	p.keys = append(p.keys, key)
	p.values = append(p.values, data)
}

func (p *pipeline) ExecSet() error {
	for i, key := range p.keys {
		var lookup cache.Lookup
		if err := json.Unmarshal(p.values[i], &lookup); err != nil {
			return err
		}
		p.local.Set(key, &lookup)
	}
	return nil
}

func (p *pipeline) Size() int {
	return len(p.keys)
}
