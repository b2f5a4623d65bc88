// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shutdown

import (
	"sync"
	"sync/atomic"

	"github.com/google/wire"
)

// ProviderSet shares one Manager between the router and the app runner.
var ProviderSet = wire.NewSet(NewManager)

// Manager flags the process as draining. The router turns new requests away
// once Shutdown has been called.
type Manager struct {
	draining atomic.Bool
	once     sync.Once
	done     chan struct{}
}

func NewManager() *Manager {
	return &Manager{done: make(chan struct{})}
}

// IsShuttingDown returns true once Shutdown has been called
func (m *Manager) IsShuttingDown() bool {
	return m.draining.Load()
}

// Shutdown marks the manager as draining. Only the first call returns true.
func (m *Manager) Shutdown() bool {
	if !m.draining.CompareAndSwap(false, true) {
		return false
	}
	m.once.Do(func() { close(m.done) })
	return true
}

// Done is closed by the first Shutdown; every waiter is released.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}
