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

package ideastore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the idea does not exist in the store.
var ErrNotFound = errors.New("not found")

// IdeaStore is the part of the idea aggregate the vote ledger talks to.
// The vote ledger and the idea store do not share a transaction, so every
// call here is a separate, independently failing operation.
type IdeaStore interface {
	// SetVoteCount stores an absolute count; repeating it is harmless.
	SetVoteCount(ctx context.Context, ideaID uint64, count int64) error
	GetOwner(ctx context.Context, ideaID uint64) (uint64, error)
}
