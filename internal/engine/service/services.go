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

package service

// Services 聚合所有业务服务，供 router 和 bootstrap 使用
type Services struct {
	Idea         *IdeaService
	Vote         *VoteService
	Reconcile    *ReconcileService
	Notification *NotificationService
	Bookmark     *BookmarkService
}

func NewServices(
	idea *IdeaService,
	vote *VoteService,
	reconcile *ReconcileService,
	notification *NotificationService,
	bookmark *BookmarkService,
) *Services {
	return &Services{
		Idea:         idea,
		Vote:         vote,
		Reconcile:    reconcile,
		Notification: notification,
		Bookmark:     bookmark,
	}
}
