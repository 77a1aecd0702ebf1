/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"sync"
	"time"
)

// frameInterval approximates one animation tick.
const frameInterval = 16 * time.Millisecond

// Scheduler coalesces redraw requests: any number of Request calls within
// one frame interval produce a single run of the callback. Safe for
// concurrent use; the callback runs on the scheduler's own timer goroutine.
type Scheduler struct {
	mu      sync.Mutex
	run     func()
	delay   time.Duration
	timer   *time.Timer
	pending bool
	stopped bool
}

// NewScheduler returns a scheduler invoking run at most once per frame.
func NewScheduler(run func()) *Scheduler {
	return &Scheduler{run: run, delay: frameInterval}
}

// Request marks the frame dirty. If a frame is already pending this is a
// no-op, so bursts collapse into one draw.
func (s *Scheduler) Request() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending || s.stopped {
		return
	}
	s.pending = true
	s.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		s.pending = false
		stopped := s.stopped
		s.mu.Unlock()
		if !stopped {
			s.run()
		}
	})
}

// Cancel drops a pending frame without running it.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.pending = false
}

// Stop cancels and prevents any further frames.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.pending = false
}
