/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package relayd

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := SignToken("s3cret", "alice", true, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	claims, err := verifyToken("s3cret", tok)
	if err != nil {
		t.Fatalf("verifyToken: %v", err)
	}
	if claims.Sub != "alice" || !claims.GM {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestSignTokenDefaultsSubject(t *testing.T) {
	tok, err := SignToken("s3cret", "", false, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	claims, err := verifyToken("s3cret", tok)
	if err != nil {
		t.Fatalf("verifyToken: %v", err)
	}
	if claims.Sub != "peer" || claims.GM {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestVerifyTokenRejects(t *testing.T) {
	good, err := SignToken("s3cret", "alice", false, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	expired, err := SignToken("s3cret", "alice", false, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("SignToken expired: %v", err)
	}
	cases := []struct {
		name, secret, token string
	}{
		{"wrong secret", "other", good},
		{"expired", "s3cret", expired},
		{"garbage", "s3cret", "not-a-token"},
		{"tampered payload", "s3cret", "eyJzdWIiOiJnbSJ9." + strings.SplitN(good, ".", 2)[1]},
	}
	for _, tc := range cases {
		if _, err := verifyToken(tc.secret, tc.token); err == nil {
			t.Fatalf("%s: verification succeeded", tc.name)
		}
	}
}

func TestAuthenticatorSources(t *testing.T) {
	tok, err := SignToken("s3cret", "alice", true, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	auth := Authenticator("s3cret")

	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	id, err := auth(r)
	if err != nil {
		t.Fatalf("header token: %v", err)
	}
	if id.UserID != "alice" || !id.IsGM {
		t.Fatalf("identity = %+v", id)
	}

	// Browser websocket clients cannot set headers, so the query
	// parameter works too.
	id, err = auth(httptest.NewRequest("GET", "/ws?token="+tok, nil))
	if err != nil {
		t.Fatalf("query token: %v", err)
	}
	if id.UserID != "alice" {
		t.Fatalf("identity = %+v", id)
	}

	if _, err := auth(httptest.NewRequest("GET", "/ws", nil)); err == nil {
		t.Fatalf("missing token accepted")
	}
}
