/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package relayd

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"corkboard/internal/relay"
)

// tokenClaims is the signed payload of a join token. GM marks the token
// as granting write authority; joins claiming more than their token
// carries get clamped by the hub.
type tokenClaims struct {
	Sub string `json:"sub"`
	GM  bool   `json:"gm,omitempty"`
	Exp int64  `json:"exp"` // unix seconds
}

// SignToken mints a join token for subject, valid until exp. An empty
// subject becomes "peer".
func SignToken(secret, subject string, gm bool, exp time.Time) (string, error) {
	if subject == "" {
		subject = "peer"
	}
	claims := tokenClaims{Sub: subject, GM: gm, Exp: exp.Unix()}
	b, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	h := hmac.New(sha256.New, []byte(secret))
	_, _ = h.Write(b)
	payload := base64.RawURLEncoding.EncodeToString(b)
	signature := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	return payload + "." + signature, nil
}

func verifyToken(secret, token string) (tokenClaims, error) {
	var claims tokenClaims
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return claims, errors.New("invalid token format")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return claims, errors.New("invalid token payload")
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return claims, errors.New("invalid token signature")
	}
	h := hmac.New(sha256.New, []byte(secret))
	_, _ = h.Write(payload)
	if !hmac.Equal(h.Sum(nil), sig) {
		return claims, errors.New("bad signature")
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return claims, errors.New("bad claims")
	}
	if claims.Exp < time.Now().Unix() {
		return claims, errors.New("token expired")
	}
	if claims.Sub == "" {
		return claims, errors.New("missing subject")
	}
	return claims, nil
}

// Authenticator adapts token verification to the hub's upgrade hook. The
// token rides the Authorization header as a bearer credential, or the
// token query parameter for clients that cannot set headers.
func Authenticator(secret string) func(*http.Request) (relay.Identity, error) {
	return func(r *http.Request) (relay.Identity, error) {
		tok := bearerToken(r)
		if tok == "" {
			return relay.Identity{}, errors.New("missing bearer token")
		}
		claims, err := verifyToken(secret, tok)
		if err != nil {
			return relay.Identity{}, err
		}
		return relay.Identity{UserID: claims.Sub, IsGM: claims.GM}, nil
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	if auth := r.Header.Get("Authorization"); len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return r.URL.Query().Get("token")
}
