/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"goscreenwriter/internal/autosave"
)

// Screenplay is the listing projection returned by the server.
type Screenplay struct {
	DocumentID string    `json:"document_id"`
	Title      string    `json:"title"`
	Major      int       `json:"major"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// VersionRecord is the wire shape of one save record. Content travels
// base64-encoded through the standard []byte JSON encoding.
type VersionRecord struct {
	DocumentID  string    `json:"document_id"`
	Title       string    `json:"title"`
	Content     []byte    `json:"content"`
	Major       int       `json:"major"`
	Minor       int       `json:"minor"`
	Kind        string    `json:"kind"`
	Description string    `json:"description,omitempty"`
	SavedAt     time.Time `json:"saved_at"`
}

// ToSaveRecord converts the wire shape into the editor's record.
func (v VersionRecord) ToSaveRecord() autosave.SaveRecord {
	return autosave.SaveRecord{
		DocumentID:  v.DocumentID,
		Title:       v.Title,
		Content:     v.Content,
		Major:       v.Major,
		Minor:       v.Minor,
		Kind:        v.Kind,
		Description: v.Description,
		SavedAt:     v.SavedAt,
	}
}

// FromSaveRecord converts an editor record into the wire shape.
func FromSaveRecord(rec autosave.SaveRecord) VersionRecord {
	return VersionRecord{
		DocumentID:  rec.DocumentID,
		Title:       rec.Title,
		Content:     rec.Content,
		Major:       rec.Major,
		Minor:       rec.Minor,
		Kind:        rec.Kind,
		Description: rec.Description,
		SavedAt:     rec.SavedAt,
	}
}

// Client is a minimal HTTP client for the thin sync API.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a new backend client. baseURL may include a trailing
// slash; it will be normalized.
func NewClient(baseURL string, token string) *Client {
	b := strings.TrimRight(baseURL, "/")
	return &Client{
		BaseURL: b,
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// ListScreenplays returns the screenplays known to the server.
func (c *Client) ListScreenplays(ctx context.Context) ([]Screenplay, error) {
	var list []Screenplay
	if err := c.doJSON(ctx, http.MethodGet, "/api/screenplays", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetLatest fetches the highest-versioned save record of a document.
func (c *Client) GetLatest(ctx context.Context, documentID string) (VersionRecord, error) {
	var rec VersionRecord
	path := fmt.Sprintf("/api/screenplays/%s/latest", url.PathEscape(documentID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &rec); err != nil {
		return VersionRecord{}, err
	}
	return rec, nil
}

// PushVersion uploads one save record.
func (c *Client) PushVersion(ctx context.Context, rec VersionRecord) error {
	path := fmt.Sprintf("/api/screenplays/%s/versions", url.PathEscape(rec.DocumentID))
	return c.doJSON(ctx, http.MethodPost, path, rec, nil)
}
