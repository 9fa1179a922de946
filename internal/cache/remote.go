package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// RemoteStore implements Store against the verification cache HTTP service.
type RemoteStore struct {
	baseURL string
	http    *http.Client
}

// RemoteOption configures the remote store client.
type RemoteOption func(*RemoteStore)

// WithRemoteHTTPClient overrides the default http.Client.
func WithRemoteHTTPClient(hc *http.Client) RemoteOption {
	return func(s *RemoteStore) {
		s.http = hc
	}
}

// NewRemoteStore creates a client for the cache service at baseURL.
func NewRemoteStore(baseURL string, opts ...RemoteOption) *RemoteStore {
	s := &RemoteStore{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// cacheEnvelope is the common response shape for single-key operations.
type cacheEnvelope struct {
	Success  bool                      `json:"success"`
	Cached   bool                      `json:"cached,omitempty"`
	Data     *model.VerificationRecord `json:"data,omitempty"`
	CacheAge int64                     `json:"cacheAge,omitempty"`
	Deleted  bool                      `json:"deleted,omitempty"`
	Error    string                    `json:"error,omitempty"`
}

type clearEnvelope struct {
	Success      bool   `json:"success"`
	DeletedCount int    `json:"deletedCount"`
	Error        string `json:"error,omitempty"`
}

type listEnvelope struct {
	Success bool                                `json:"success"`
	Data    map[string]model.VerificationRecord `json:"data,omitempty"`
	Error   string                              `json:"error,omitempty"`
}

type statsEnvelope struct {
	Success bool             `json:"success"`
	Stats   model.CacheStats `json:"stats"`
	Error   string           `json:"error,omitempty"`
}

func (s *RemoteStore) keyURL(email string) string {
	return s.baseURL + "/cache/" + url.PathEscape(Key(email))
}

func (s *RemoteStore) do(ctx context.Context, method, reqURL string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return eris.Wrap(err, "cache: create remote request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "cache: remote request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "cache: read remote response")
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("cache: remote status %d: %s", resp.StatusCode, string(respBody))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return eris.Wrap(err, "cache: unmarshal remote response")
		}
	}
	return nil
}

func (s *RemoteStore) Get(ctx context.Context, email string) (*model.VerificationRecord, error) {
	var env cacheEnvelope
	if err := s.do(ctx, http.MethodGet, s.keyURL(email), nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, eris.Errorf("cache: remote get failed: %s", env.Error)
	}
	if !env.Cached || env.Data == nil {
		return nil, nil
	}
	return env.Data, nil
}

func (s *RemoteStore) Put(ctx context.Context, rec model.VerificationRecord) error {
	rec.Email = Key(rec.Email)
	body, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "cache: marshal record")
	}

	var env cacheEnvelope
	if err := s.do(ctx, http.MethodPost, s.keyURL(rec.Email), body, &env); err != nil {
		return err
	}
	if !env.Success {
		return eris.Errorf("cache: remote put failed: %s", env.Error)
	}
	return nil
}

func (s *RemoteStore) Delete(ctx context.Context, email string) (bool, error) {
	var env cacheEnvelope
	if err := s.do(ctx, http.MethodDelete, s.keyURL(email), nil, &env); err != nil {
		return false, err
	}
	if !env.Success {
		return false, eris.Errorf("cache: remote delete failed: %s", env.Error)
	}
	return env.Deleted, nil
}

func (s *RemoteStore) DeleteAll(ctx context.Context, emails []string) (int, error) {
	// The service has no multi-key delete; issue one delete per key.
	count := 0
	for _, email := range emails {
		deleted, err := s.Delete(ctx, email)
		if err != nil {
			return count, err
		}
		if deleted {
			count++
		}
	}
	return count, nil
}

func (s *RemoteStore) Clear(ctx context.Context) (int, error) {
	var env clearEnvelope
	if err := s.do(ctx, http.MethodDelete, s.baseURL+"/cache", nil, &env); err != nil {
		return 0, err
	}
	if !env.Success {
		return 0, eris.Errorf("cache: remote clear failed: %s", env.Error)
	}
	return env.DeletedCount, nil
}

func (s *RemoteStore) ListAll(ctx context.Context) (map[string]model.VerificationRecord, error) {
	var env listEnvelope
	if err := s.do(ctx, http.MethodGet, s.baseURL+"/cache", nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, eris.Errorf("cache: remote list failed: %s", env.Error)
	}
	if env.Data == nil {
		return map[string]model.VerificationRecord{}, nil
	}
	return env.Data, nil
}

func (s *RemoteStore) Stats(ctx context.Context) (*model.CacheStats, error) {
	var env statsEnvelope
	if err := s.do(ctx, http.MethodGet, s.baseURL+"/stats", nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, eris.Errorf("cache: remote stats failed: %s", env.Error)
	}
	return &env.Stats, nil
}

func (s *RemoteStore) HealthCheck(ctx context.Context) error {
	return s.do(ctx, http.MethodGet, s.baseURL+"/health", nil, nil)
}
