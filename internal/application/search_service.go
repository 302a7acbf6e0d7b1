package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/interviewhub/interviewhub-api/internal/domain/entity"
)

// SearchService mirrors sanitized account profiles into Elasticsearch for
// the admin search endpoint. Indexing is best-effort; a nil service or
// client disables it.
type SearchService struct {
	ES     *elasticsearch.Client
	Index  string
	Logger *logrus.Logger
}

func NewSearchService(es *elasticsearch.Client, index string, logger *logrus.Logger) *SearchService {
	return &SearchService{ES: es, Index: index, Logger: logger}
}

func (s *SearchService) enabled() bool {
	return s != nil && s.ES != nil && s.Index != ""
}

// IndexAccount indexes the sanitized profile. The password hash and role
// flags never reach the index.
func (s *SearchService) IndexAccount(ctx context.Context, a *entity.Account) {
	if !s.enabled() {
		return
	}
	doc := map[string]any{
		"id":                a.ID,
		"username":          a.Username,
		"email":             a.Email,
		"branch":            a.Branch,
		"passing_year":      a.PassingYear,
		"designation":       a.Designation,
		"is_email_verified": a.IsEmailVerified,
		"created_at":        a.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.Index, DocumentID: a.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", a.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("account_id", a.ID).Warn("es index response error")
	}
}

// RemoveAccount drops a deleted account from the index.
func (s *SearchService) RemoveAccount(ctx context.Context, id string) {
	if !s.enabled() {
		return
	}
	req := esapi.DeleteRequest{Index: s.Index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// SearchAccounts performs a multi_match search over username, email, and branch.
func (s *SearchService) SearchAccounts(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if !s.enabled() {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username^2", "email^2", "branch"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.Index), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
