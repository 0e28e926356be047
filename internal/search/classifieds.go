package search

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/desinetwork/classifieds/internal/domain/entity"
)

// ClassifiedIndexer mirrors classifieds into an Elasticsearch index for the
// admin search endpoint. A nil client disables it; callers never fail on
// indexing errors, the SQL store stays authoritative.
type ClassifiedIndexer struct {
	ES     *elasticsearch.Client
	Index  string
	Logger *logrus.Logger
}

func NewClassifiedIndexer(es *elasticsearch.Client, index string, logger *logrus.Logger) *ClassifiedIndexer {
	return &ClassifiedIndexer{ES: es, Index: index, Logger: logger}
}

func (x *ClassifiedIndexer) enabled() bool {
	return x != nil && x.ES != nil && x.Index != ""
}

// Upsert mirrors the current state of a classified. The index holds
// published ads only, so anything else removes the document instead.
func (x *ClassifiedIndexer) Upsert(ctx context.Context, c *entity.Classified) {
	if !x.enabled() {
		return
	}
	if c.Status != entity.StatusPublished {
		x.Delete(ctx, c.ID)
		return
	}
	doc := map[string]any{
		"id":          c.ID,
		"user_id":     c.UserID,
		"title":       c.Title,
		"description": c.Description,
		"category":    c.Category,
		"visibility":  c.Visibility,
		"status":      c.Status,
		"author_name": c.AuthorName,
		"created_at":  c.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":  c.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: x.Index, DocumentID: c.ID, Body: strings.NewReader(string(b)), Refresh: "false"}

	c2, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c2, x.ES)
	if err != nil {
		if x.Logger != nil {
			x.Logger.WithError(err).WithField("classified_id", c.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && x.Logger != nil {
		x.Logger.WithField("status", res.Status()).WithField("classified_id", c.ID).Warn("es index response error")
	}
}

// Delete removes a classified from the index.
func (x *ClassifiedIndexer) Delete(ctx context.Context, id string) {
	if !x.enabled() {
		return
	}
	req := esapi.DeleteRequest{Index: x.Index, DocumentID: id}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		if x.Logger != nil {
			x.Logger.WithError(err).WithField("classified_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// Search performs a multi_match over title, description and category.
func (x *ClassifiedIndexer) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if !x.enabled() {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description", "category"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := x.ES.Search(
		x.ES.Search.WithContext(c),
		x.ES.Search.WithIndex(x.Index),
		x.ES.Search.WithBody(strings.NewReader(string(b))),
	)
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
