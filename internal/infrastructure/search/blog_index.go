package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/blogilista/internal/domain/entity"
	"github.com/oksasatya/blogilista/internal/domain/repository"
)

// BlogIndex keeps a searchable copy of blogs in Elasticsearch.
// The document id is the blog id.
type BlogIndex struct {
	ES        *elasticsearch.Client
	IndexName string
}

func NewBlogIndex(es *elasticsearch.Client, index string) *BlogIndex {
	return &BlogIndex{ES: es, IndexName: index}
}

type blogDoc struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	URL       string `json:"url"`
	Likes     int    `json:"likes"`
	UserID    string `json:"user_id,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

func (x *BlogIndex) Index(ctx context.Context, b *entity.Blog) error {
	body, err := json.Marshal(blogDoc{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		URL:       b.URL,
		Likes:     b.Likes,
		UserID:    b.UserID,
		UpdatedAt: b.UpdatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.IndexName, DocumentID: b.ID, Body: bytes.NewReader(body), Refresh: "false"}
	res, err := req.Do(ctx, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func (x *BlogIndex) Remove(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.IndexName, DocumentID: id}
	res, err := req.Do(ctx, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search runs a multi_match over title, author and url and returns matching blog ids by score.
func (x *BlogIndex) Search(ctx context.Context, q string, size int) ([]string, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "author", "url"},
			},
		},
		"size":    size,
		"_source": false,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := x.ES.Search(
		x.ES.Search.WithContext(c),
		x.ES.Search.WithIndex(x.IndexName),
		x.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		// searching before the first blog was indexed
		if res.StatusCode == http.StatusNotFound {
			return []string{}, nil
		}
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.ID)
	}
	return out, nil
}

var _ repository.BlogIndex = (*BlogIndex)(nil)
