package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/notes/internal/models"
)

const DefaultIndex = "notes"

var mapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":           map[string]any{"type": "keyword"},
			"userId":       map[string]any{"type": "keyword"},
			"title":        map[string]any{"type": "text"},
			"content":      map[string]any{"type": "text"},
			"creationDate": map[string]any{"type": "date"},
		},
	},
}

type document struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	CreationDate time.Time `json:"creationDate"`
}

// Index mirrors notes into one Elasticsearch index.
type Index struct {
	ES   *elasticsearch.Client
	Name string
}

func NewIndex(es *elasticsearch.Client, name string) *Index {
	if name == "" {
		name = DefaultIndex
	}
	return &Index{ES: es, Name: name}
}

// EnsureIndex creates the index with its mapping unless it already exists.
func (i *Index) EnsureIndex(ctx context.Context) error {
	res, err := i.ES.Indices.Exists([]string{i.Name}, i.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", i.Name, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, err := encode(mapping)
	if err != nil {
		return err
	}
	res, err = i.ES.Indices.Create(i.Name,
		i.ES.Indices.Create.WithContext(ctx),
		i.ES.Indices.Create.WithBody(body),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", i.Name, err)
	}
	return checkResponse("create index", res)
}

func (i *Index) IndexNote(ctx context.Context, n *models.Note) error {
	body, err := encode(document{
		ID:           n.ID,
		UserID:       n.UserID,
		Title:        n.Title,
		Content:      n.Content,
		CreationDate: n.CreationDate,
	})
	if err != nil {
		return err
	}

	res, err := i.ES.Index(i.Name, body,
		i.ES.Index.WithContext(ctx),
		i.ES.Index.WithDocumentID(n.ID),
	)
	if err != nil {
		return fmt.Errorf("index note %s: %w", n.ID, err)
	}
	return checkResponse("index note", res)
}

func (i *Index) DeleteNote(ctx context.Context, id string) error {
	res, err := i.ES.Delete(i.Name, id, i.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	if res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil
	}
	return checkResponse("delete note", res)
}

// Search returns the total hit count and the ids of one page of matches in
// relevance order. A non-empty userID restricts hits to that owner.
func (i *Index) Search(ctx context.Context, userID, query string, from, size int) (int64, []string, error) {
	boolQuery := map[string]any{
		"must": []any{
			map[string]any{
				"multi_match": map[string]any{
					"query":     query,
					"fields":    []string{"title^2", "content"},
					"fuzziness": "AUTO",
				},
			},
		},
	}
	if userID != "" {
		boolQuery["filter"] = []any{
			map[string]any{"term": map[string]any{"userId": userID}},
		}
	}

	body, err := encode(map[string]any{
		"query":   map[string]any{"bool": boolQuery},
		"from":    from,
		"size":    size,
		"_source": false,
	})
	if err != nil {
		return 0, nil, err
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Name),
		i.ES.Search.WithBody(body),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search notes: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("search notes: %s: %s", res.Status(), msg)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]string, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		ids[n] = hit.ID
	}
	return r.Hits.Total.Value, ids, nil
}

func encode(v any) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return &buf, nil
}

func checkResponse(op string, res *esapi.Response) error {
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("%s: %s: %s", op, res.Status(), msg)
	}
	return nil
}
