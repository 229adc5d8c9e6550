package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/JayaSurya08-dev/Nimbus/internal/models"
)

// Index keeps one document per file so names can be searched per owner.
type Index struct {
	ES   *elasticsearch.Client
	Name string
}

func NewIndex(es *elasticsearch.Client, name string) *Index {
	return &Index{ES: es, Name: name}
}

type fileDoc struct {
	ID          uint      `json:"id"`
	OwnerID     uint      `json:"owner_id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	StoragePath string    `json:"storage_path"`
	URL         string    `json:"url"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

func docFromFile(f *models.File) fileDoc {
	return fileDoc{
		ID:          f.ID,
		OwnerID:     f.OwnerID,
		Name:        f.Name,
		Size:        f.Size,
		ContentType: f.ContentType,
		StoragePath: f.StoragePath,
		URL:         f.URL,
		UploadedAt:  f.UploadedAt,
	}
}

func (d fileDoc) file() models.File {
	return models.File{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		Name:        d.Name,
		Size:        d.Size,
		ContentType: d.ContentType,
		StoragePath: d.StoragePath,
		URL:         d.URL,
		UploadedAt:  d.UploadedAt,
	}
}

var mapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":           map[string]any{"type": "long"},
			"owner_id":     map[string]any{"type": "long"},
			"name":         map[string]any{"type": "text", "fields": map[string]any{"raw": map[string]any{"type": "keyword"}}},
			"size":         map[string]any{"type": "long"},
			"content_type": map[string]any{"type": "keyword"},
			"storage_path": map[string]any{"type": "keyword", "index": false},
			"url":          map[string]any{"type": "keyword", "index": false},
			"uploaded_at":  map[string]any{"type": "date"},
		},
	},
}

// EnsureIndex creates the index with its mapping unless it already exists.
func (i *Index) EnsureIndex(ctx context.Context) error {
	res, err := i.ES.Indices.Exists([]string{i.Name}, i.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
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
		return fmt.Errorf("create index: %w", err)
	}
	return checkResponse(res, "create index")
}

func (i *Index) IndexFile(ctx context.Context, f *models.File) error {
	body, err := encode(docFromFile(f))
	if err != nil {
		return err
	}
	res, err := i.ES.Index(i.Name, body,
		i.ES.Index.WithContext(ctx),
		i.ES.Index.WithDocumentID(docID(f.ID)),
		i.ES.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("index file: %w", err)
	}
	return checkResponse(res, "index file")
}

func (i *Index) RemoveFile(ctx context.Context, id uint) error {
	res, err := i.ES.Delete(i.Name, docID(id),
		i.ES.Delete.WithContext(ctx),
		i.ES.Delete.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("remove file: %w", err)
	}
	if res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil
	}
	return checkResponse(res, "remove file")
}

func (i *Index) Search(ctx context.Context, ownerID uint, query string, from, size int) (int64, []models.File, error) {
	body, err := encode(map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"owner_id": ownerID}},
				},
				"must": []any{
					map[string]any{
						"match": map[string]any{
							"name": map[string]any{"query": query, "fuzziness": "AUTO"},
						},
					},
				},
			},
		},
		"from": from,
		"size": size,
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
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source fileDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	files := make([]models.File, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		// the filter already scopes by owner; drop anything that slipped through
		if hit.Source.OwnerID != ownerID {
			continue
		}
		files = append(files, hit.Source.file())
	}
	return r.Hits.Total.Value, files, nil
}

func docID(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func encode(v any) (io.Reader, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return &buf, nil
}

func checkResponse(res *esapi.Response, op string) error {
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("%s: %s: %s", op, res.Status(), bytes.TrimSpace(body))
	}
	return nil
}
