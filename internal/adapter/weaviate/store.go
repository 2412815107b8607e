package weaviate

import (
	"context"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"turath/internal/text"
	"turath/internal/vector"
)

type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	return vector.EnsureSchema(ctx, vector.NewWeaviateClientAdapter(s.client))
}

// objectID derives a stable UUID from the chunk id so that re-ingesting
// with the same ids overwrites the prior entry as a single unit.
func objectID(chunkID string) strfmt.UUID {
	return strfmt.UUID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String())
}

// UpsertEntries writes a batch of index entries. Ids already present in the
// index are replaced wholesale (text, metadata and vector together).
func (s *Store) UpsertEntries(ctx context.Context, entries []vector.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	objects := make([]*models.Object, 0, len(entries))
	for _, e := range entries {
		objects = append(objects, &models.Object{
			Class: vector.ClassName,
			ID:    objectID(e.ID),
			Properties: map[string]interface{}{
				"content":   e.Text,
				"chunkId":   e.ID,
				"title":     e.Meta.Title,
				"source":    e.Meta.Source,
				"site":      e.Meta.Site,
				"topic":     e.Meta.Topic,
				"filename":  e.Meta.Filename,
				"wordCount": e.Meta.WordCount,
			},
			Vector: models.C11yVector(e.Vector),
		})
	}

	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return err
	}
	for _, r := range resp {
		if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
			return fmt.Errorf("batch upsert error: %s", r.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

// Query returns up to k nearest entries by the index-native vector distance,
// ascending. The store makes no similarity judgment; callers interpret the
// raw distance.
func (s *Store) Query(ctx context.Context, vec []float32, k int) ([]vector.Hit, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vec)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "title"},
		{Name: "source"},
		{Name: "site"},
		{Name: "topic"},
		{Name: "filename"},
		{Name: "wordCount"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(vector.ClassName).
		WithNearVector(nearVector).
		WithLimit(k).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var hits []vector.Hit
	data, ok := res.Data["Get"].(map[string]interface{})
	if !ok {
		return hits, nil
	}
	raw, ok := data[vector.ClassName].([]interface{})
	if !ok {
		return hits, nil
	}

	for _, c := range raw {
		props, ok := c.(map[string]interface{})
		if !ok {
			continue
		}

		var hit vector.Hit
		if content, ok := props["content"].(string); ok {
			hit.Text = content
		}
		hit.Meta = metadataFromProps(props)

		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			if distance, ok := additional["distance"].(float64); ok {
				hit.Distance = distance
			}
		}

		hits = append(hits, hit)
	}

	return hits, nil
}

// DeleteByFilename removes every chunk ingested from the given file, used
// when a document is re-ingested under fresh ids or withdrawn.
func (s *Store) DeleteByFilename(ctx context.Context, filename string) error {
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(vector.ClassName).
		WithOutput("minimal").
		WithWhere(filters.Where().
			WithPath([]string{"filename"}).
			WithOperator(filters.Equal).
			WithValueString(filename)).
		Do(ctx)
	return err
}

// Count reports the number of entries currently held by the index.
func (s *Store) Count(ctx context.Context) (int, error) {
	res, err := s.client.GraphQL().Aggregate().
		WithClassName(vector.ClassName).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("graphql error: %v", res.Errors)
	}

	agg, ok := res.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	rows, ok := agg[vector.ClassName].([]interface{})
	if !ok || len(rows) == 0 {
		return 0, nil
	}
	row, ok := rows[0].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	meta, ok := row["meta"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	count, _ := meta["count"].(float64)
	return int(count), nil
}

func metadataFromProps(props map[string]interface{}) text.Metadata {
	var meta text.Metadata
	if v, ok := props["title"].(string); ok {
		meta.Title = v
	}
	if v, ok := props["source"].(string); ok {
		meta.Source = v
	}
	if v, ok := props["site"].(string); ok {
		meta.Site = v
	}
	if v, ok := props["topic"].(string); ok {
		meta.Topic = v
	}
	if v, ok := props["filename"].(string); ok {
		meta.Filename = v
	}
	if v, ok := props["wordCount"].(float64); ok {
		meta.WordCount = int(v)
	}
	return meta
}
