package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"alfredoptarigan/resume-matcher/internal/config"
)

// AnalysisIndex stores one vector per analysis, built from the job text it
// was scored against, so that related analyses can be looked up per owner.
type AnalysisIndex interface {
	InitCollection(ctx context.Context) error
	Index(ctx context.Context, ownerID, matchID uint, jobText string) error
	Related(ctx context.Context, ownerID, matchID uint, limit int) ([]uint, error)
	Close() error
}

type qdrantIndex struct {
	client         *qdrant.Client
	embedder       GeminiService
	collectionName string
	vectorSize     uint64
}

func NewQdrantIndex(cfg config.QdrantConfig, embedder GeminiService) (AnalysisIndex, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	vectorSize := cfg.VectorSize
	if vectorSize == 0 {
		vectorSize = 768
	}

	return &qdrantIndex{
		client:         client,
		embedder:       embedder,
		collectionName: cfg.Collection,
		vectorSize:     vectorSize,
	}, nil
}

// InitCollection implements AnalysisIndex.
func (q *qdrantIndex) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Printf("✅ Qdrant collection '%s' already exists", q.collectionName)
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully", q.collectionName)
	return nil
}

// Index implements AnalysisIndex. The point id is the analysis id, so
// re-indexing the same analysis overwrites its point.
func (q *qdrantIndex) Index(ctx context.Context, ownerID, matchID uint, jobText string) error {
	embedding, err := q.embedder.GenerateEmbedding(ctx, jobText)
	if err != nil {
		return err
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(uint64(matchID)),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			"owner_id": int64(ownerID),
			"match_id": int64(matchID),
		}),
	}

	_, err = q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// Related implements AnalysisIndex. It searches by the stored vector of
// matchID, restricted to the owner's points.
func (q *qdrantIndex) Related(ctx context.Context, ownerID, matchID uint, limit int) ([]uint, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatchInt("owner_id", int64(ownerID)),
		},
		MustNot: []*qdrant.Condition{
			qdrant.NewHasID(qdrant.NewIDNum(uint64(matchID))),
		},
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQueryID(qdrant.NewIDNum(uint64(matchID))),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	ids := make([]uint, 0, len(points))
	for _, point := range points {
		ids = append(ids, uint(point.GetId().GetNum()))
	}
	return ids, nil
}

func (q *qdrantIndex) Close() error {
	return q.client.Close()
}
