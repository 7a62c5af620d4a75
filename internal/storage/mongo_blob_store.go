package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/annel0/arena-maps/internal/mapdata"
)

// MongoConfig настройки подключения к MongoDB
type MongoConfig struct {
	URI        string // e.g. mongodb://localhost:27017
	Database   string // e.g. arena
	Collection string // e.g. maps
}

// MongoBlobStore хранит карты документами {namespace, path, data, updated_at}
type MongoBlobStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	ctxTimeout time.Duration
}

type mapDocument struct {
	Namespace string    `bson:"namespace"`
	Path      string    `bson:"path"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoBlobStore подключается к MongoDB и создаёт уникальный индекс
func NewMongoBlobStore(cfg MongoConfig) (*MongoBlobStore, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "arena"
	}
	if cfg.Collection == "" {
		cfg.Collection = "maps"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDB не отвечает: %w", err)
	}

	store := &MongoBlobStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		ctxTimeout: 5 * time.Second,
	}
	if err := store.ensureIndexes(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("не удалось создать индексы: %w", err)
	}
	return store, nil
}

func (m *MongoBlobStore) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "namespace", Value: 1}, {Key: "path", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("map_id_unique"),
	}
	_, err := m.collection.Indexes().CreateOne(ctx, idx)
	return err
}

func filterFor(id mapdata.Identifier) bson.M {
	return bson.M{"namespace": id.Namespace, "path": id.Path}
}

func (m *MongoBlobStore) Read(ctx context.Context, id mapdata.Identifier) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, m.ctxTimeout)
	defer cancel()

	var doc mapDocument
	err := m.collection.FindOne(ctx, filterFor(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", id, mapdata.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки карты %s: %w", id, err)
	}
	return doc.Data, nil
}

// Write заменяет документ целиком (upsert)
func (m *MongoBlobStore) Write(ctx context.Context, id mapdata.Identifier, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, m.ctxTimeout)
	defer cancel()

	doc := mapDocument{Namespace: id.Namespace, Path: id.Path, Data: data, UpdatedAt: time.Now()}
	_, err := m.collection.ReplaceOne(ctx, filterFor(id), doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("ошибка сохранения карты %s: %w", id, err)
	}
	return nil
}

func (m *MongoBlobStore) Delete(ctx context.Context, id mapdata.Identifier) error {
	ctx, cancel := context.WithTimeout(ctx, m.ctxTimeout)
	defer cancel()

	res, err := m.collection.DeleteOne(ctx, filterFor(id))
	if err != nil {
		return fmt.Errorf("ошибка удаления карты %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", id, mapdata.ErrNotFound)
	}
	return nil
}

// List перечисляет карты без загрузки данных
func (m *MongoBlobStore) List(ctx context.Context) ([]mapdata.Identifier, error) {
	ctx, cancel := context.WithTimeout(ctx, m.ctxTimeout)
	defer cancel()

	opts := options.Find().
		SetProjection(bson.M{"namespace": 1, "path": 1}).
		SetSort(bson.D{{Key: "namespace", Value: 1}, {Key: "path", Value: 1}})
	cur, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка перечисления карт: %w", err)
	}
	defer cur.Close(ctx)

	var out []mapdata.Identifier
	for cur.Next(ctx) {
		var doc mapDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, mapdata.Identifier{Namespace: doc.Namespace, Path: doc.Path})
	}
	return out, cur.Err()
}

// Close terminates connection.
func (m *MongoBlobStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
