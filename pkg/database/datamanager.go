// Package database provides the DataManager for cached database operations.
package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	lru "github.com/hashicorp/golang-lru"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DataManagerOptions contains configuration for a DataManager
type DataManagerOptions struct {
	MaxCacheSize int
}

// globalCache is shared across all DataManager instances
var (
	globalCache     *lru.Cache
	globalCacheOnce sync.Once
)

func sharedCache(size int) *lru.Cache {
	globalCacheOnce.Do(func() {
		if size <= 0 {
			size = DefaultDataManagerOptions().MaxCacheSize
		}
		globalCache, _ = lru.New(size)
	})
	return globalCache
}

// global DataManagers for shared collections
var (
	GlobalWarnDM        *DataManager[models.WarnsDocument]
	GlobalGuildConfigDM *DataManager[models.GuildConfig]
)

// InitGlobalDataManagers initializes shared DataManager instances
func InitGlobalDataManagers(db *Database) {
	GlobalWarnDM = NewDataManager[models.WarnsDocument](CollectionWarns, db)
	GlobalGuildConfigDM = NewDataManager[models.GuildConfig](CollectionGuildConfigs, db)
}

// DataManager provides cached access to a MongoDB collection
type DataManager[T any] struct {
	collection *mongo.Collection
	dbInstance *Database
	options    DataManagerOptions
	cache      *lru.Cache
}

// DefaultDataManagerOptions returns default options for DataManager
func DefaultDataManagerOptions() DataManagerOptions {
	return DataManagerOptions{
		MaxCacheSize: 1000,
	}
}

// NewDataManager creates a new DataManager for a collection
func NewDataManager[T any](collectionName string, db *Database, opts ...DataManagerOptions) *DataManager[T] {
	dmOptions := DefaultDataManagerOptions()
	if len(opts) > 0 {
		dmOptions = opts[0]
	}

	return &DataManager[T]{
		collection: db.GetCollection(collectionName),
		dbInstance: db,
		options:    dmOptions,
		cache:      sharedCache(dmOptions.MaxCacheSize),
	}
}

// generateCacheKey creates a unique, deterministic key from a query
// It sorts the keys to ensure consistent ordering regardless of map iteration order
func (dm *DataManager[T]) generateCacheKey(query bson.M) string {
	return cacheKey(dm.collectionName(), query)
}

func cacheKey(collName string, query bson.M) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, query[k]))
	}

	return fmt.Sprintf("%s:{%s}", collName, strings.Join(parts, ","))
}

func (dm *DataManager[T]) collectionName() string {
	if dm.collection == nil {
		return ""
	}
	return dm.collection.Name()
}

// Get retrieves a document from cache or database. A missing document is (nil, nil).
func (dm *DataManager[T]) Get(ctx context.Context, query bson.M) (*T, error) {
	key := dm.generateCacheKey(query)

	if cached, ok := dm.cache.Get(key); ok {
		return cached.(*T), nil
	}

	if !dm.dbInstance.Connected() || dm.collection == nil {
		return nil, ErrStorageUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result T
	err := dm.collection.FindOne(ctx, query).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		logger.Warn(fmt.Sprintf("Fallo al leer de la DB (%s)", dm.collectionName()), "DataManager")
		return nil, wrapStorageError(err)
	}

	dm.cache.Add(key, &result)
	return &result, nil
}

// GetAll retrieves all documents matching a query from the database
func (dm *DataManager[T]) GetAll(ctx context.Context, query bson.M) ([]*T, error) {
	if !dm.dbInstance.Connected() || dm.collection == nil {
		return nil, ErrStorageUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := dm.collection.Find(ctx, query)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var results []*T
	for cursor.Next(ctx) {
		var doc T
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		results = append(results, &doc)
	}

	return results, wrapStorageError(cursor.Err())
}

// Set updates or inserts a document in the database and cache.
// While offline the write is queued and (nil, nil) is returned.
func (dm *DataManager[T]) Set(ctx context.Context, query bson.M, data interface{}) (*T, error) {
	key := dm.generateCacheKey(query)

	if !dm.dbInstance.Connected() || dm.collection == nil {
		logger.Warn(fmt.Sprintf("DB offline. Encolando escritura para '%s'", dm.collectionName()), "DataManager")
		dm.cache.Remove(key)
		dm.dbInstance.AddToWriteQueue(QueuedOperation{
			CollectionName: dm.collectionName(),
			Query:          query,
			Operation:      "set",
			Data:           data,
		})
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result T
	err := dm.collection.FindOneAndUpdate(ctx, query, bson.M{"$set": data}, opts).Decode(&result)
	if err != nil {
		dm.cache.Remove(key)
		logger.Error("Error en 'set' con DB conectada. Encolando por seguridad.", "DataManager")
		dm.dbInstance.AddToWriteQueue(QueuedOperation{
			CollectionName: dm.collectionName(),
			Query:          query,
			Operation:      "set",
			Data:           data,
		})
		return nil, wrapStorageError(err)
	}

	dm.cache.Add(key, &result)
	return &result, nil
}

// Delete removes a document from the database and cache
func (dm *DataManager[T]) Delete(ctx context.Context, query bson.M) error {
	dm.cache.Remove(dm.generateCacheKey(query))

	if !dm.dbInstance.Connected() || dm.collection == nil {
		logger.Warn(fmt.Sprintf("DB offline. Encolando eliminación para '%s'", dm.collectionName()), "DataManager")
		dm.dbInstance.AddToWriteQueue(QueuedOperation{
			CollectionName: dm.collectionName(),
			Query:          query,
			Operation:      "delete",
		})
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := dm.collection.DeleteOne(ctx, query)
	if err != nil {
		logger.Error("Error en 'delete' con DB conectada. Encolando por seguridad.", "DataManager")
		dm.dbInstance.AddToWriteQueue(QueuedOperation{
			CollectionName: dm.collectionName(),
			Query:          query,
			Operation:      "delete",
		})
		return wrapStorageError(err)
	}

	return nil
}

// Invalidate drops the cached document for a query
func (dm *DataManager[T]) Invalidate(query bson.M) {
	dm.cache.Remove(dm.generateCacheKey(query))
}

// ClearCache clears the entire cache
func (dm *DataManager[T]) ClearCache() {
	dm.cache.Purge()
}

// CacheSize returns the current cache size
func (dm *DataManager[T]) CacheSize() int {
	return dm.cache.Len()
}

// PrimeCache logs that the cache is ready (caches are filled on demand)
func (dm *DataManager[T]) PrimeCache() {
	logger.System(fmt.Sprintf("Caché para '%s' preparada (tamaño máx: %d). Se llenará bajo demanda.", dm.collectionName(), dm.options.MaxCacheSize), "DataManager")
}
