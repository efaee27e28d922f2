// Package mongo is the MongoDB record store, the document database the
// dataset was originally served from.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"salesboard/internal/core"
	"salesboard/internal/store"
)

var _ store.Store = (*Store)(nil)

// document is the stored shape of a transaction.
type document struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	PriceText   string             `bson:"priceText"`
	Category    string             `bson:"category"`
	Image       string             `bson:"image,omitempty"`
	Sold        bool               `bson:"sold"`
	DateOfSale  time.Time          `bson:"dateOfSale"`
}

func (d document) toCore() core.Transaction {
	return core.Transaction{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Category:    d.Category,
		Image:       d.Image,
		Sold:        d.Sold,
		DateOfSale:  d.DateOfSale.UTC(),
	}
}

type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect dials uri and pings the primary before returning.
func Connect(ctx context.Context, uri, database, collection string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := &Store{client: client, coll: client.Database(database).Collection(collection)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "dateOfSale", Value: 1}}},
		{Keys: bson.D{{Key: "dateOfSale", Value: 1}, {Key: "category", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func rangeFilter(r core.DateRange) bson.E {
	return bson.E{Key: "dateOfSale", Value: bson.D{
		{Key: "$gte", Value: r.Start},
		{Key: "$lt", Value: r.End},
	}}
}

// ReplaceAll is DeleteMany followed by InsertMany. Without a replica set
// there is no multi-document transaction: a failed insert leaves a
// partially seeded collection.
func (s *Store) ReplaceAll(ctx context.Context, txs []core.Transaction) (int, error) {
	del, err := s.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}
	if len(txs) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, len(txs))
	for i, t := range txs {
		docs[i] = document{
			Title:       t.Title,
			Description: t.Description,
			Price:       t.Price,
			PriceText:   t.PriceText(),
			Category:    t.Category,
			Image:       t.Image,
			Sold:        t.Sold,
			DateOfSale:  t.DateOfSale.UTC(),
		}
	}
	res, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		inserted := 0
		if res != nil {
			inserted = len(res.InsertedIDs)
		}
		return inserted, fmt.Errorf("insert transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transactions replaced in MongoDB",
		"deleted", del.DeletedCount,
		"inserted", len(res.InsertedIDs))

	return len(res.InsertedIDs), nil
}

func (s *Store) Find(ctx context.Context, q core.ListQuery) ([]core.Transaction, error) {
	filter := bson.D{rangeFilter(q.Range)}
	if q.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: re}},
			bson.D{{Key: "description", Value: re}},
			bson.D{{Key: "priceText", Value: re}},
		}})
	}

	// ObjectIDs grow with insertion, so _id order is insertion order
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetSkip(int64(q.Offset))
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}
	defer cur.Close(ctx)

	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	out := make([]core.Transaction, len(docs))
	for i, d := range docs {
		out[i] = d.toCore()
	}
	return out, nil
}

func (s *Store) SalesSummary(ctx context.Context, r core.DateRange) (core.Statistics, error) {
	cur, err := s.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{rangeFilter(r)}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$sold"},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$price"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	})
	if err != nil {
		return core.Statistics{}, fmt.Errorf("aggregate sales summary: %w", err)
	}
	defer cur.Close(ctx)

	var groups []struct {
		Sold  bool    `bson:"_id"`
		Total float64 `bson:"total"`
		Count int64   `bson:"count"`
	}
	if err := cur.All(ctx, &groups); err != nil {
		return core.Statistics{}, fmt.Errorf("decode sales summary: %w", err)
	}

	var stats core.Statistics
	for _, g := range groups {
		if g.Sold {
			stats.TotalSales = g.Total
			stats.TotalSoldItems = g.Count
		} else {
			stats.TotalNotSoldItems = g.Count
		}
	}
	return stats, nil
}

func (s *Store) CountInBucket(ctx context.Context, r core.DateRange, b core.PriceBucket) (int64, error) {
	price := bson.D{{Key: "$gte", Value: b.Min}}
	if !b.Unbounded() {
		price = append(price, bson.E{Key: "$lt", Value: b.Max})
	}
	n, err := s.coll.CountDocuments(ctx, bson.D{rangeFilter(r), {Key: "price", Value: price}})
	if err != nil {
		return 0, fmt.Errorf("count bucket %s: %w", b.Label, err)
	}
	return n, nil
}

func (s *Store) CountByCategory(ctx context.Context, r core.DateRange) ([]core.CategoryCount, error) {
	cur, err := s.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{rangeFilter(r)}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate categories: %w", err)
	}
	defer cur.Close(ctx)

	var groups []struct {
		Category string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	out := make([]core.CategoryCount, len(groups))
	for i, g := range groups {
		out[i] = core.CategoryCount{Category: g.Category, Count: g.Count}
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}
