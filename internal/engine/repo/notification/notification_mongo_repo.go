package notification

import (
	"context"
	"fmt"

	"github.com/go-arcade/ideaflow/internal/engine/model"
	"github.com/go-arcade/ideaflow/internal/engine/model/notification"
	"github.com/go-arcade/ideaflow/internal/pkg/notify"
	"github.com/go-arcade/ideaflow/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionNotifications = "notifications"
	collectionCounters      = "counters"
)

// MongoNotificationRepo keeps notifications in MongoDB. Numeric ids come
// from a counter document so the HTTP API is the same for both stores.
type MongoNotificationRepo struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewMongoNotificationRepo(client *database.MongoClient) *MongoNotificationRepo {
	return &MongoNotificationRepo{
		coll:     client.GetCollection(collectionNotifications),
		counters: client.GetCollection(collectionCounters),
	}
}

// EnsureIndexes 创建唯一索引和查询索引
func (r *MongoNotificationRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "eventId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "read", Value: 1}}},
	})
	return err
}

func (r *MongoNotificationRepo) nextID(ctx context.Context) (uint64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": collectionNotifications},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next notification id: %w", err)
	}
	return uint64(counter.Seq), nil
}

// Save upserts on eventId with $setOnInsert, so a redelivery changes nothing.
func (r *MongoNotificationRepo) Save(ctx context.Context, e *notify.Event) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"eventId": e.EventID})
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	doc := notification.FromEvent(e)
	if doc.ID, err = r.nextID(ctx); err != nil {
		return false, err
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"eventId": e.EventID},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// a concurrent redelivery won the upsert
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return res.UpsertedCount == 1, nil
}

func (r *MongoNotificationRepo) ListByUser(ctx context.Context, userID uint64, page model.PageQuery) ([]notification.Notification, int64, error) {
	page = page.Normalize()
	filter := bson.M{"userId": userID}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "id", Value: -1}}).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Size)))
	if err != nil {
		return nil, 0, err
	}
	rows := make([]notification.Notification, 0, page.Size)
	if err := cur.All(ctx, &rows); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *MongoNotificationRepo) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"userId": userID, "read": false})
}

func (r *MongoNotificationRepo) MarkRead(ctx context.Context, id uint64) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoNotificationRepo) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.coll.UpdateMany(ctx, bson.M{"userId": userID, "read": false}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *MongoNotificationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
