package xsource

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/omeyang/xlazy/pkg/suspense/xloader"
)

// Collection 集合读操作。*mongo.Collection 满足。
type Collection interface {
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
}

var _ Collection = (*mongo.Collection)(nil)

// Mongo 按 _id 读取文档，返回 field 字段的内容。
// 字段支持字符串与二进制；文档或字段不存在返回 ErrNotFound。
func Mongo(coll Collection, id any, field string) xloader.Loader[[]byte] {
	return func(ctx context.Context) ([]byte, error) {
		if coll == nil {
			return nil, ErrNilClient
		}
		raw, err := coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}},
			options.FindOne().SetProjection(bson.D{{Key: field, Value: 1}}),
		).Raw()
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound(fmt.Sprintf("mongo document %v", id))
		}
		if err != nil {
			return nil, err
		}

		val, err := raw.LookupErr(field)
		if err != nil {
			return nil, notFound(fmt.Sprintf("mongo field %q of %v", field, id))
		}
		if s, ok := val.StringValueOK(); ok {
			return []byte(s), nil
		}
		if _, data, ok := val.BinaryOK(); ok {
			return data, nil
		}
		return nil, fmt.Errorf("%w: field %q is %s", ErrUnsupportedValue, field, val.Type)
	}
}
