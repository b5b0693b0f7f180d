package validators

import "go.mongodb.org/mongo-driver/bson"

var ResourceLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"version",
			"expires_at",
		},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"version": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},
			"expires_at": bson.M{
				"bsonType": "date",
			},
			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
