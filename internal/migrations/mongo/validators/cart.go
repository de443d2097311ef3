package validators

import "go.mongodb.org/mongo-driver/bson"

var CartValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"session_id",
			"total",
			"item_count",
			"created_at",
			"updated_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"session_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 128,
			},

			"items": bson.M{
				"bsonType": []string{"array", "null"},
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"id", "modality", "unit_price", "quantity", "subtotal"},
					"properties": bson.M{
						"modality": bson.M{
							"bsonType": "string",
							"enum": []string{
								"monthly",
								"biweekly",
								"weekly",
								"spot",
								"hour",
								"day",
								"impressions",
							},
						},
						"quantity": bson.M{
							"bsonType": integer,
							"minimum":  1,
						},
					},
				},
			},

			"total": bson.M{
				"bsonType": integer,
				"minimum":  0,
			},

			"item_count": bson.M{
				"bsonType": integer,
				"minimum":  0,
			},

			"booking_id": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
