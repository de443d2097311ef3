package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"contact",
			"date_range",
			"items",
			"total",
			"cart_id",
			"owner_ids",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"contact": bson.M{
				"bsonType": "object",
				"required": []string{"name", "email", "phone"},
				"properties": bson.M{
					"name": bson.M{
						"bsonType":  "string",
						"minLength": 2,
						"maxLength": 120,
					},
					"email": bson.M{
						"bsonType": "string",
						"pattern":  "^[^@\\s]+@[^@\\s]+$",
					},
					"phone": bson.M{
						"bsonType": "string",
						"pattern":  "^\\+[1-9][0-9]{1,14}$",
					},
				},
			},

			"date_range": bson.M{
				"bsonType": "object",
				"required": []string{"start", "end"},
				"properties": bson.M{
					"start": bson.M{"bsonType": "date"},
					"end":   bson.M{"bsonType": "date"},
				},
			},

			"items": bson.M{
				"bsonType": "array",
				"minItems": 1,
			},

			"total": bson.M{
				"bsonType": integer,
				"minimum":  0,
			},

			"cart_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"owner_ids": bson.M{
				"bsonType": []string{"array", "null"},
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"approved",
					"rejected",
					"confirmed",
				},
			},

			"message": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"response_date": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
