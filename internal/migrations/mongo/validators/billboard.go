package validators

import "go.mongodb.org/mongo-driver/bson"

var integer = []string{"int", "long"}

var price = bson.M{
	"bsonType": integer,
	"minimum":  1,
}

var BillboardValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner_id",
			"name",
			"kind",
			"location",
			"size",
			"faces",
			"status",
			"version",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"owner_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 120,
			},

			"kind": bson.M{
				"bsonType": "string",
				"enum":     []string{"fixed", "digital"},
			},

			"location": bson.M{
				"bsonType": "object",
				"required": []string{"address", "city"},
				"properties": bson.M{
					"city": bson.M{
						"bsonType":  "string",
						"minLength": 2,
						"maxLength": 100,
					},
					"latitude": bson.M{
						"bsonType": []string{"double", "int", "long"},
						"minimum":  -90,
						"maximum":  90,
					},
					"longitude": bson.M{
						"bsonType": []string{"double", "int", "long"},
						"minimum":  -180,
						"maximum":  180,
					},
				},
			},

			"faces": bson.M{
				"bsonType": integer,
				"minimum":  1,
				"maximum":  8,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"available",
					"reserved",
					"confirmed",
					"occupied",
					"maintenance",
				},
			},

			"manual_status": bson.M{
				"bsonType": "string",
				"enum":     []string{"reserved", "confirmed", "maintenance"},
			},

			"fixed": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"monthly_price": price,
					"contract_months": bson.M{
						"bsonType": integer,
						"minimum":  1,
						"maximum":  120,
					},
				},
			},

			"digital": bson.M{
				"bsonType": "object",
				"required": []string{"max_clients", "available_slots"},
				"properties": bson.M{
					"max_clients": bson.M{
						"bsonType": integer,
						"minimum":  1,
						"maximum":  100,
					},
					"available_slots": bson.M{
						"bsonType": integer,
						"minimum":  0,
					},
					"current_clients": bson.M{
						"bsonType": []string{"array", "null"},
					},
				},
			},

			"version": bson.M{
				"bsonType": integer,
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
