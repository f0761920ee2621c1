package validators

import "go.mongodb.org/mongo-driver/bson"

var PaymentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"rental_id",
			"tenant_id",
			"landlord_id",
			"amount",
			"payment_type",
			"status",
			"month",
			"year",
			"due_date",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"rental_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"tenant_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"landlord_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"amount": bson.M{
				"bsonType":         []string{"double", "int", "long", "decimal"},
				"exclusiveMinimum": true,
				"minimum":          0,
			},

			"payment_type": bson.M{
				"enum": []string{"rent", "deposit", "advance", "maintenance"},
			},

			"status": bson.M{
				"enum": []string{"pending", "completed", "failed", "refunded"},
			},

			"month": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  12,
			},

			"year": bson.M{
				"bsonType": "int",
				"minimum":  2000,
				"maximum":  2200,
			},

			"due_date": bson.M{
				"bsonType": "date",
			},

			"payment_date": bson.M{
				"bsonType": "date",
			},

			"method": bson.M{
				"bsonType":  "string",
				"maxLength": 50,
			},

			"transaction_id": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
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
