package validators

import "go.mongodb.org/mongo-driver/bson"

var NotificationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"type",
			"title",
			"message",
			"is_read",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"type": bson.M{
				"enum": []string{
					"booking_requested",
					"booking_approved",
					"booking_rejected",
					"rental_terminated",
					"payment_confirmed",
				},
			},

			"title": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"message": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"related_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"is_read": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
