package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"room_id",
			"requester_email",
			"requester_name",
			"purpose",
			"start_time",
			"end_time",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"room_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"requester_email": bson.M{
				"bsonType": "string",
				"pattern":  `^[^\s@]+@[^\s@]+\.[^\s@]+$`,
			},

			"requester_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"purpose": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"approved",
					"denied",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"approved_at": bson.M{
				"bsonType": "date",
			},

			"denied_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
