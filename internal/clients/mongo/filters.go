package mongo

import "go.mongodb.org/mongo-driver/v2/bson"

// ExistsTrue is a reusable shortcut for {$exists:true}.
var ExistsTrue = bson.M{"$exists": true}
