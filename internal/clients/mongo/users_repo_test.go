package mongo

import (
	"testing"
	"time"

	"voicelog/internal/services/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestUserSummaryOmitsPasswordHash(t *testing.T) {
	now := time.Now().UTC()
	user := &auth.User{
		ID:           bson.NewObjectID(),
		Email:        "test@example.com",
		Username:     "pat",
		PasswordHash: "$2a$10$secret",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Decoding a full user document into the directory view must drop the
	// hash even without the repo projection.
	raw, err := bson.Marshal(user)
	require.NoError(t, err)

	var summary auth.UserSummary
	require.NoError(t, bson.Unmarshal(raw, &summary))

	assert.Equal(t, user.ID, summary.ID)
	assert.Equal(t, "test@example.com", summary.Email)
	assert.Equal(t, "pat", summary.Username)
}

func TestUserSummaryUsernameOptional(t *testing.T) {
	summary := auth.UserSummary{
		ID:    bson.NewObjectID(),
		Email: "test@example.com",
	}

	raw, err := bson.Marshal(summary)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	_, present := doc["username"]
	assert.False(t, present, "empty username must be omitted")
}
