//go:build e2e

package test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotesE2E(t *testing.T) {
	env := SetupTestEnvironment(t)
	ownerEmail := "noteuser@example.com"
	testPassword := "Password123"
	authToken := setupTestUser(t, env, ownerEmail, testPassword)
	headers := map[string]string{"Authorization": "Bearer " + authToken}

	var plainNoteID string

	t.Run("create_plain_note", func(t *testing.T) {
		plainNoteID = createAndVerifyNote(t, env, headers, "Deployed the new release", "Work Update")
	})

	t.Run("list_notes_expect_one", func(t *testing.T) {
		verifyNotesList(t, env, headers, 1, plainNoteID, "Deployed the new release")
	})

	t.Run("websocket_and_crud_operations", func(t *testing.T) {
		testWebSocketCRUDOperations(t, env, authToken, headers)
	})

	t.Run("complaint_workflow", func(t *testing.T) {
		testComplaintWorkflow(t, env, headers, testPassword)
	})

	t.Run("cross_user_ownership", func(t *testing.T) {
		testCrossUserOwnership(t, env, testPassword, plainNoteID)
	})
}

// createAndVerifyNote creates a note and returns its ID
func createAndVerifyNote(t *testing.T, env *TestEnvironment, headers map[string]string, text, category string) string {
	payload := map[string]any{"text": text, "category": category}
	noteResp := makeHTTPRequest(t, "POST", env.BaseURL+notesEndpoint, payload, headers, http.StatusCreated)

	note := noteResp["note"].(map[string]any)
	assert.Equal(t, text, note["text"])
	assert.Equal(t, category, note["category"])
	assert.Contains(t, note, "id")
	assert.Contains(t, note, "created_at")
	assert.Contains(t, note, "updated_at")

	if category == "Customer Complaints" {
		require.Contains(t, note, "workflow")
		workflow := note["workflow"].(map[string]any)
		assert.Equal(t, "Not Started", workflow["status"])
	} else {
		assert.NotContains(t, note, "workflow")
	}

	noteID := note["id"].(string)
	require.NotEmpty(t, noteID)
	return noteID
}

// verifyNotesList verifies the notes list response
func verifyNotesList(t *testing.T, env *TestEnvironment, headers map[string]string, expectedCount int, expectedID, expectedText string) {
	listResp := makeHTTPRequest(t, "GET", env.BaseURL+notesEndpoint, nil, headers, http.StatusOK)

	notes := listResp["notes"].([]any)
	assert.Len(t, notes, expectedCount)

	note := notes[0].(map[string]any)
	assert.Equal(t, expectedText, note["text"])
	assert.Equal(t, expectedID, note["id"])
}

// testWebSocketCRUDOperations tests WebSocket functionality with CRUD operations
func testWebSocketCRUDOperations(t *testing.T, env *TestEnvironment, authToken string, headers map[string]string) {
	ws := setupWebSocket(t, env, authToken)
	defer ws.Close()

	messages := make(chan map[string]any, 10)
	startWebSocketListener(ws, messages)
	time.Sleep(100 * time.Millisecond) // Allow connection to establish

	// Create a note and verify the created event arrives
	payload := map[string]any{"text": "Learned about BSON projections", "category": "New Learning"}
	noteResp := makeHTTPRequest(t, "POST", env.BaseURL+notesEndpoint, payload, headers, http.StatusCreated)
	noteID := noteResp["note"].(map[string]any)["id"].(string)
	verifyWebSocketMessage(t, messages, "created", noteID, "Learned about BSON projections")

	// Update it and verify the updated event
	makeHTTPRequest(t, "PATCH", env.BaseURL+notesEndpoint+"/"+noteID,
		map[string]any{"text": "Learned about BSON projections and indexes"}, headers, http.StatusOK)
	verifyWebSocketMessage(t, messages, "updated", noteID, "Learned about BSON projections and indexes")

	// Delete it and verify the deleted event carries only the ID
	makeHTTPRequest(t, "DELETE", env.BaseURL+notesEndpoint+"/"+noteID, nil, headers, http.StatusNoContent)
	verifyWebSocketMessage(t, messages, "deleted", noteID, "")
}

// setupWebSocket creates and returns a WebSocket connection
func setupWebSocket(t *testing.T, env *TestEnvironment, authToken string) *websocket.Conn {
	wsURL := "ws://localhost" + env.BaseURL[len("http://localhost"):] + "/ws/notes/stream?token=" + authToken
	c, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return c
}

// startWebSocketListener starts a goroutine to read WebSocket messages
func startWebSocketListener(c *websocket.Conn, messages chan map[string]any) {
	go func() {
		for {
			var msg map[string]any
			if c.ReadJSON(&msg) != nil {
				return
			}
			messages <- msg
		}
	}()
}

// verifyWebSocketMessage waits for and verifies a WebSocket message
func verifyWebSocketMessage(t *testing.T, messages chan map[string]any, eventType, noteID, expectedText string) {
	select {
	case msg := <-messages:
		assert.Equal(t, eventType, msg["type"])
		assert.Contains(t, msg, "note")
		wsNote := msg["note"].(map[string]any)
		assert.Equal(t, noteID, wsNote["id"])

		if eventType == "deleted" {
			assert.NotContains(t, wsNote, "text")
			assert.NotContains(t, wsNote, "category")
		} else if expectedText != "" {
			assert.Equal(t, expectedText, wsNote["text"])
		}
	case <-time.After(1 * time.Second):
		t.Fatalf("did not receive %s event within 1 second", eventType)
	}
}

// testComplaintWorkflow drives a Customer Complaints note through its whole
// lifecycle, including a work update appended by a second user.
func testComplaintWorkflow(t *testing.T, env *TestEnvironment, ownerHeaders map[string]string, password string) {
	complaintID := createAndVerifyNote(t, env, ownerHeaders, "Billing page times out for customer X", "Customer Complaints")

	// A colleague (not the owner) appends the first work update.
	colleagueToken := setupTestUser(t, env, "colleague@example.com", password)
	colleagueHeaders := map[string]string{"Authorization": "Bearer " + colleagueToken}

	updateResp := makeHTTPRequest(t, "POST", env.BaseURL+notesEndpoint+"/"+complaintID+"/work-updates",
		map[string]any{"text": "Reproduced the timeout, investigating"}, colleagueHeaders, http.StatusOK)
	workflow := updateResp["note"].(map[string]any)["workflow"].(map[string]any)
	assert.Equal(t, "In Progress", workflow["status"])

	updates := workflow["work_updates"].([]any)
	require.Len(t, updates, 1)
	assert.Equal(t, "colleague@example.com", updates[0].(map[string]any)["author_email"])

	// Closing is open to any authenticated user and is idempotent.
	closeResp := makeHTTPRequest(t, "POST", env.BaseURL+notesEndpoint+"/"+complaintID+"/close", nil, colleagueHeaders, http.StatusOK)
	workflow = closeResp["note"].(map[string]any)["workflow"].(map[string]any)
	assert.Equal(t, "Completed", workflow["status"])

	closeResp = makeHTTPRequest(t, "POST", env.BaseURL+notesEndpoint+"/"+complaintID+"/close", nil, ownerHeaders, http.StatusOK)
	workflow = closeResp["note"].(map[string]any)["workflow"].(map[string]any)
	assert.Equal(t, "Completed", workflow["status"])

	// A work update after completion is recorded but never regresses the status.
	updateResp = makeHTTPRequest(t, "POST", env.BaseURL+notesEndpoint+"/"+complaintID+"/work-updates",
		map[string]any{"text": "Customer confirmed the fix"}, ownerHeaders, http.StatusOK)
	workflow = updateResp["note"].(map[string]any)["workflow"].(map[string]any)
	assert.Equal(t, "Completed", workflow["status"])
	assert.Len(t, workflow["work_updates"].([]any), 2)

	// Work updates on a non-complaint category are rejected.
	plainID := createAndVerifyNote(t, env, ownerHeaders, "Switch retros to Fridays", "Improvement Idea")
	makeHTTPRequest(t, "POST", env.BaseURL+notesEndpoint+"/"+plainID+"/work-updates",
		map[string]any{"text": "should not work"}, ownerHeaders, http.StatusConflict)
	makeHTTPRequest(t, "POST", env.BaseURL+notesEndpoint+"/"+plainID+"/close", nil, ownerHeaders, http.StatusConflict)
}

// testCrossUserOwnership verifies notes are readable by everyone but editable
// only by their owner.
func testCrossUserOwnership(t *testing.T, env *TestEnvironment, password, noteID string) {
	otherToken := setupTestUser(t, env, "otheruser@example.com", password)
	otherHeaders := map[string]string{"Authorization": "Bearer " + otherToken}

	// Shared read: the other user sees the note in the list and can fetch it.
	listResp := makeHTTPRequest(t, "GET", env.BaseURL+notesEndpoint, nil, otherHeaders, http.StatusOK)
	assert.NotEmpty(t, listResp["notes"].([]any))
	getResp := makeHTTPRequest(t, "GET", env.BaseURL+notesEndpoint+"/"+noteID, nil, otherHeaders, http.StatusOK)
	assert.Equal(t, noteID, getResp["note"].(map[string]any)["id"])

	// Edit and delete stay owner-only.
	errorResp := makeHTTPRequest(t, "PATCH", env.BaseURL+notesEndpoint+"/"+noteID,
		map[string]any{"text": "hijacked"}, otherHeaders, http.StatusForbidden)
	if msg, ok := errorResp["message"].(string); ok {
		assert.Contains(t, msg, "owner")
	}
	makeHTTPRequest(t, "DELETE", env.BaseURL+notesEndpoint+"/"+noteID, nil, otherHeaders, http.StatusForbidden)
}

// makeHTTPRequest is a helper function to make HTTP requests with proper cleanup
func makeHTTPRequest(t *testing.T, method, url string, payload map[string]any, headers map[string]string, expectedStatus int) map[string]any {
	resp, err := httpJSON(method, url, payload, headers)
	require.NoError(t, err)
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Errorf(msgFailedToCloseResponseBody, err)
		}
	}()

	require.Equal(t, expectedStatus, resp.StatusCode)

	var result map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	}

	return result
}

// setupTestUser creates a test user and returns the auth token
func setupTestUser(t *testing.T, env *TestEnvironment, email, password string) string {
	signUpPayload := map[string]string{
		"email":    email,
		"password": password,
	}

	resp, err := httpJSON("POST", env.BaseURL+signUpEndpoint, signUpPayload, nil)
	require.NoError(t, err)
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Errorf(msgFailedToCloseResponseBody, err)
		}
	}()

	if resp.StatusCode == http.StatusBadRequest {
		// User might already exist, try sign in
		resp, err = httpJSON("POST", env.BaseURL+signInEndpoint, signUpPayload, nil)
		require.NoError(t, err)
		defer func() {
			if err := resp.Body.Close(); err != nil {
				t.Errorf(msgFailedToCloseResponseBody, err)
			}
		}()
	}

	require.True(t, resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK)

	var authResp map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&authResp))

	token, ok := authResp["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	return token
}
