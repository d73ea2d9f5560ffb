package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckContract_SessionAcceptsAnyIDSpelling(t *testing.T) {
	for _, payload := range []string{
		`{"id": "a", "total_items": 1}`,
		`{"session_id": "a", "total_words": 1}`,
		`{"sessionId": "a", "totalItems": 1}`,
	} {
		assert.NoError(t, checkContract("session", sessionSchemaDef, []byte(payload)), payload)
	}
}

func TestCheckContract_SessionRejectsMissingID(t *testing.T) {
	err := checkContract("session", sessionSchemaDef, []byte(`{"total_items": 5}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session")
}

func TestCheckContract_SessionRejectsWrongTypes(t *testing.T) {
	cases := []string{
		`{"id": 7}`,
		`{"id": "a", "total_items": "five"}`,
		`{"id": "a", "current_index": -1}`,
		`{"id": "a", "is_resuming": "yes"}`,
	}
	for _, payload := range cases {
		assert.Error(t, checkContract("session", sessionSchemaDef, []byte(payload)), payload)
	}
}

func TestCheckContract_ResultPinsTypesNotSpellings(t *testing.T) {
	assert.NoError(t, checkContract("result", resultSchemaDef, []byte(`{"correct": true}`)))
	assert.NoError(t, checkContract("result", resultSchemaDef, []byte(`{"pointsEarned": 10}`)))
	assert.Error(t, checkContract("result", resultSchemaDef, []byte(`{"correct": "yes"}`)))
	assert.Error(t, checkContract("result", resultSchemaDef, []byte(`[1, 2]`)))
}

func TestCheckContract_FinishRequiresSuccess(t *testing.T) {
	require.Error(t, checkContract("finish", finishSchemaDef, []byte(`{"passed": true}`)))
	assert.NoError(t, checkContract("finish", finishSchemaDef, []byte(`{"success": true, "final_score": 30}`)))
}

func TestCheckContract_InvalidJSON(t *testing.T) {
	require.Error(t, checkContract("session", sessionSchemaDef, []byte(`{not json`)))
}

func TestCheckContract_CachesCompiledSchema(t *testing.T) {
	// Two checks against the same name must reuse the compiled schema.
	require.NoError(t, checkContract("session", sessionSchemaDef, []byte(`{"id": "a"}`)))
	cached, ok := schemaCache.Load("session")
	require.True(t, ok)
	require.NoError(t, checkContract("session", sessionSchemaDef, []byte(`{"id": "b"}`)))
	again, _ := schemaCache.Load("session")
	assert.Same(t, cached, again)
}
