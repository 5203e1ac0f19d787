package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentduel/agentduel/types"
)

func TestAgentHandler_Create(t *testing.T) {
	env := newTestEnv(t)

	var created types.AgentConfig
	rec := env.do(t, http.MethodPost, "/api/agents/", map[string]string{
		"name":                    "Alice",
		"personality_traits":      "stubborn, direct",
		"behavioral_instructions": "never apologizes first",
	}, &created)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Alice", created.Name)
	assert.Equal(t, "stubborn, direct", created.PersonalityTraits)
	assert.Equal(t, "never apologizes first", created.BehavioralInstructions)
	assert.NoError(t, types.ValidateID(created.ID, types.KindAgent))
	assert.False(t, created.CreatedAt.IsZero())
}

func TestAgentHandler_Create_MissingName(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/agents/", map[string]string{
		"personality_traits": "calm",
	}, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(types.ErrValidation), env.decodeError(t, rec).Code)
}

func TestAgentHandler_List(t *testing.T) {
	env := newTestEnv(t)

	for _, name := range []string{"Alice", "Bob", "Carol"} {
		rec := env.do(t, http.MethodPost, "/api/agents/", map[string]string{
			"name":               name,
			"personality_traits": "calm",
		}, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	var listed []*types.AgentConfig
	rec := env.do(t, http.MethodGet, "/api/agents/", nil, &listed)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, listed, 3)
	assert.Equal(t, "Alice", listed[0].Name)
	assert.Equal(t, "Carol", listed[2].Name)
}

func TestAgentHandler_Get(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.registry.Create("Alice", "calm", "")
	require.NoError(t, err)

	var fetched types.AgentConfig
	rec := env.do(t, http.MethodGet, "/api/agents/"+created.ID, nil, &fetched)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Alice", fetched.Name)
}

func TestAgentHandler_Get_Unknown(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/agents/a-"+uuid.NewString(), nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(types.ErrNotFound), env.decodeError(t, rec).Code)
}

func TestAgentHandler_Get_WrongIDKind(t *testing.T) {
	env := newTestEnv(t)

	// A conversation id where an agent id belongs.
	rec := env.do(t, http.MethodGet, "/api/agents/c-"+uuid.NewString(), nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(types.ErrInvalidIdentifier), env.decodeError(t, rec).Code)
}

func TestAgentHandler_Delete(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.registry.Create("Alice", "calm", "")
	require.NoError(t, err)

	rec := env.do(t, http.MethodDelete, "/api/agents/"+created.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/agents/"+created.ID, nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
