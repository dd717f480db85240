package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		meta     Meta
		wantCode int
		wantResp string
		wantMsg  string
	}{
		{
			name:     "convention unwrapped",
			raw:      `{"statusCode":200,"response":{"token":"T1","id":"U1"}}`,
			meta:     Meta{StatusCode: 200},
			wantCode: 200,
			wantResp: `{"token":"T1","id":"U1"}`,
		},
		{
			name:     "meta status wins",
			raw:      `{"statusCode":200,"response":[]}`,
			meta:     Meta{StatusCode: 500},
			wantCode: 500,
			wantResp: `[]`,
		},
		{
			name:     "body status used when meta empty",
			raw:      `{"statusCode":201}`,
			wantCode: 201,
		},
		{
			name:     "error message lifted",
			raw:      `{"statusCode":401,"message":"Invalid credentials"}`,
			meta:     Meta{StatusCode: 401},
			wantCode: 401,
			wantMsg:  "Invalid credentials",
		},
		{
			name:     "plain json kept",
			raw:      `{"media":[]}`,
			meta:     Meta{StatusCode: 200},
			wantCode: 200,
			wantResp: `{"media":[]}`,
		},
		{
			name:     "non json kept",
			raw:      "<html>bad gateway</html>",
			meta:     Meta{StatusCode: 502},
			wantCode: 502,
			wantResp: "<html>bad gateway</html>",
		},
		{
			name:     "empty body",
			raw:      "",
			meta:     Meta{StatusCode: 204},
			wantCode: 204,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Normalize([]byte(tt.raw), tt.meta)
			assert.Equal(t, tt.wantCode, env.StatusCode)
			assert.Equal(t, tt.wantResp, string(env.Response))
			assert.Equal(t, tt.wantMsg, env.Message)
		})
	}
}

func TestEnvelope_Classification(t *testing.T) {
	assert.True(t, Envelope{StatusCode: 200}.OK())
	assert.True(t, Envelope{StatusCode: 201}.OK())
	assert.False(t, Envelope{StatusCode: 204}.OK())
	assert.False(t, Envelope{StatusCode: 401}.OK())
	assert.True(t, Envelope{StatusCode: 401}.Unauthorized())
	assert.False(t, Envelope{StatusCode: 403}.Unauthorized())
}

func TestEnvelope_Decode(t *testing.T) {
	env := Envelope{StatusCode: 200, Response: json.RawMessage(`{"token":"T1","id":"U1"}`)}

	var out struct {
		Token string `json:"token"`
		ID    string `json:"id"`
	}
	require.NoError(t, env.Decode(&out))
	assert.Equal(t, "T1", out.Token)
	assert.Equal(t, "U1", out.ID)

	err := Envelope{StatusCode: 200}.Decode(&out)
	require.ErrorIs(t, err, ErrEmptyResponse)
}
