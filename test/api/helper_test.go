package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// TestResponse is the decoded API envelope plus the status code.
type TestResponse struct {
	StatusCode int
	Success    bool                   `json:"success"`
	Message    string                 `json:"message"`
	Data       map[string]interface{} `json:"data"`
	Errors     []fieldError           `json:"errors"`
}

func (r TestResponse) GetString(key string) string {
	if r.Data == nil {
		return ""
	}
	if v, ok := r.Data[key].(string); ok {
		return v
	}
	return ""
}

func (r TestResponse) Items(key string) []interface{} {
	items, _ := r.Data[key].([]interface{})
	return items
}

func (r TestResponse) HasFieldError(field string) bool {
	for _, e := range r.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

func makeRequest(method, path string, body interface{}, token string) TestResponse {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return TestResponse{Message: fmt.Sprintf("Failed to marshal request body: %v", err)}
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		return TestResponse{Message: fmt.Sprintf("Failed to create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return TestResponse{Message: fmt.Sprintf("Request failed: %v", err)}
	}
	defer resp.Body.Close()

	out := TestResponse{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &out); err != nil {
		out.Message = fmt.Sprintf("Failed to decode response: %v (%s)", err, raw)
	}
	out.StatusCode = resp.StatusCode
	return out
}

var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, time.Now().UnixNano())
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@example.com", prefix, time.Now().UnixNano())
}

// uniqueMobile returns a valid Indian mobile number.
func uniqueMobile() string {
	return fmt.Sprintf("9%09d", rng.Intn(1_000_000_000))
}

// createTestPatient creates a patient and schedules its deletion.
func createTestPatient(t *testing.T, extra map[string]interface{}) string {
	t.Helper()

	body := map[string]interface{}{
		"name":        uniqueName("Test Patient"),
		"dateOfBirth": "1980-05-17",
		"sex":         "FEMALE",
		"mobile":      uniqueMobile(),
		"email":       uniqueEmail("patient"),
		"height":      160,
		"weight":      58,
	}
	for k, v := range extra {
		body[k] = v
	}

	resp := makeRequest(http.MethodPost, "/patients", body, adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode, resp.Message)

	id := resp.GetString("id")
	require.NotEmpty(t, id)
	t.Cleanup(func() {
		makeRequest(http.MethodDelete, "/patients/"+id, nil, adminToken)
	})
	return id
}

// registerUser self-registers a user with role and returns its token.
func registerUser(t *testing.T, role string) string {
	t.Helper()

	resp := makeRequest(http.MethodPost, "/auth/register", map[string]string{
		"email":     uniqueEmail(role),
		"password":  "s3cure-password",
		"firstName": "Test",
		"lastName":  role,
		"role":      role,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, resp.Message)

	token := resp.GetString("token")
	require.NotEmpty(t, token)
	return token
}
