package api_test

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// These tests drive a running server end to end. Start it with
// `api migrate up && api create-admin ... && api serve`, then run
//
//	API_URL=http://localhost:8080 ADMIN_EMAIL=... ADMIN_PASSWORD=... go test ./test/api/...
var (
	baseURL    string
	adminToken string
)

func checkAPIServer() error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(strings.TrimSuffix(baseURL, "/api") + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health returned %d", resp.StatusCode)
	}
	return nil
}

func TestMain(m *testing.M) {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		fmt.Println("API_URL not set, skipping end-to-end API tests")
		os.Exit(0)
	}
	baseURL = strings.TrimRight(apiURL, "/") + "/api"

	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		err := checkAPIServer()
		if err == nil {
			break
		}
		if i == maxRetries-1 {
			fmt.Printf("Error: %v\nMake sure the API server is running at %s\n", err, apiURL)
			os.Exit(1)
		}
		fmt.Printf("Waiting for API server (attempt %d/%d)...\n", i+1, maxRetries)
		time.Sleep(2 * time.Second)
	}

	if err := setupAuth(); err != nil {
		fmt.Printf("Failed to authenticate: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func setupAuth() error {
	email, password := os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must name an account created with create-admin")
	}

	resp := makeRequest(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	if !resp.Success {
		return fmt.Errorf("login failed: %s", resp.Message)
	}

	adminToken = resp.GetString("token")
	if adminToken == "" {
		return fmt.Errorf("login returned no token")
	}
	return nil
}
