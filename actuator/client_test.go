package actuator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnicklin/actuator_loglevels/models"
)

var testCreds = models.Credentials{Username: "awslambda", Password: "pw"}

func TestSetLoggerLevel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/actuator/loggers/org.springframework.security", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "test/1.0", r.Header.Get("User-Agent"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "awslambda", user)
		assert.Equal(t, "pw", pass)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"configuredLevel": "DEBUG"}, body)

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(Params{
		BaseURL:    server.URL + "/",
		UserAgent:  "test/1.0",
		HTTPClient: server.Client(),
	})

	status, err := client.SetLoggerLevel(context.Background(), testCreds, "org.springframework.security", "DEBUG")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestSetLoggerLevelRejectionIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(Params{BaseURL: server.URL, HTTPClient: server.Client()})

	status, err := client.SetLoggerLevel(context.Background(), testCreds, "root", "INFO")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSetLoggerLevelTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := New(Params{BaseURL: url})

	_, err := client.SetLoggerLevel(context.Background(), testCreds, "root", "INFO")
	require.Error(t, err)
}

func TestSetLoggerLevelEscapesName(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(Params{BaseURL: server.URL, HTTPClient: server.Client()})

	_, err := client.SetLoggerLevel(context.Background(), testCreds, "a b/c", "INFO")
	require.NoError(t, err)
	assert.Equal(t, "/actuator/loggers/a%20b%2Fc", gotPath)
}

func TestSetLoggerLevelValidation(t *testing.T) {
	_, err := New(Params{BaseURL: "http://localhost"}).SetLoggerLevel(context.Background(), testCreds, "", "INFO")
	require.Error(t, err)

	_, err = New(Params{}).SetLoggerLevel(context.Background(), testCreds, "root", "INFO")
	require.Error(t, err)
}

func TestLoggerLevel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/actuator/loggers/com.example", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"configuredLevel":"DEBUG","effectiveLevel":"DEBUG"}`))
	}))
	defer server.Close()

	client := New(Params{BaseURL: server.URL, HTTPClient: server.Client()})

	levels, err := client.LoggerLevel(context.Background(), testCreds, "com.example")
	require.NoError(t, err)
	assert.Equal(t, LoggerLevels{ConfiguredLevel: "DEBUG", EffectiveLevel: "DEBUG"}, levels)
}

func TestLoggerLevelNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	client := New(Params{BaseURL: server.URL, HTTPClient: server.Client()})

	_, err := client.LoggerLevel(context.Background(), testCreds, "com.example")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
