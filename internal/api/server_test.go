package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/catalog-sync/internal/sync"
)

// wait blocks until the in-flight run (if any) finishes.
func (s *Server) wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func TestHealth(t *testing.T) {
	s := NewServer(func(ctx context.Context) (*sync.RunReport, error) {
		return &sync.RunReport{}, nil
	})
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTriggerRun(t *testing.T) {
	ran := make(chan struct{}, 1)
	s := NewServer(func(ctx context.Context) (*sync.RunReport, error) {
		ran <- struct{}{}
		return &sync.RunReport{RunID: "r1", Status: sync.RunCompleted, Inserted: 2}, nil
	})
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/sync/run", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	<-ran
	s.wait()

	resp, err = http.Get(srv.URL + "/api/sync/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	var status statusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.False(t, status.Running)
	require.NotNil(t, status.LastRun)
	assert.Equal(t, "r1", status.LastRun.RunID)
	assert.Equal(t, 2, status.LastRun.Inserted)
	assert.Empty(t, status.Error)
}

func TestTriggerRunWhileRunning(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	s := NewServer(func(ctx context.Context) (*sync.RunReport, error) {
		close(started)
		<-release
		return &sync.RunReport{}, nil
	})
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/sync/run", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	<-started

	resp, err = http.Post(srv.URL+"/api/sync/run", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	close(release)
	s.wait()
}

func TestRunErrorSurfaced(t *testing.T) {
	s := NewServer(func(ctx context.Context) (*sync.RunReport, error) {
		return nil, errors.New("source unavailable")
	})
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/sync/run", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	s.wait()

	resp, err = http.Get(srv.URL + "/api/sync/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	var status statusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "source unavailable", status.Error)
}

func TestLatestReportNotFound(t *testing.T) {
	s := NewServer(func(ctx context.Context) (*sync.RunReport, error) {
		return &sync.RunReport{}, nil
	})
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/sync/report/latest")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
