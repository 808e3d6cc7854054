package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/config"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.StorageConfig{
		Endpoint:   srv.URL,
		Bucket:     "device-models",
		ServiceKey: "test-key",
	})
}

func TestClientList(t *testing.T) {
	id := "obj-1"
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/object/list/device-models", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ready-use-object", body["prefix"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]listEntry{
			{Name: "router.glb", ID: &id},
			{Name: "switch.glb", ID: &id},
			{Name: ".emptyFolderPlaceholder", ID: nil},
		})
	}))

	objects, err := client.List(context.Background(), "ready-use-object")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "router.glb", objects[0].Name)
	assert.Equal(t, "ready-use-object/router.glb", objects[0].Path)
	assert.Contains(t, objects[0].URL, "/object/public/device-models/ready-use-object/router.glb")
}

func TestClientUpload(t *testing.T) {
	var gotUpsert, gotContentType string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/object/device-models/ready-use-object/router.glb", r.URL.Path)
		gotUpsert = r.Header.Get("x-upsert")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))

	err := client.Upload(context.Background(), "ready-use-object/router.glb", []byte("glTF"), "model/gltf-binary")
	require.NoError(t, err)
	assert.Equal(t, "true", gotUpsert)
	assert.Equal(t, "model/gltf-binary", gotContentType)
}

func TestClientDownload(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/object/device-models/missing.glb" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("glTF-bytes"))
	}))

	data, err := client.Download(context.Background(), "present.glb")
	require.NoError(t, err)
	assert.Equal(t, []byte("glTF-bytes"), data)

	_, err = client.Download(context.Background(), "missing.glb")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestClientRemove(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path == "/object/device-models/missing.glb" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	require.NoError(t, client.Remove(context.Background(), "present.glb"))
	assert.ErrorIs(t, client.Remove(context.Background(), "missing.glb"), ErrObjectNotFound)
}

func TestClientSignUploadURL(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/object/upload/sign/device-models/ready-use-object/new.glb", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 600, body["expiresIn"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(signResponse{
			URL: "/object/upload/sign/device-models/ready-use-object/new.glb?token=abc",
		})
	}))

	url, err := client.SignUploadURL(context.Background(), "ready-use-object/new.glb", 10*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "token=abc")
	assert.Contains(t, url, "http")
}

func TestClientServerError(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.List(context.Background(), "ready-use-object")
	assert.Error(t, err)

	err = client.Upload(context.Background(), "x.glb", []byte("data"), "")
	assert.Error(t, err)
}
