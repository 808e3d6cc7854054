// Package storage provides access to the blob bucket holding device
// 3D model files.
//
// BlobStore is the interface consumed by the asset layer. Client talks
// to a hosted Supabase-compatible storage API; Memory is an in-memory
// implementation for tests.
package storage
