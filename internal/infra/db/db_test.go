package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheme(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"postgres://u:p@localhost/resumes", "postgres", false},
		{"PostgreSQL://u:p@localhost/resumes", "postgresql", false},
		{"mysql://u:p@tcp(db:3306)/resumes", "mysql", false},
		{"memory://", "memory", false},
		{"localhost:5432", "", true},
		{"://nohost", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Scheme(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen_Memory(t *testing.T) {
	h, err := Open(context.Background(), "memory://")
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, "memory", h.Driver)
	assert.Nil(t, h.DB)
	require.NotNil(t, h.Store)
	assert.NoError(t, h.Store.Migrate(context.Background()))
	assert.NoError(t, h.Check(context.Background()))
}

func TestOpen_UnsupportedScheme(t *testing.T) {
	_, err := Open(context.Background(), "mongodb://localhost:27017/resumes")
	assert.ErrorContains(t, err, `unsupported database scheme "mongodb"`)
}

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := connect(context.Background(), "oracle", "whatever", DefaultPool)
	assert.ErrorContains(t, err, "unknown driver")
}
