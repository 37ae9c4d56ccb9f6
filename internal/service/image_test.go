package service_test

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkful/backend/internal/service"
)

type memStore struct {
	name        string
	contentType string
	data        []byte
}

func (m *memStore) Save(ctx context.Context, data []byte, name, contentType string) (string, error) {
	m.name = name
	m.contentType = contentType
	m.data = data
	return "/media/" + name, nil
}

func TestSaveDataURI(t *testing.T) {
	store := &memStore{}
	svc := service.NewImageService(store)
	ctx := context.Background()

	payload := base64.StdEncoding.EncodeToString([]byte("fake png bytes"))

	url, err := svc.SaveDataURI(ctx, "data:image/png;base64,"+payload)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/media/"))
	assert.True(t, strings.HasSuffix(store.name, ".png"))
	assert.Equal(t, "image/png", store.contentType)
	assert.Equal(t, []byte("fake png bytes"), store.data)
}

func TestSaveDataURIBarePayloadIsPNG(t *testing.T) {
	store := &memStore{}
	svc := service.NewImageService(store)

	payload := base64.StdEncoding.EncodeToString([]byte("fake"))
	_, err := svc.SaveDataURI(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "image/png", store.contentType)
}

func TestSaveDataURIValidation(t *testing.T) {
	svc := service.NewImageService(&memStore{})
	ctx := context.Background()

	cases := map[string]string{
		"unsupported type": "data:image/tiff;base64," + base64.StdEncoding.EncodeToString([]byte("x")),
		"not base64":       "data:image/png;base64,%%%%",
		"missing encoding": "data:image/png,plain",
		"empty payload":    "data:image/png;base64,",
	}
	for name, uri := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.SaveDataURI(ctx, uri)
			assert.True(t, service.IsValidationError(err))
		})
	}
}
