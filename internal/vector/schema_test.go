package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"
)

type MockSchemaClient struct {
	mock.Mock
}

func (m *MockSchemaClient) ClassExists(ctx context.Context, className string) (bool, error) {
	args := m.Called(ctx, className)
	return args.Bool(0), args.Error(1)
}

func (m *MockSchemaClient) CreateClass(ctx context.Context, class *models.Class) error {
	args := m.Called(ctx, class)
	return args.Error(0)
}

func (m *MockSchemaClient) GetClass(ctx context.Context, className string) (*models.Class, error) {
	args := m.Called(ctx, className)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Class), args.Error(1)
}

func (m *MockSchemaClient) AddProperty(ctx context.Context, className string, property *models.Property) error {
	args := m.Called(ctx, className, property)
	return args.Error(0)
}

func TestEnsureSchema_CreatesClassWhenMissing(t *testing.T) {
	client := new(MockSchemaClient)
	client.On("ClassExists", mock.Anything, ClassName).Return(false, nil)
	client.On("CreateClass", mock.Anything, mock.MatchedBy(func(c *models.Class) bool {
		return c.Class == ClassName && c.Vectorizer == "none" && len(c.Properties) == 8
	})).Return(nil)

	err := EnsureSchema(context.Background(), client)
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestEnsureSchema_BackfillsMissingProperties(t *testing.T) {
	client := new(MockSchemaClient)
	client.On("ClassExists", mock.Anything, ClassName).Return(true, nil)
	client.On("GetClass", mock.Anything, ClassName).Return(&models.Class{
		Class: ClassName,
		Properties: []*models.Property{
			{Name: "content"},
			{Name: "documentId"},
			{Name: "documentName"},
			{Name: "organizationId"},
			{Name: "agentIds"},
			{Name: "chunkIndex"},
			{Name: "createdAt"},
		},
	}, nil)
	client.On("AddProperty", mock.Anything, ClassName, mock.MatchedBy(func(p *models.Property) bool {
		return p.Name == "totalChunks"
	})).Return(nil)

	err := EnsureSchema(context.Background(), client)
	require.NoError(t, err)
	client.AssertNumberOfCalls(t, "AddProperty", 1)
	client.AssertNotCalled(t, "CreateClass", mock.Anything, mock.Anything)
}

func TestEnsureSchema_PropagatesExistenceError(t *testing.T) {
	client := new(MockSchemaClient)
	client.On("ClassExists", mock.Anything, ClassName).Return(false, errors.New("connection refused"))

	err := EnsureSchema(context.Background(), client)
	assert.Error(t, err)
}
