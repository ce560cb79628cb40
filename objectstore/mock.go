package objectstore

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// MockClient is a hand-rolled Client test double: an in-memory object map,
// call-tracking fields, and an injectable Err for failure-path tests.
type MockClient struct {
	Objects map[string]*MockObject
	Err     error

	ListObjectsV2Called bool
	GetObjectCalled     bool
	HeadObjectCalled    bool
	LastPrefix          string
}

// MockObject is one in-memory stand-in for an S3 object.
type MockObject struct {
	Key     string
	Content []byte
}

// NewMockClient creates an empty mock client.
func NewMockClient() *MockClient {
	return &MockClient{Objects: make(map[string]*MockObject)}
}

// Put seeds the mock with an object, for test setup.
func (m *MockClient) Put(key string, content []byte) {
	m.Objects[key] = &MockObject{Key: key, Content: content}
}

func (m *MockClient) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.ListObjectsV2Called = true
	if params.Prefix != nil {
		m.LastPrefix = *params.Prefix
	}
	if m.Err != nil {
		return nil, m.Err
	}
	prefix := ""
	if params.Prefix != nil {
		prefix = *params.Prefix
	}
	var contents []types.Object
	for key, obj := range m.Objects {
		if strings.HasPrefix(key, prefix) {
			contents = append(contents, types.Object{Key: aws.String(key), Size: aws.Int64(int64(len(obj.Content)))})
		}
	}
	return &s3.ListObjectsV2Output{Contents: contents}, nil
}

func (m *MockClient) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.GetObjectCalled = true
	if m.Err != nil {
		return nil, m.Err
	}
	if params.Key == nil {
		return nil, &types.NoSuchKey{}
	}
	obj, ok := m.Objects[*params.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(string(obj.Content))),
		ContentLength: aws.Int64(int64(len(obj.Content))),
	}, nil
}

func (m *MockClient) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.HeadObjectCalled = true
	if m.Err != nil {
		return nil, m.Err
	}
	if params.Key == nil {
		return nil, &types.NoSuchKey{}
	}
	obj, ok := m.Objects[*params.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(obj.Content)))}, nil
}
