package utils

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	inputs []*s3.PutObjectInput
	bodies []string
	err    error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, string(raw))
	return &s3.PutObjectOutput{}, nil
}

func TestUploadJSON(t *testing.T) {
	fake := &fakePutter{}
	exp := NewR2ExporterWithClient(fake, "boards", "https://cdn.example.com", "https://acct.r2.cloudflarestorage.com")

	url, err := exp.UploadJSON(context.Background(), "leaderboards/global/latest.json", []byte(`{"entries":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/leaderboards/global/latest.json", url)

	require.Len(t, fake.inputs, 1)
	assert.Equal(t, "boards", aws.ToString(fake.inputs[0].Bucket))
	assert.Equal(t, "application/json", aws.ToString(fake.inputs[0].ContentType))
	assert.Equal(t, `{"entries":[]}`, fake.bodies[0])
}

func TestUploadJSONFallsBackToEndpoint(t *testing.T) {
	exp := NewR2ExporterWithClient(&fakePutter{}, "boards", "", "https://acct.r2.cloudflarestorage.com")
	url, err := exp.UploadJSON(context.Background(), "k.json", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "https://acct.r2.cloudflarestorage.com/k.json", url)
}

func TestUploadJSONError(t *testing.T) {
	exp := NewR2ExporterWithClient(&fakePutter{err: errors.New("denied")}, "boards", "", "https://x")
	_, err := exp.UploadJSON(context.Background(), "k.json", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}
