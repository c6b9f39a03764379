package s3client

import (
	"errors"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestReadEnvironment(t *testing.T) {
	t.Setenv("SVM_STORAGE_CONTAINER_NAME", "svm-bucket")
	t.Setenv("SVM_AWS_REGION_NAME", "us-east-1")

	env, err := readEnvironment()
	require.NoError(t, err)
	assert.Equal(t, "svm-bucket", env.BucketName)
	assert.Equal(t, "prod", env.Env)
	assert.Empty(t, env.AwsEndpoint)
}

func TestEnvConfig(t *testing.T) {
	t.Run("dev endpoint", testDevEndpoint)
	t.Run("endpoint ignored outside dev", testEndpointIgnored)
	t.Run("missing credentials", testMissingCredentials)
}

func testDevEndpoint(t *testing.T) {
	client := Client{env: EnvironmentConfig{
		Env:         "dev",
		Region:      "us-east-1",
		AwsEndpoint: "http://localhost:4566",
		AccessKeyID: "id",
		AccessKey:   "key",
	}}
	cfg, err := client.createEnvConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4566", aws.StringValue(cfg.Endpoint))
	assert.True(t, aws.BoolValue(cfg.S3ForcePathStyle))
}

func testEndpointIgnored(t *testing.T) {
	client := Client{env: EnvironmentConfig{
		Env:         "prod",
		Region:      "us-east-1",
		AwsEndpoint: "http://localhost:4566",
		AccessKeyID: "id",
		AccessKey:   "key",
	}}
	cfg, err := client.createEnvConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg.Endpoint)
}

func testMissingCredentials(t *testing.T) {
	client := Client{env: EnvironmentConfig{Region: "us-east-1"}}
	_, err := client.createEnvConfig()
	assert.True(t, errors.Is(err, ErrNoSession))
}

func TestTransfersWithoutSession(t *testing.T) {
	client := Client{bucketName: "svm-bucket"}
	_, err := client.download(client.session(), &s3.GetObjectInput{
		Bucket: aws.String("svm-bucket"),
		Key:    aws.String("features.json"),
	})
	assert.True(t, errors.Is(err, ErrNoSession))

	_, err = client.upload(nil, &s3manager.UploadInput{
		Bucket: aws.String("svm-bucket"),
		Key:    aws.String("results.json"),
	})
	assert.True(t, errors.Is(err, ErrNoSession))
}
