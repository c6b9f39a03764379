package s3client

import (
	"text2phenotype.com/svmpredict/logger"
	"bytes"
	"errors"
	"fmt"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"sync"
)

var ErrNoSession = errors.New("could not initialize S3 session")

// Client moves feature, result and model files in and out of one bucket.
// A failed transfer refreshes the session once and retries.
type Client struct {
	mu         sync.Mutex
	sess       *session.Session
	bucketName string
	env        EnvironmentConfig
}

var clientLogger = logger.NewLogger("S3Client")
var sdkLogger = logger.NewLogger("S3-SDK")

type EnvironmentConfig struct {
	BucketName  string `envconfig:"SVM_STORAGE_CONTAINER_NAME" required:"true"`
	Env         string `envconfig:"SVM_ENV" default:"prod"`
	Region      string `envconfig:"SVM_AWS_REGION_NAME" required:"true"`
	AwsEndpoint string `envconfig:"SVM_AWS_ENDPOINT_URL" default:""`
	AccessKeyID string `envconfig:"SVM_AWS_ACCESS_ID" default:""`
	AccessKey   string `envconfig:"SVM_AWS_ACCESS_KEY" default:""`
}

func New() (*Client, error) {
	env, err := readEnvironment()
	if err != nil {
		clientLogger.Err(err).Msg("Failed to get proper variables from environment")
		return nil, err
	}
	client := &Client{
		bucketName: env.BucketName,
		env:        env,
	}
	if _, err := client.refresh(nil); err != nil {
		return nil, err
	}
	return client, nil
}

func (client *Client) Upload(data []byte, key string) (*s3manager.UploadOutput, error) {
	params := &s3manager.UploadInput{
		Bucket: aws.String(client.bucketName),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	output, err := client.upload(client.session(), params)
	if err == nil {
		return output, nil
	}
	sess, err := client.refresh(err)
	if err != nil {
		return nil, err
	}
	params.Body = bytes.NewReader(data)
	return client.upload(sess, params)
}

func (client *Client) Download(key string) ([]byte, error) {
	params := &s3.GetObjectInput{
		Bucket: aws.String(client.bucketName),
		Key:    aws.String(key),
	}
	res, err := client.download(client.session(), params)
	if err == nil {
		return res, nil
	}
	sess, err := client.refresh(err)
	if err != nil {
		return nil, err
	}
	return client.download(sess, params)
}

func (client *Client) Close() {
	client.mu.Lock()
	defer client.mu.Unlock()
	client.sess = nil
	clientLogger.Info().Msg("Closing client")
}

func (client *Client) session() *session.Session {
	client.mu.Lock()
	defer client.mu.Unlock()
	return client.sess
}

func (client *Client) upload(sess *session.Session, params *s3manager.UploadInput) (*s3manager.UploadOutput, error) {
	if sess == nil {
		return nil, ErrNoSession
	}
	svmLogger := clientLogger.With().
		Str("key", *params.Key).
		Str("bucket", *params.Bucket).Logger()
	sdkLog := sdkLogger.With().
		Str("key", *params.Key).
		Str("bucket", *params.Bucket).Logger()

	uploader := s3manager.NewUploader(sess.Copy(&aws.Config{Logger: getLogger(sdkLog)}))
	svmLogger.Debug().Msg("Uploading the file")
	return uploader.Upload(params)
}

func (client *Client) download(sess *session.Session, params *s3.GetObjectInput) ([]byte, error) {
	if sess == nil {
		return nil, ErrNoSession
	}
	svmLogger := clientLogger.With().
		Str("key", *params.Key).
		Str("bucket", *params.Bucket).Logger()
	sdkLog := sdkLogger.With().
		Str("key", *params.Key).
		Str("bucket", *params.Bucket).Logger()

	downloader := s3manager.NewDownloader(sess.Copy(&aws.Config{Logger: getLogger(sdkLog)}))
	buf := aws.NewWriteAtBuffer([]byte{})

	svmLogger.Debug().Msg("Downloading file")
	size, err := downloader.Download(buf, params)
	if err != nil {
		svmLogger.Error().Err(err).Msg("Failed to download file")
		return nil, err
	}
	svmLogger.Debug().Msgf("Downloaded %v bytes", size)
	return buf.Bytes(), nil
}

// refresh replaces the current session. cause is the error that made the
// old session suspect, nil on first use.
func (client *Client) refresh(cause error) (*session.Session, error) {
	client.mu.Lock()
	defer client.mu.Unlock()
	if cause != nil {
		clientLogger.Error().Err(cause).Msg("Caught error while using S3 session, trying to refresh it")
	}
	sess, err := client.acquireSession()
	if err != nil {
		client.sess = nil
		return nil, err
	}
	client.sess = sess
	return sess, nil
}

func (client *Client) acquireSession() (*session.Session, error) {
	sess, err := session.NewSession(client.createEC2Config())
	if err == nil {
		if _, err = sts.New(sess).GetCallerIdentity(&sts.GetCallerIdentityInput{}); err == nil {
			clientLogger.Info().Msg("S3 session successfully initialized using EC2")
			return sess, nil
		}
	}
	clientLogger.Info().Msg("Could not initialize S3 session using EC2, trying env credentials")
	cfg, err := client.createEnvConfig()
	if err != nil {
		return nil, err
	}
	sess, err = session.NewSession(cfg)
	if err != nil {
		clientLogger.Error().Err(err).Msg("Could not initialize S3 session")
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	if _, err = sts.New(sess).GetCallerIdentity(&sts.GetCallerIdentityInput{}); err != nil {
		clientLogger.Error().Err(err).Msg("Could not initialize S3 session")
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	clientLogger.Info().Msg("S3 session successfully initialized using env credentials")
	return sess, nil
}

func (client *Client) createEC2Config() *aws.Config {
	return &aws.Config{
		Region:     aws.String(client.env.Region),
		MaxRetries: aws.Int(4),
		LogLevel:   aws.LogLevel(aws.LogDebug),
	}
}

func (client *Client) createEnvConfig() (*aws.Config, error) {
	creds := credentials.NewStaticCredentials(
		client.env.AccessKeyID,
		client.env.AccessKey,
		"")
	if _, err := creds.Get(); err != nil {
		clientLogger.Error().Err(err).Msg("Error with credentials from environment")
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	cfg := aws.NewConfig().
		WithRegion(client.env.Region).
		WithMaxRetries(4).
		WithCredentials(creds).
		WithLogLevel(aws.LogDebug)

	if client.env.Env == "dev" && len(client.env.AwsEndpoint) > 0 {
		cfg = cfg.WithEndpoint(client.env.AwsEndpoint).
			WithS3ForcePathStyle(true)
	}
	return cfg, nil
}

func readEnvironment() (EnvironmentConfig, error) {
	var config EnvironmentConfig
	err := envconfig.Process("", &config)
	return config, err
}

type s3Logger struct {
	svmLogger zerolog.Logger
}

func getLogger(svmLogger zerolog.Logger) *s3Logger {
	return &s3Logger{
		svmLogger,
	}
}

func (logger *s3Logger) Log(v ...interface{}) {
	//nolint
	logger.svmLogger.Debug().Msg(fmt.Sprint(v...))
}
