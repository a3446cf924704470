package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	log "github.com/sirupsen/logrus"
)

// S3 is an implementation of Store backed by AWS S3. Each value is an object
// named after its key, optionally under a prefix.
type S3 struct {
	bucket string
	prefix string
	client s3iface.S3API
}

// NewAWSSession creates a session using the named profile from the shared
// credentials file.
func NewAWSSession(profile, region string) (*session.Session, error) {
	return session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewSharedCredentials("", profile),
	})
}

func NewS3(client s3iface.S3API, bucket, prefix string) *S3 {
	return &S3{
		bucket: bucket,
		prefix: prefix,
		client: client,
	}
}

func (s *S3) Get(key string) (value []byte, err error) {
	objectKey := s.prefix + key
	output, err := s.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("%.40q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("could not get %.40q: %w", key, err)
	}
	defer func() {
		if err := output.Body.Close(); err != nil {
			log.WithFields(log.Fields{
				"op":  "get",
				"key": objectKey,
			}).Warning("Could not close response body")
		}
	}()
	value, err = io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read %.40q: %w", key, err)
	}
	return value, nil
}

func (s *S3) Put(key string, value []byte) error {
	_, err := s.client.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
		Body:   bytes.NewReader(dup(value)),
	})
	if err != nil {
		return fmt.Errorf("could not put %.40q: %w", key, err)
	}
	return nil
}

func isS3NotFound(err error) bool {
	var rfErr awserr.RequestFailure
	if errors.As(err, &rfErr) && rfErr.StatusCode() == http.StatusNotFound {
		return true
	}
	var aerr awserr.Error
	return errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey
}
