package storage_test

import (
	"bytes"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type fakeS3 struct {
	s3iface.S3API
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(input *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.objects[aws.StringValue(input.Bucket)+"/"+aws.StringValue(input.Key)]
	if !ok {
		return nil, awserr.NewRequestFailure(
			awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil),
			404,
			"request-id",
		)
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(v)),
	}, nil
}

func (f *fakeS3) PutObject(input *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	v, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.StringValue(input.Bucket)+"/"+aws.StringValue(input.Key)] = v
	return &s3.PutObjectOutput{}, nil
}

type fakeDynamoDB struct {
	dynamodbiface.DynamoDBAPI
	rcus, wcus int64
	mu         sync.Mutex
	items      map[string]map[string]*dynamodb.AttributeValue
}

func newFakeDynamoDB(rcus, wcus int64) *fakeDynamoDB {
	return &fakeDynamoDB{
		rcus:  rcus,
		wcus:  wcus,
		items: make(map[string]map[string]*dynamodb.AttributeValue),
	}
}

func (f *fakeDynamoDB) DescribeTable(input *dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{
		Table: &dynamodb.TableDescription{
			TableName: input.TableName,
			ProvisionedThroughput: &dynamodb.ProvisionedThroughputDescription{
				ReadCapacityUnits:  aws.Int64(f.rcus),
				WriteCapacityUnits: aws.Int64(f.wcus),
			},
		},
	}, nil
}

func (f *fakeDynamoDB) PutItem(input *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item := make(map[string]*dynamodb.AttributeValue)
	for k, v := range input.Item {
		c := *v
		c.B = append([]byte{}, v.B...)
		item[k] = &c
	}
	f.items[aws.StringValue(input.Item["k"].S)] = item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoDB) GetItem(input *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[aws.StringValue(input.Key["k"].S)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: item}, nil
}
