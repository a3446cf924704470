package storage

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DynamoDB is a Store implementation backed by a DynamoDB table whose hash key
// is the string attribute "k". Values are kept in the binary attribute "va".
type DynamoDB struct {
	table string
	ddb   dynamodbiface.DynamoDBAPI

	// Do throttling on our side based on configured RCUs/WCUs so the
	// client doesn't have to retry.
	getLimiter *rate.Limiter
	putLimiter *rate.Limiter
}

func NewDynamoDB(ddb dynamodbiface.DynamoDBAPI, table string) (*DynamoDB, error) {
	s := &DynamoDB{
		table: table,
		ddb:   ddb,
	}
	if err := s.configureLimiters(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *DynamoDB) configureLimiters() error {
	result, err := s.ddb.DescribeTable(&dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	})
	if err != nil {
		return fmt.Errorf("could not describe table %q: %w", s.table, err)
	}
	var rcus, wcus int64
	if pt := result.Table.ProvisionedThroughput; pt != nil {
		rcus = aws.Int64Value(pt.ReadCapacityUnits)
		wcus = aws.Int64Value(pt.WriteCapacityUnits)
	}
	// Assume values are <= 1 kB, so that RCUs/WCUs translate to get/put
	// requests per second. On-demand tables report zero capacity.
	s.getLimiter = limiterFor(rcus)
	s.putLimiter = limiterFor(wcus)
	log.WithFields(log.Fields{
		"table": s.table,
		"rcus":  rcus,
		"wcus":  wcus,
	}).Debug("Configured DynamoDB limiters")
	return nil
}

func limiterFor(units int64) *rate.Limiter {
	if units <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Duration(1_000_000/units)*time.Microsecond), 1)
}

func (s *DynamoDB) Put(key string, value []byte) error {
	var input dynamodb.PutItemInput
	input.TableName = aws.String(s.table)
	input.Item = map[string]*dynamodb.AttributeValue{
		"k":  {S: aws.String(key)},
		"va": {B: dup(value)},
	}
	time.Sleep(s.putLimiter.Reserve().Delay())
	if _, err := s.ddb.PutItem(&input); err != nil {
		return fmt.Errorf("could not put %.40q: %w", key, err)
	}
	return nil
}

func (s *DynamoDB) Get(key string) (value []byte, err error) {
	var input dynamodb.GetItemInput
	input.TableName = aws.String(s.table)
	input.Key = map[string]*dynamodb.AttributeValue{
		"k": {S: aws.String(key)},
	}
	input.ConsistentRead = aws.Bool(true)
	time.Sleep(s.getLimiter.Reserve().Delay())
	output, err := s.ddb.GetItem(&input)
	if err != nil {
		return nil, fmt.Errorf("could not get %.40q: %w", key, err)
	}
	if output.Item == nil {
		return nil, fmt.Errorf("%.40q: %w", key, ErrNotFound)
	}
	attr, ok := output.Item["va"]
	if !ok || attr == nil {
		return []byte{}, nil
	}
	return dup(attr.B), nil
}
