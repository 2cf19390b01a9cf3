package db

import (
	"fmt"
	"strconv"

	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/reference"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// BatchGetItem accepts at most 100 keys per call
const maxKeys = 100

// BatchGetter is the part of the DynamoDB client the lookup needs.
type BatchGetter interface {
	BatchGetItem(*dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error)
}

type Metadata struct {
	client BatchGetter
	table  string
}

func New(client BatchGetter, table string) *Metadata {
	return &Metadata{client: client, table: table}
}

// Connect opens a DynamoDB session. An empty endpoint uses the AWS default.
func Connect(endpoint, region, table string) (*Metadata, error) {
	cfg := &aws.Config{Region: aws.String(region)}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create a new DynamoDB session: %w", err)
	}
	return New(dynamodb.New(sess), table), nil
}

func str(v *dynamodb.AttributeValue) string {
	if v == nil || v.S == nil {
		return ""
	}
	return *v.S
}

func parseItem(item map[string]*dynamodb.AttributeValue) (string, model.TuneMetadata, bool) {
	var res model.TuneMetadata
	pk := str(item["PK"])
	if pk == "" {
		return "", res, false
	}
	if v := item["Year"]; v != nil && v.N != nil {
		year, _ := strconv.ParseUint(*v.N, 10, 32)
		res.Year = uint(year)
	}
	res.Artist = str(item["Artist"])
	res.Release = str(item["Release"])
	res.Title = str(item["Title"])
	return pk, res, true
}

func (m *Metadata) batch(ids []string) (map[string]model.TuneMetadata, error) {
	var keys []map[string]*dynamodb.AttributeValue
	for _, id := range ids {
		keys = append(keys, map[string]*dynamodb.AttributeValue{
			"PK": {S: aws.String(id)},
		})
	}
	input := &dynamodb.BatchGetItemInput{
		RequestItems: map[string]*dynamodb.KeysAndAttributes{
			m.table: {Keys: keys},
		},
	}

	res := make(map[string]model.TuneMetadata)
	for len(input.RequestItems) > 0 {
		out, err := m.client.BatchGetItem(input)
		if err != nil {
			return nil, fmt.Errorf("error from DynamoDB: %w", err)
		}
		for _, item := range out.Responses[m.table] {
			if pk, meta, ok := parseItem(item); ok {
				res[pk] = meta
			}
		}
		input = &dynamodb.BatchGetItemInput{RequestItems: out.UnprocessedKeys}
	}
	return res, nil
}

// Lookup fetches metadata for the given ids. Ids without a row are absent
// from the result.
func (m *Metadata) Lookup(ids []string) (map[string]model.TuneMetadata, error) {
	res := make(map[string]model.TuneMetadata)
	for start := 0; start < len(ids); start += maxKeys {
		end := start + maxKeys
		if end > len(ids) {
			end = len(ids)
		}
		part, err := m.batch(ids[start:end])
		if err != nil {
			return nil, err
		}
		for k, v := range part {
			res[k] = v
		}
	}
	return res, nil
}

// Apply copies the known fields onto a library input.
func Apply(meta model.TuneMetadata, entry *reference.Input) {
	if meta.Title != "" {
		entry.Title = meta.Title
	}
	if meta.Artist != "" {
		entry.Artist = meta.Artist
	}
	if meta.Release != "" {
		setMetadata(entry, "release", meta.Release)
	}
	if meta.Year != 0 {
		setMetadata(entry, "year", strconv.FormatUint(uint64(meta.Year), 10))
	}
}

func setMetadata(entry *reference.Input, key, value string) {
	if entry.Metadata == nil {
		entry.Metadata = make(map[string]string)
	}
	entry.Metadata[key] = value
}
