package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

const (
	batchSize       = 25
	maxBatchRetries = 5
)

// Save replaces the stored dataset with ds: existing entity items are deleted,
// then ds is written in batches.
func (p *Provider) Save(ctx context.Context, ds *types.Dataset) error {
	var deletes []ddbtypes.WriteRequest
	for _, kind := range kinds {
		keys, err := p.existingKeys(ctx, kind)
		if err != nil {
			return err
		}
		for _, k := range keys {
			deletes = append(deletes, ddbtypes.WriteRequest{DeleteRequest: &ddbtypes.DeleteRequest{Key: k}})
		}
	}
	if err := p.batchWrite(ctx, deletes); err != nil {
		return fmt.Errorf("clearing table: %w", err)
	}

	items := datasetItems(ds)
	puts := make([]ddbtypes.WriteRequest, 0, len(items))
	for _, it := range items {
		av, err := attributevalue.MarshalMap(it)
		if err != nil {
			return fmt.Errorf("marshaling item: %w", err)
		}
		puts = append(puts, ddbtypes.WriteRequest{PutRequest: &ddbtypes.PutRequest{Item: av}})
	}
	if err := p.batchWrite(ctx, puts); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	p.logger.Info("saved dataset to dynamodb", "table", p.tableName, "items", len(puts), "deleted", len(deletes))
	return nil
}

func (p *Provider) existingKeys(ctx context.Context, kind string) ([]map[string]ddbtypes.AttributeValue, error) {
	input := p.kindQuery(kind)
	input.ProjectionExpression = aws.String("PK, SK")

	var keys []map[string]ddbtypes.AttributeValue
	pager := dynamodb.NewQueryPaginator(p.client, input)
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing %s items: %w", kind, err)
		}
		keys = append(keys, page.Items...)
	}
	return keys, nil
}

// batchWrite sends reqs in chunks of 25, resubmitting unprocessed items with
// a short backoff.
func (p *Provider) batchWrite(ctx context.Context, reqs []ddbtypes.WriteRequest) error {
	for start := 0; start < len(reqs); start += batchSize {
		pending := reqs[start:min(start+batchSize, len(reqs))]
		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt > maxBatchRetries {
				return fmt.Errorf("%d items unprocessed after %d retries", len(pending), maxBatchRetries)
			}
			if attempt > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
				}
			}
			out, err := p.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]ddbtypes.WriteRequest{p.tableName: pending},
			})
			if err != nil {
				return err
			}
			pending = out.UnprocessedItems[p.tableName]
		}
	}
	return nil
}
