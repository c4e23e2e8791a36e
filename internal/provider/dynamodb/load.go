package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"golang.org/x/sync/errgroup"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// Load reads the four entity tables, one GSI1 query per kind, concurrently.
func (p *Provider) Load(ctx context.Context) (*types.Dataset, error) {
	var (
		infs    []influencerItem
		posts   []postItem
		events  []eventItem
		payouts []payoutItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.queryKind(gctx, kindInfluencer, &infs) })
	g.Go(func() error { return p.queryKind(gctx, kindPost, &posts) })
	g.Go(func() error { return p.queryKind(gctx, kindEvent, &events) })
	g.Go(func() error { return p.queryKind(gctx, kindPayout, &payouts) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := &types.Dataset{}
	for _, it := range infs {
		ds.Influencers = append(ds.Influencers, it.Influencer)
	}
	for _, it := range posts {
		it.Date = it.Date.UTC()
		ds.Posts = append(ds.Posts, it.Post)
	}
	for _, it := range events {
		it.Date = it.Date.UTC()
		ds.Tracking = append(ds.Tracking, it.TrackingEvent)
	}
	for _, it := range payouts {
		ds.Payouts = append(ds.Payouts, it.PayoutTerms)
	}
	return ds, nil
}

// queryKind pages through every item of kind in insertion order.
func (p *Provider) queryKind(ctx context.Context, kind string, out any) error {
	var all []map[string]ddbtypes.AttributeValue
	pager := dynamodb.NewQueryPaginator(p.client, p.kindQuery(kind))
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("querying %s items: %w", kind, err)
		}
		all = append(all, page.Items...)
	}
	if err := attributevalue.UnmarshalListOfMaps(all, out); err != nil {
		return fmt.Errorf("unmarshaling %s items: %w", kind, err)
	}
	return nil
}

func (p *Provider) kindQuery(kind string) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              &p.tableName,
		IndexName:              aws.String(gsi1),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":pk": &ddbtypes.AttributeValueMemberS{Value: typePK(kind)},
		},
	}
}
