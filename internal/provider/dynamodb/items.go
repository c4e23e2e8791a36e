package dynamodb

import "github.com/dwsmith1983/campaignlens/pkg/types"

type itemKeys struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	GSI1PK string `dynamodbav:"GSI1PK"`
	GSI1SK string `dynamodbav:"GSI1SK"`
}

func newKeys(pk, sk, kind string, seq int) itemKeys {
	return itemKeys{PK: pk, SK: sk, GSI1PK: typePK(kind), GSI1SK: seqKey(seq)}
}

type influencerItem struct {
	itemKeys
	types.Influencer
}

type postItem struct {
	itemKeys
	types.Post
}

type eventItem struct {
	itemKeys
	types.TrackingEvent
}

type payoutItem struct {
	itemKeys
	types.PayoutTerms
}

// datasetItems lays ds out as table items. Influencer profiles, payouts and
// posts share the influencer partition; events are partitioned by campaign.
func datasetItems(ds *types.Dataset) []any {
	items := make([]any, 0, len(ds.Influencers)+len(ds.Posts)+len(ds.Tracking)+len(ds.Payouts))
	for i, inf := range ds.Influencers {
		items = append(items, influencerItem{newKeys(influencerPK(inf.ID), profileSK(), kindInfluencer, i), inf})
	}
	for i, p := range ds.Posts {
		items = append(items, postItem{newKeys(influencerPK(p.InfluencerID), postSK(i), kindPost, i), p})
	}
	for i, ev := range ds.Tracking {
		items = append(items, eventItem{newKeys(campaignPK(ev.Campaign), eventSK(i), kindEvent, i), ev})
	}
	for i, p := range ds.Payouts {
		items = append(items, payoutItem{newKeys(influencerPK(p.InfluencerID), payoutSK(), kindPayout, i), p})
	}
	return items
}
