// Package types defines the public domain types for campaignlens: the four
// entity tables, filter selections and the report tables derived from them.
package types

// Basis is the payout calculation method for an influencer.
type Basis string

// Basis values enumerate the supported payout methods.
const (
	BasisPost  Basis = "post"
	BasisOrder Basis = "order"
)

// Valid reports whether b is a known basis.
func (b Basis) Valid() bool {
	return b == BasisPost || b == BasisOrder
}

// TrackingSourceInfluencer is the only attribution source the tracking table carries.
const TrackingSourceInfluencer = "influencer"

// Dimension names a filterable attribute.
type Dimension string

// Dimension values enumerate the filter axes.
const (
	DimPlatform Dimension = "platform"
	DimCategory Dimension = "category"
	DimGender   Dimension = "gender"
	DimProduct  Dimension = "product"
)

// Dimensions lists every filter axis in presentation order.
var Dimensions = []Dimension{DimPlatform, DimCategory, DimGender, DimProduct}

// SourceType selects the entity store loader.
type SourceType string

// SourceType values enumerate the supported dataset sources.
const (
	SourceSynthetic SourceType = "synthetic"
	SourceCSV       SourceType = "csv"
	SourceS3CSV     SourceType = "s3csv"
	SourcePostgres  SourceType = "postgres"
	SourceSQLite    SourceType = "sqlite"
	SourceDynamoDB  SourceType = "dynamodb"
)

// SinkType defines an export publishing destination.
type SinkType string

// SinkType values enumerate the supported export sinks.
const (
	SinkConsole     SinkType = "console"
	SinkFile        SinkType = "file"
	SinkS3          SinkType = "s3"
	SinkWebhook     SinkType = "webhook"
	SinkSNS         SinkType = "sns"
	SinkEventBridge SinkType = "eventbridge"
)

// CacheBackend selects where memoized reports live.
type CacheBackend string

// CacheBackend values enumerate the report cache stores.
const (
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
	CacheNone   CacheBackend = "none"
)

// TableName identifies one of the report output tables.
type TableName string

// TableName values enumerate the report tables in export order.
const (
	TableCampaignSummary   TableName = "campaign_summary"
	TableTopInfluencers    TableName = "top_influencers"
	TableBottomInfluencers TableName = "bottom_influencers"
	TablePersonaSummary    TableName = "persona_summary"
	TablePostEngagement    TableName = "post_engagement"
	TablePayoutSummary     TableName = "payout_summary"
)

// Tables lists every report table in export order.
var Tables = []TableName{
	TableCampaignSummary,
	TableTopInfluencers,
	TableBottomInfluencers,
	TablePersonaSummary,
	TablePostEngagement,
	TablePayoutSummary,
}

// ParseTableName resolves a table name, returning ErrUnknownTable if it is not a report table.
func ParseTableName(s string) (TableName, error) {
	for _, t := range Tables {
		if string(t) == s {
			return t, nil
		}
	}
	return "", ErrUnknownTable
}
