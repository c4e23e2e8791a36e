package dynamodb

import (
	"fmt"
	"strconv"
)

const gsi1 = "GSI1"

// PK/SK prefix constants.
const (
	prefixInfluencer = "INFLUENCER#"
	prefixCampaign   = "CAMPAIGN#"
	prefixPost       = "POST#"
	prefixEvent      = "EVENT#"
	prefixType       = "TYPE#"

	skProfile = "PROFILE"
	skPayout  = "PAYOUT"
)

// Entity kinds, stored in GSI1PK so each table can be listed with one query.
const (
	kindInfluencer = "influencer"
	kindPost       = "post"
	kindEvent      = "event"
	kindPayout     = "payout"
)

var kinds = []string{kindInfluencer, kindPost, kindEvent, kindPayout}

func influencerPK(id int) string    { return prefixInfluencer + strconv.Itoa(id) }
func campaignPK(name string) string { return prefixCampaign + name }

func profileSK() string         { return skProfile }
func payoutSK() string          { return skPayout }
func postSK(seq int) string     { return prefixPost + seqKey(seq) }
func eventSK(seq int) string    { return prefixEvent + seqKey(seq) }
func typePK(kind string) string { return prefixType + kind }

// seqKey zero-pads so that lexical order matches insertion order.
func seqKey(seq int) string { return fmt.Sprintf("%010d", seq) }
