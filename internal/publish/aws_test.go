package publish

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	puts   []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (m *mockS3) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	m.puts = append(m.puts, input)
	m.bodies = append(m.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

type mockSNS struct {
	published []*sns.PublishInput
}

func (m *mockSNS) Publish(_ context.Context, input *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.published = append(m.published, input)
	return &sns.PublishOutput{}, nil
}

type mockEventBridge struct {
	inputs []*eventbridge.PutEventsInput
	fail   bool
}

func (m *mockEventBridge) PutEvents(_ context.Context, input *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	m.inputs = append(m.inputs, input)
	if m.fail {
		return &eventbridge.PutEventsOutput{
			FailedEntryCount: 1,
			Entries: []ebtypes.PutEventsResultEntry{{
				ErrorCode:    aws.String("InternalFailure"),
				ErrorMessage: aws.String("try again"),
			}},
		}, nil
	}
	return &eventbridge.PutEventsOutput{}, nil
}

func TestS3Sink_Send(t *testing.T) {
	mock := &mockS3{}
	sink, err := NewS3Sink(context.Background(), "exports", "campaignlens/", WithS3Client(mock))
	require.NoError(t, err)
	assert.Equal(t, "s3", sink.Name())

	b := testBundle(t)
	require.NoError(t, sink.Send(context.Background(), b))

	require.Len(t, mock.puts, 1)
	put := mock.puts[0]
	wantKey := "campaignlens/2026-03-14/" + b.ID + "/campaignlens_insights.zip"
	assert.Equal(t, "exports", *put.Bucket)
	assert.Equal(t, wantKey, *put.Key)
	assert.Equal(t, "application/zip", *put.ContentType)
	assert.Equal(t, b.Data, mock.bodies[0])
	assert.Equal(t, []string{"s3://exports/" + wantKey}, b.Locations)
}

func TestS3Sink_NoPrefix(t *testing.T) {
	sink, err := NewS3Sink(context.Background(), "exports", "", WithS3Client(&mockS3{}))
	require.NoError(t, err)
	b := testBundle(t)
	assert.Equal(t, "2026-03-14/"+b.ID+"/campaignlens_insights.zip", sink.Key(b))
}

func TestS3Sink_PutError(t *testing.T) {
	sink, err := NewS3Sink(context.Background(), "exports", "", WithS3Client(&mockS3{err: errors.New("denied")}))
	require.NoError(t, err)
	b := testBundle(t)
	assert.Error(t, sink.Send(context.Background(), b))
	assert.Empty(t, b.Locations)
}

func TestSNSSink_Send(t *testing.T) {
	mock := &mockSNS{}
	sink, err := NewSNSSink(context.Background(), "arn:aws:sns:us-east-1:123456789:exports", WithSNSClient(mock))
	require.NoError(t, err)
	assert.Equal(t, "sns", sink.Name())

	b := testBundle(t)
	require.NoError(t, sink.Send(context.Background(), b))

	require.Len(t, mock.published, 1)
	pub := mock.published[0]
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789:exports", *pub.TopicArn)
	assert.Equal(t, "[campaignlens] export "+b.ID, *pub.Subject)
	assert.Equal(t, b.FileName, *pub.MessageAttributes["fileName"].StringValue)
	assert.Equal(t, "String", *pub.MessageAttributes["datasetVersion"].DataType)

	var decoded Bundle
	require.NoError(t, json.Unmarshal([]byte(*pub.Message), &decoded))
	assert.Equal(t, b.ID, decoded.ID)
	assert.Equal(t, b.KPIs, decoded.KPIs)
}

func TestSNSSink_EmptyTopicARN(t *testing.T) {
	_, err := NewSNSSink(context.Background(), "")
	assert.Error(t, err)
}

func TestEventBridgeSink_Send(t *testing.T) {
	mock := &mockEventBridge{}
	sink, err := NewEventBridgeSink(context.Background(), "", WithEventBridgeClient(mock))
	require.NoError(t, err)
	assert.Equal(t, "eventbridge", sink.Name())

	b := testBundle(t)
	require.NoError(t, sink.Send(context.Background(), b))

	require.Len(t, mock.inputs, 1)
	require.Len(t, mock.inputs[0].Entries, 1)
	entry := mock.inputs[0].Entries[0]
	assert.Equal(t, "default", *entry.EventBusName)
	assert.Equal(t, EventSource, *entry.Source)
	assert.Equal(t, EventDetailType, *entry.DetailType)

	var decoded Bundle
	require.NoError(t, json.Unmarshal([]byte(*entry.Detail), &decoded))
	assert.Equal(t, b.ID, decoded.ID)
}

func TestEventBridgeSink_FailedEntry(t *testing.T) {
	sink, err := NewEventBridgeSink(context.Background(), "exports-bus", WithEventBridgeClient(&mockEventBridge{fail: true}))
	require.NoError(t, err)
	err = sink.Send(context.Background(), testBundle(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "try again")
}
