// Package awssns collects SNS topics, their attributes and their
// subscriptions. It never evaluates what it collects.
package awssns

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	snssvc "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/providers/aws/common"
)

// TopicCollector yields the SNS topics of one region.
//
// Implementations must never apply business logic or produce findings.
// A failure to list topics ends the sequence with that error. Failures to
// fetch one topic's attributes or subscriptions are recorded on the Topic
// and the sequence continues.
type TopicCollector interface {
	Topics(ctx context.Context, client common.SNSClient, region string) iter.Seq2[models.Topic, error]
}

// DefaultTopicCollector is the production TopicCollector. It pages through
// ListTopics and fetches each topic's attributes and subscriptions only when
// the consumer asks for the next topic.
type DefaultTopicCollector struct{}

// NewDefaultTopicCollector returns a DefaultTopicCollector.
func NewDefaultTopicCollector() *DefaultTopicCollector {
	return &DefaultTopicCollector{}
}

// Topics returns a lazy sequence over the topics in region. Stopping the
// range loop early stops all further API calls.
func (c *DefaultTopicCollector) Topics(ctx context.Context, client common.SNSClient, region string) iter.Seq2[models.Topic, error] {
	return func(yield func(models.Topic, error) bool) {
		log := zerolog.Ctx(ctx).With().Str("region", region).Logger()

		pager := snssvc.NewListTopicsPaginator(client, &snssvc.ListTopicsInput{})
		for pager.HasMorePages() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				yield(models.Topic{}, fmt.Errorf("list SNS topics in %s: %w", region, err))
				return
			}
			for _, t := range page.Topics {
				if err := ctx.Err(); err != nil {
					yield(models.Topic{}, err)
					return
				}
				topic := describeTopic(ctx, client, aws.ToString(t.TopicArn), region)
				if topic.AttributesErr != nil {
					log.Warn().Err(topic.AttributesErr).Str("topic", topic.ARN).Msg("get topic attributes failed")
				}
				if topic.SubscriptionsErr != nil {
					log.Warn().Err(topic.SubscriptionsErr).Str("topic", topic.ARN).Msg("list subscriptions failed")
				}
				if !yield(topic, nil) {
					return
				}
			}
		}
	}
}

// TopicName returns the short name of a topic: the last ":"-separated field
// of its ARN.
func TopicName(arn string) string {
	if i := strings.LastIndex(arn, ":"); i >= 0 {
		return arn[i+1:]
	}
	return arn
}

func describeTopic(ctx context.Context, client common.SNSClient, arn, region string) models.Topic {
	topic := models.Topic{
		ARN:    arn,
		Name:   TopicName(arn),
		Region: region,
	}

	attrs, err := client.GetTopicAttributes(ctx, &snssvc.GetTopicAttributesInput{TopicArn: aws.String(arn)})
	if err != nil {
		topic.AttributesErr = fmt.Errorf("get attributes of %s: %w", arn, err)
	} else {
		topic.Attributes = attrs.Attributes
	}

	topic.Subscriptions, topic.SubscriptionsErr = listSubscriptions(ctx, client, arn)
	return topic
}

func listSubscriptions(ctx context.Context, client common.SNSClient, arn string) ([]models.Subscription, error) {
	var subs []models.Subscription
	pager := snssvc.NewListSubscriptionsByTopicPaginator(client, &snssvc.ListSubscriptionsByTopicInput{
		TopicArn: aws.String(arn),
	})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list subscriptions of %s: %w", arn, err)
		}
		for _, s := range page.Subscriptions {
			subs = append(subs, models.Subscription{
				ARN:      aws.ToString(s.SubscriptionArn),
				TopicARN: aws.ToString(s.TopicArn),
				Protocol: aws.ToString(s.Protocol),
				Endpoint: aws.ToString(s.Endpoint),
				Owner:    aws.ToString(s.Owner),
			})
		}
	}
	return subs, nil
}
