package rules

import (
	"time"

	"github.com/pankaj-dahiya-devops/dp-sns-auditor/internal/models"
)

const (
	testAccount = "111122223333"
	testRegion  = "us-east-1"
	testARN     = "arn:aws:sns:us-east-1:111122223333:orders"
)

var testNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func topicCtx(attrs map[string]string, subs ...models.Subscription) RuleContext {
	return RuleContext{
		AccountID: testAccount,
		Region:    testRegion,
		Partition: "aws",
		Profile:   "prod",
		Now:       testNow,
		Topic: models.Topic{
			ARN:           testARN,
			Name:          "orders",
			Region:        testRegion,
			Attributes:    attrs,
			Subscriptions: subs,
		},
	}
}

func policyCtx(policy string) RuleContext {
	return topicCtx(map[string]string{models.AttrPolicy: policy})
}
