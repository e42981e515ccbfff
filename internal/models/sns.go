package models

// Well-known SNS topic attribute names returned by GetTopicAttributes.
const (
	AttrKmsMasterKeyID = "KmsMasterKeyId"
	AttrPolicy         = "Policy"
	AttrOwner          = "Owner"
	AttrDisplayName    = "DisplayName"
)

// Topic is one SNS topic as seen by the collector. It is read-only input to
// the rules and is fetched fresh on every audit run.
//
// AttributesErr and SubscriptionsErr record collection failures for the
// corresponding facet so that checks which do not need that facet can still
// run. They are never serialised.
type Topic struct {
	ARN           string            `json:"arn"`
	Name          string            `json:"name"`
	Region        string            `json:"region"`
	Attributes    map[string]string `json:"attributes,omitempty"`
	Subscriptions []Subscription    `json:"subscriptions,omitempty"`

	AttributesErr    error `json:"-"`
	SubscriptionsErr error `json:"-"`
}

// Attribute returns the named attribute and whether it was present.
func (t Topic) Attribute(name string) (string, bool) {
	v, ok := t.Attributes[name]
	return v, ok
}

// Subscription is a registered receiver endpoint of a topic.
type Subscription struct {
	ARN      string `json:"arn"`
	TopicARN string `json:"topic_arn"`
	Protocol string `json:"protocol"`
	Endpoint string `json:"endpoint,omitempty"`
	Owner    string `json:"owner,omitempty"`
}
