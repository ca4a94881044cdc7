package publishers

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

const (
	// Supported publisher types.
	TypeSQS       = "sqs"
	TypeSNS       = "sns"
	TypeHTTP      = "http"
	TypeGCPPubSub = "gcp_pubsub"

	httpDefaultTimeoutSeconds = 5
)

// PublisherConfig is one entry of the publishers file. Exactly one type block is read, chosen by Type.
type PublisherConfig struct {
	ID      string                 `json:"id" yaml:"id"`
	Type    string                 `json:"type" yaml:"type"`
	Enabled *bool                  `json:"enabled" yaml:"enabled"`
	SQS     *SQSPublisherConfig    `json:"sqs" yaml:"sqs"`
	SNS     *SNSPublisherConfig    `json:"sns" yaml:"sns"`
	HTTP    *HTTPPublisherConfig   `json:"http" yaml:"http"`
	PubSub  *PubSubPublisherConfig `json:"pubsub" yaml:"pubsub"`
}

// AWSCredentials are optional static keys. Without them the default AWS credential chain applies.
type AWSCredentials struct {
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `json:"session_token" yaml:"session_token"`
}

type SQSPublisherConfig struct {
	QueueURL    string          `json:"uri" yaml:"uri"`
	Region      string          `json:"region" yaml:"region"`
	Endpoint    string          `json:"endpoint" yaml:"endpoint"`
	Credentials *AWSCredentials `json:"credentials" yaml:"credentials"`
}

type SNSPublisherConfig struct {
	TopicARN    string          `json:"topic_arn" yaml:"topic_arn"`
	Region      string          `json:"region" yaml:"region"`
	Endpoint    string          `json:"endpoint" yaml:"endpoint"`
	Credentials *AWSCredentials `json:"credentials" yaml:"credentials"`
}

type PubSubPublisherConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
}

// HTTPPublisherConfig describes a webhook receiving outcome events. Method defaults to POST.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// EnabledValue reports the enabled flag; entries without one are enabled.
func (cfg PublisherConfig) EnabledValue() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}

// normalizePublisherConfig returns a copy with trimmed fields and defaults applied.
func normalizePublisherConfig(cfg PublisherConfig) PublisherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if cfg.SQS != nil {
		c := *cfg.SQS
		trimAll(&c.QueueURL, &c.Region, &c.Endpoint)
		c.Credentials = c.Credentials.normalized()
		cfg.SQS = &c
	}
	if cfg.SNS != nil {
		c := *cfg.SNS
		trimAll(&c.TopicARN, &c.Region, &c.Endpoint)
		c.Credentials = c.Credentials.normalized()
		cfg.SNS = &c
	}
	if cfg.PubSub != nil {
		c := *cfg.PubSub
		trimAll(&c.ProjectID, &c.Topic, &c.CredentialsFile, &c.Endpoint)
		cfg.PubSub = &c
	}
	if cfg.HTTP != nil {
		c := *cfg.HTTP
		c.URL = strings.TrimSpace(c.URL)
		c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
		if c.Method == "" {
			c.Method = http.MethodPost
		}
		c.Headers = nonEmptyHeaders(c.Headers)
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		cfg.HTTP = &c
	}
	return cfg
}

// validatePublisherConfig checks the block selected by Type.
func validatePublisherConfig(cfg PublisherConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}

	var missing []string
	switch cfg.Type {
	case "":
		return fmt.Errorf("type is required for publisher %q", cfg.ID)
	case TypeSQS:
		if cfg.SQS == nil {
			return fmt.Errorf("sqs block required for publisher %q", cfg.ID)
		}
		missing = required(map[string]string{"sqs.uri": cfg.SQS.QueueURL, "sqs.region": cfg.SQS.Region})
	case TypeSNS:
		if cfg.SNS == nil {
			return fmt.Errorf("sns block required for publisher %q", cfg.ID)
		}
		missing = required(map[string]string{"sns.topic_arn": cfg.SNS.TopicARN, "sns.region": cfg.SNS.Region})
	case TypeHTTP:
		if cfg.HTTP == nil {
			return fmt.Errorf("http block required for publisher %q", cfg.ID)
		}
		missing = required(map[string]string{"http.url": cfg.HTTP.URL})
	case TypeGCPPubSub:
		if cfg.PubSub == nil {
			return fmt.Errorf("pubsub block required for publisher %q", cfg.ID)
		}
		missing = required(map[string]string{"pubsub.project_id": cfg.PubSub.ProjectID, "pubsub.topic": cfg.PubSub.Topic})
	default:
		return fmt.Errorf("unsupported type %q for publisher %q", cfg.Type, cfg.ID)
	}

	if len(missing) > 0 {
		return fmt.Errorf("publisher %q missing %s", cfg.ID, strings.Join(missing, ", "))
	}
	return nil
}

// required lists the keys whose values are blank, sorted for stable messages.
func required(fields map[string]string) []string {
	var missing []string
	for key, val := range fields {
		if val == "" {
			missing = append(missing, key)
		}
	}
	slices.Sort(missing)
	return missing
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

// normalized drops a credentials block that has no access key.
func (c *AWSCredentials) normalized() *AWSCredentials {
	if c == nil {
		return nil
	}
	out := *c
	trimAll(&out.AccessKeyID, &out.SecretAccessKey, &out.SessionToken)
	if out.AccessKeyID == "" {
		return nil
	}
	return &out
}

func nonEmptyHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
