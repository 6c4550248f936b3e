package showcase

import (
	"time"

	"github.com/google/uuid"
)

type Operation string

const (
	OperationNotification Operation = "notification"
	OperationAutoReply    Operation = "auto_reply"
	OperationReply        Operation = "reply"
)

// Delivery is the audit record of one dispatch, successful or not.
type Delivery struct {
	Uuid      uuid.UUID `sql:",pk,type:uuid" json:"uuid"`
	Operation Operation `sql:",notnull" json:"operation"`

	ServiceId  string `sql:",notnull" json:"service_id"`
	TemplateId string `sql:",notnull" json:"template_id"`
	Target     string `sql:",notnull" json:"target"`

	Params map[string]interface{} `json:"params"`

	Attempts    int           `sql:",notnull" json:"attempts"`
	RateLimited bool          `sql:",notnull" json:"rate_limited"`
	MessageId   string        `json:"message_id,omitempty"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `sql:",notnull" json:"duration"`

	SentAt    *time.Time `json:"sent_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func newDelivery(op Operation, serviceId, templateId, target string, params map[string]interface{}, result SendResult) *Delivery {
	d := &Delivery{
		Uuid:        uuid.New(),
		Operation:   op,
		ServiceId:   serviceId,
		TemplateId:  templateId,
		Target:      target,
		Params:      params,
		Attempts:    result.Attempts,
		RateLimited: result.RateLimited,
		MessageId:   result.MessageId,
		Duration:    result.Duration,
		CreatedAt:   time.Now(),
	}

	if result.Error != nil {
		d.Error = result.Error.Error()
	}

	if result.Success {
		sent := d.CreatedAt
		d.SentAt = &sent
	}

	return d
}
