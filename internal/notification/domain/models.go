package domain

import (
	"fmt"
	"time"

	"github.com/smallbiznis/solarops/internal/record"
)

// Impact classifies how a mail affects operations.
type Impact string

const (
	ImpactMajor   Impact = "Major"
	ImpactMinor   Impact = "Minor"
	ImpactNone    Impact = "None"
	ImpactUnknown Impact = "-"
)

// MailNotification records one piece of email correspondence.
type MailNotification struct {
	record.Key
	From         string       `json:"from" gorm:"column:from_address;type:text;not null"`
	To           *string      `json:"to" gorm:"column:to_address;type:text"`
	Date         *record.Date `json:"date" gorm:"column:date"`
	MailDateTime *string      `json:"mail_datetime_text" gorm:"column:mail_datetime_text;size:255;uniqueIndex:ux_mail_notifications_message,priority:1"`
	Subject      *string      `json:"subject" gorm:"column:subject;type:text"`
	Body         *string      `json:"body" gorm:"column:body;type:text;uniqueIndex:ux_mail_notifications_message,priority:2"`
	Impact       Impact       `json:"impact" gorm:"column:impact;size:10;not null;default:'-'"`
	Memo         *string      `json:"memo" gorm:"column:memo;type:text"`
	record.Audit
}

func (MailNotification) TableName() string { return "mail_notifications" }

func (m *MailNotification) Label() string {
	subject, date := "None", "None"
	if m.Subject != nil {
		subject = *m.Subject
	}
	if m.Date != nil {
		date = m.Date.String()
	}
	return fmt.Sprintf("%s (%s)", subject, date)
}

// ApplyDefaults maps a blank impact to the unclassified marker.
func (m *MailNotification) ApplyDefaults(time.Time) {
	if m.Impact == "" {
		m.Impact = ImpactUnknown
	}
}

func (m *MailNotification) CheckFields() error {
	var f record.Fields
	f.Required("from", m.From)
	f.MaxLength("impact", string(m.Impact), 10)
	f.OneOf("impact", string(m.Impact),
		string(ImpactMajor), string(ImpactMinor), string(ImpactNone), string(ImpactUnknown))
	f.MaxLengthPtr("mail_datetime_text", m.MailDateTime, 255)
	return f.Err()
}
