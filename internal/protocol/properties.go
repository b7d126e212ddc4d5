package protocol

import (
	"time"

	"github.com/arrowstream/amqp091/internal/buffer"
)

// property presence bits, high bit of the first flag word first.
const (
	flagContentType     = 1 << 15
	flagContentEncoding = 1 << 14
	flagHeaders         = 1 << 13
	flagDeliveryMode    = 1 << 12
	flagPriority        = 1 << 11
	flagCorrelationID   = 1 << 10
	flagReplyTo         = 1 << 9
	flagExpiration      = 1 << 8
	flagMessageID       = 1 << 7
	flagTimestamp       = 1 << 6
	flagType            = 1 << 5
	flagUserID          = 1 << 4
	flagAppID           = 1 << 3
)

// BasicProperties mirrors the basic-properties content-header fields
// (AMQP 0-9-1 §4.2.5.3).
type BasicProperties struct {
	ContentType     string
	ContentEncoding string
	Headers         Table
	DeliveryMode    uint8
	Priority        uint8
	CorrelationID   string
	ReplyTo         string
	Expiration      string
	MessageID       string
	Timestamp       time.Time
	Type            string
	UserID          string
	AppID           string
}

func (p BasicProperties) flags() uint16 {
	var f uint16
	if p.ContentType != "" {
		f |= flagContentType
	}
	if p.ContentEncoding != "" {
		f |= flagContentEncoding
	}
	if len(p.Headers) > 0 {
		f |= flagHeaders
	}
	if p.DeliveryMode != 0 {
		f |= flagDeliveryMode
	}
	if p.Priority != 0 {
		f |= flagPriority
	}
	if p.CorrelationID != "" {
		f |= flagCorrelationID
	}
	if p.ReplyTo != "" {
		f |= flagReplyTo
	}
	if p.Expiration != "" {
		f |= flagExpiration
	}
	if p.MessageID != "" {
		f |= flagMessageID
	}
	if !p.Timestamp.IsZero() {
		f |= flagTimestamp
	}
	if p.Type != "" {
		f |= flagType
	}
	if p.UserID != "" {
		f |= flagUserID
	}
	if p.AppID != "" {
		f |= flagAppID
	}
	return f
}

// WriteContentHeader writes the class-id/weight/body-size/properties header
// frame payload for a basic.publish-carried message.
func WriteContentHeader(w *buffer.Buffer, classID uint16, bodySize uint64, props BasicProperties) error {
	WriteShort(w, classID)
	WriteShort(w, 0) // weight, always 0
	WriteLonglong(w, bodySize)

	flags := props.flags()
	WriteShort(w, flags)

	if flags&flagContentType != 0 {
		if err := WriteShortString(w, props.ContentType); err != nil {
			return err
		}
	}
	if flags&flagContentEncoding != 0 {
		if err := WriteShortString(w, props.ContentEncoding); err != nil {
			return err
		}
	}
	if flags&flagHeaders != 0 {
		if err := WriteTable(w, props.Headers); err != nil {
			return err
		}
	}
	if flags&flagDeliveryMode != 0 {
		WriteOctet(w, props.DeliveryMode)
	}
	if flags&flagPriority != 0 {
		WriteOctet(w, props.Priority)
	}
	if flags&flagCorrelationID != 0 {
		if err := WriteShortString(w, props.CorrelationID); err != nil {
			return err
		}
	}
	if flags&flagReplyTo != 0 {
		if err := WriteShortString(w, props.ReplyTo); err != nil {
			return err
		}
	}
	if flags&flagExpiration != 0 {
		if err := WriteShortString(w, props.Expiration); err != nil {
			return err
		}
	}
	if flags&flagMessageID != 0 {
		if err := WriteShortString(w, props.MessageID); err != nil {
			return err
		}
	}
	if flags&flagTimestamp != 0 {
		WriteTimestamp(w, props.Timestamp)
	}
	if flags&flagType != 0 {
		if err := WriteShortString(w, props.Type); err != nil {
			return err
		}
	}
	if flags&flagUserID != 0 {
		if err := WriteShortString(w, props.UserID); err != nil {
			return err
		}
	}
	if flags&flagAppID != 0 {
		if err := WriteShortString(w, props.AppID); err != nil {
			return err
		}
	}
	return nil
}

// ContentHeader is the decoded header-frame payload.
type ContentHeader struct {
	ClassID    uint16
	BodySize   uint64
	Properties BasicProperties
}

// ReadContentHeader parses a header-frame payload.
func ReadContentHeader(r *buffer.Buffer) (ContentHeader, error) {
	var h ContentHeader
	var err error
	if h.ClassID, err = ReadShort(r); err != nil {
		return h, err
	}
	if _, err = ReadShort(r); err != nil { // weight
		return h, err
	}
	if h.BodySize, err = ReadLonglong(r); err != nil {
		return h, err
	}
	flags, err := ReadShort(r)
	if err != nil {
		return h, err
	}
	p := &h.Properties
	if flags&flagContentType != 0 {
		if p.ContentType, err = ReadShortString(r); err != nil {
			return h, err
		}
	}
	if flags&flagContentEncoding != 0 {
		if p.ContentEncoding, err = ReadShortString(r); err != nil {
			return h, err
		}
	}
	if flags&flagHeaders != 0 {
		if p.Headers, err = ReadTable(r); err != nil {
			return h, err
		}
	}
	if flags&flagDeliveryMode != 0 {
		if p.DeliveryMode, err = ReadOctet(r); err != nil {
			return h, err
		}
	}
	if flags&flagPriority != 0 {
		if p.Priority, err = ReadOctet(r); err != nil {
			return h, err
		}
	}
	if flags&flagCorrelationID != 0 {
		if p.CorrelationID, err = ReadShortString(r); err != nil {
			return h, err
		}
	}
	if flags&flagReplyTo != 0 {
		if p.ReplyTo, err = ReadShortString(r); err != nil {
			return h, err
		}
	}
	if flags&flagExpiration != 0 {
		if p.Expiration, err = ReadShortString(r); err != nil {
			return h, err
		}
	}
	if flags&flagMessageID != 0 {
		if p.MessageID, err = ReadShortString(r); err != nil {
			return h, err
		}
	}
	if flags&flagTimestamp != 0 {
		if p.Timestamp, err = ReadTimestamp(r); err != nil {
			return h, err
		}
	}
	if flags&flagType != 0 {
		if p.Type, err = ReadShortString(r); err != nil {
			return h, err
		}
	}
	if flags&flagUserID != 0 {
		if p.UserID, err = ReadShortString(r); err != nil {
			return h, err
		}
	}
	if flags&flagAppID != 0 {
		if p.AppID, err = ReadShortString(r); err != nil {
			return h, err
		}
	}
	return h, nil
}
