package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/arrowstream/amqp091/internal/buffer"
)

// Table is an AMQP field-table: string keys, a small closed set of value
// types (bool, int32, int64, float64, string, []byte, Table, []interface{},
// time.Time, nil).
type Table map[string]interface{}

func WriteOctet(w *buffer.Buffer, v uint8) {
	_ = w.WriteByte(v)
}

func ReadOctet(r *buffer.Buffer) (uint8, error) {
	b := r.Next(1)
	if len(b) < 1 {
		return 0, fmt.Errorf("amqp091: short buffer reading octet")
	}
	return b[0], nil
}

func WriteShort(w *buffer.Buffer, v uint16) {
	w.WriteUint16(v)
}

func ReadShort(r *buffer.Buffer) (uint16, error) {
	b := r.Next(2)
	if len(b) < 2 {
		return 0, fmt.Errorf("amqp091: short buffer reading short")
	}
	return binary.BigEndian.Uint16(b), nil
}

func WriteLong(w *buffer.Buffer, v uint32) {
	w.WriteUint32(v)
}

func ReadLong(r *buffer.Buffer) (uint32, error) {
	b := r.Next(4)
	if len(b) < 4 {
		return 0, fmt.Errorf("amqp091: short buffer reading long")
	}
	return binary.BigEndian.Uint32(b), nil
}

func WriteLonglong(w *buffer.Buffer, v uint64) {
	w.WriteUint64(v)
}

func ReadLonglong(r *buffer.Buffer) (uint64, error) {
	b := r.Next(8)
	if len(b) < 8 {
		return 0, fmt.Errorf("amqp091: short buffer reading longlong")
	}
	return binary.BigEndian.Uint64(b), nil
}

func WriteBool(w *buffer.Buffer, v bool) {
	if v {
		_ = w.WriteByte(1)
	} else {
		_ = w.WriteByte(0)
	}
}

func ReadBool(r *buffer.Buffer) (bool, error) {
	v, err := ReadOctet(r)
	return v != 0, err
}

// WriteShortString writes an AMQP short string (1-byte length prefix).
func WriteShortString(w *buffer.Buffer, s string) error {
	if len(s) > 255 {
		return fmt.Errorf("amqp091: short string longer than 255 bytes")
	}
	_ = w.WriteByte(uint8(len(s)))
	_, _ = w.Write([]byte(s))
	return nil
}

func ReadShortString(r *buffer.Buffer) (string, error) {
	n, err := ReadOctet(r)
	if err != nil {
		return "", err
	}
	b := r.Next(int(n))
	if len(b) < int(n) {
		return "", fmt.Errorf("amqp091: short buffer reading short string")
	}
	return string(b), nil
}

// WriteLongString writes an AMQP long string (4-byte length prefix).
func WriteLongString(w *buffer.Buffer, s string) error {
	w.WriteUint32(uint32(len(s)))
	_, _ = w.Write([]byte(s))
	return nil
}

func ReadLongString(r *buffer.Buffer) (string, error) {
	n, err := ReadLong(r)
	if err != nil {
		return "", err
	}
	b := r.Next(int(n))
	if uint32(len(b)) < n {
		return "", fmt.Errorf("amqp091: short buffer reading long string")
	}
	return string(b), nil
}

func WriteTimestamp(w *buffer.Buffer, t time.Time) {
	w.WriteUint64(uint64(t.Unix()))
}

func ReadTimestamp(r *buffer.Buffer) (time.Time, error) {
	v, err := ReadLonglong(r)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(v), 0).UTC(), nil
}

// field-table value type tags.
const (
	tagBool      = 't'
	tagInt32     = 'I'
	tagInt64     = 'l'
	tagDouble    = 'd'
	tagLongStr   = 'S'
	tagFieldTbl  = 'F'
	tagFieldArr  = 'A'
	tagVoid      = 'V'
	tagTimestamp = 'T'
)

// WriteTable writes v as an AMQP field-table, preceded by its byte length.
func WriteTable(w *buffer.Buffer, v Table) error {
	inner := buffer.New()
	for k, val := range v {
		if err := WriteShortString(inner, k); err != nil {
			return err
		}
		if err := writeFieldValue(inner, val); err != nil {
			return err
		}
	}
	w.WriteUint32(uint32(inner.Len()))
	_, _ = w.Write(inner.Data())
	return nil
}

func writeFieldValue(w *buffer.Buffer, val interface{}) error {
	switch t := val.(type) {
	case nil:
		_ = w.WriteByte(tagVoid)
	case bool:
		_ = w.WriteByte(tagBool)
		WriteBool(w, t)
	case int:
		_ = w.WriteByte(tagInt64)
		WriteLonglong(w, uint64(int64(t)))
	case int32:
		_ = w.WriteByte(tagInt32)
		WriteLong(w, uint32(t))
	case int64:
		_ = w.WriteByte(tagInt64)
		WriteLonglong(w, uint64(t))
	case float64:
		_ = w.WriteByte(tagDouble)
		WriteLonglong(w, math.Float64bits(t))
	case string:
		_ = w.WriteByte(tagLongStr)
		return WriteLongString(w, t)
	case []byte:
		_ = w.WriteByte(tagLongStr)
		return WriteLongString(w, string(t))
	case Table:
		_ = w.WriteByte(tagFieldTbl)
		return WriteTable(w, t)
	case time.Time:
		_ = w.WriteByte(tagTimestamp)
		WriteTimestamp(w, t)
	case []interface{}:
		_ = w.WriteByte(tagFieldArr)
		inner := buffer.New()
		for _, item := range t {
			if err := writeFieldValue(inner, item); err != nil {
				return err
			}
		}
		w.WriteUint32(uint32(inner.Len()))
		_, _ = w.Write(inner.Data())
	default:
		return fmt.Errorf("amqp091: unsupported field-table value type %T", val)
	}
	return nil
}

// ReadTable reads a length-prefixed field-table.
func ReadTable(r *buffer.Buffer) (Table, error) {
	n, err := ReadLong(r)
	if err != nil {
		return nil, err
	}
	payload := r.Next(int(n))
	if uint32(len(payload)) < n {
		return nil, fmt.Errorf("amqp091: short buffer reading table")
	}
	inner := buffer.New()
	_, _ = inner.Write(payload)
	out := Table{}
	for inner.Len() > 0 {
		key, err := ReadShortString(inner)
		if err != nil {
			return nil, err
		}
		val, err := readFieldValue(inner)
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
	return out, nil
}

func readFieldValue(r *buffer.Buffer) (interface{}, error) {
	tag, err := ReadOctet(r)
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagVoid:
		return nil, nil
	case tagBool:
		return ReadBool(r)
	case tagInt32:
		v, err := ReadLong(r)
		return int32(v), err
	case tagInt64:
		v, err := ReadLonglong(r)
		return int64(v), err
	case tagDouble:
		v, err := ReadLonglong(r)
		return math.Float64frombits(v), err
	case tagLongStr:
		return ReadLongString(r)
	case tagFieldTbl:
		return ReadTable(r)
	case tagTimestamp:
		return ReadTimestamp(r)
	case tagFieldArr:
		n, err := ReadLong(r)
		if err != nil {
			return nil, err
		}
		payload := r.Next(int(n))
		if uint32(len(payload)) < n {
			return nil, fmt.Errorf("amqp091: short buffer reading array")
		}
		inner := buffer.New()
		_, _ = inner.Write(payload)
		var out []interface{}
		for inner.Len() > 0 {
			v, err := readFieldValue(inner)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("amqp091: unknown field-table type tag %q", tag)
	}
}
