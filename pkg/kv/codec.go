package kv

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// Codec converts between wire bytes and values of type A.
type Codec[A any] interface {
	// Parse decodes raw bytes. Any error is reported as invalid-data.
	Parse(data []byte) (A, error)
	// Dump encodes a value for the wire.
	Dump(value A) ([]byte, error)
	// ContentType is the media type of the bytes produced by Dump.
	ContentType() string
}

// Bytes is the identity codec for stores that exchange raw bytes.
type Bytes struct{}

func (Bytes) Parse(data []byte) ([]byte, error) {
	// the request body buffer must not be shared with the store
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (Bytes) Dump(value []byte) ([]byte, error) { return value, nil }
func (Bytes) ContentType() string               { return "application/octet-stream" }

// Text is the identity codec over strings.
type Text struct{}

func (Text) Parse(data []byte) (string, error) { return string(data), nil }
func (Text) Dump(value string) ([]byte, error) { return []byte(value), nil }
func (Text) ContentType() string               { return "text/plain; charset=utf-8" }

// JSON encodes values with encoding/json.
type JSON[A any] struct{}

// errTrailingData is reported when a JSON document is followed by more input.
var errTrailingData = errors.New("unexpected data after JSON value")

// Parse decodes exactly one JSON document. Numbers decoded into interface
// values are kept as json.Number, so they survive a Dump unchanged.
func (JSON[A]) Parse(data []byte) (value A, err error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := dec.Decode(&value); err != nil {
		return value, InvalidData(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return value, InvalidData(errTrailingData)
	}
	return value, nil
}

func (JSON[A]) Dump(value A) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, InvalidData(err)
	}
	return data, nil
}

func (JSON[A]) ContentType() string { return "application/json" }
